package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tabserv/internal/models"
	"tabserv/internal/orders"
)

/* =========================
   REQUEST DTOs
========================= */

type itemRequest struct {
	ItemID       string  `json:"item_id"`
	Category     string  `json:"category"`
	Name         string  `json:"name" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required,min=1"`
	UnitCost     float64 `json:"unit_cost" binding:"gte=0"`
	Instructions string  `json:"instructions"`
	Status       string  `json:"status"`
	IsTakeaway   bool    `json:"is_takeaway"`
}

func (r itemRequest) toItem() models.Item {
	return models.Item{
		ItemID:       r.ItemID,
		Category:     r.Category,
		Name:         r.Name,
		Quantity:     r.Quantity,
		UnitCost:     r.UnitCost,
		Instructions: r.Instructions,
		Status:       r.Status,
		IsTakeaway:   r.IsTakeaway,
	}
}

func toItems(reqs []itemRequest) []models.Item {
	items := make([]models.Item, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, r.toItem())
	}
	return items
}

type orderRequest struct {
	Table          models.TableRef `json:"table"`
	CustomerName   string          `json:"customer_name" binding:"required"`
	PhoneNumber    string          `json:"phone_number"`
	Items          []itemRequest   `json:"items" binding:"dive"`
	OrderDateTime  time.Time       `json:"order_date_time"`
	OrderStatus    string          `json:"order_status"`
	DineInTakeaway string          `json:"dine_in_takeaway"`
	BillAmount     float64         `json:"bill_amount" binding:"gte=0"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMode    string          `json:"payment_mode"`
}

func (r orderRequest) toDraft() orders.Draft {
	return orders.Draft{
		Table:          r.Table,
		CustomerName:   r.CustomerName,
		PhoneNumber:    r.PhoneNumber,
		Items:          toItems(r.Items),
		OrderDateTime:  r.OrderDateTime,
		OrderStatus:    r.OrderStatus,
		DineInTakeaway: r.DineInTakeaway,
		BillAmount:     r.BillAmount,
		PaymentStatus:  r.PaymentStatus,
		PaymentMode:    r.PaymentMode,
	}
}

type modifyItemsRequest struct {
	TakeawayItemIDs []string      `json:"takeaway_item_ids"`
	CancelItemIDs   []string      `json:"cancel_item_ids"`
	NewItems        []itemRequest `json:"new_items" binding:"dive"`
}

type markTakeawayRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required,min=1"`
}

/* =========================
   CREATE / READ
========================= */

func CreateOrder(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /order/create"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		if err := ensureDBConnection(c.Request.Context(), svc); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		order, err := svc.CreateOrder(ctx, req.toDraft(), principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"order_id": order.ID.Hex(),
			"message":  "order created",
			"order":    order,
		})
	}
}

func GetOrderStatus(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/status"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		order, err := svc.GetOrderStatus(ctx, c.Param("order_id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func ListMyOrders(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/all"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		found, err := svc.ListOrdersByPrincipal(ctx, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": found})
	}
}

func ListCustomerOrders(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/customer/orders"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		found, err := svc.ListCustomerOrders(ctx, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": found})
	}
}

/* =========================
   WHOLE-ORDER CHANGES
========================= */

func ReplaceOrder(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/update"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		order, err := svc.ReplaceOrder(ctx, c.Param("order_id"), req.toDraft(), principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order updated", "order": order})
	}
}

func CancelOrder(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /order/cancel"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := svc.CancelOrder(ctx, c.Param("order_id"), principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
	}
}

func ConvertToTakeaway(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/make_takeaway"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := svc.ConvertToTakeaway(ctx, c.Param("order_id"), principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order converted to takeaway"})
	}
}

func SetBillingStatus(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/set_billing_status"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		status := c.Param("status")
		if err := svc.SetBillingStatus(ctx, c.Param("order_id"), status, principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "payment status updated", "payment_status": status})
	}
}

func DeleteOrder(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /order/delete"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := svc.DeleteOrder(ctx, c.Param("order_id"), principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

/* =========================
   ITEM CHANGES
========================= */

func ModifyOrderItems(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/modify_order_items"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req modifyItemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		mods := orders.Modifications{
			TakeawayItemIDs: req.TakeawayItemIDs,
			CancelItemIDs:   req.CancelItemIDs,
			NewItems:        toItems(req.NewItems),
		}
		items, err := svc.ModifyItems(ctx, c.Param("order_id"), mods, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order items updated", "items": items})
	}
}

func MarkItemsTakeaway(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/mark_takeaway"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req markTakeawayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		items, err := svc.MarkItemsTakeaway(ctx, c.Param("order_id"), req.ItemIDs, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "items marked as takeaway", "items": items})
	}
}

func CancelItem(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/cancel_item"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		item, err := svc.CancelItem(ctx, c.Param("order_id"), c.Param("item_id"), principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "item cancelled", "item": item})
	}
}

func DeleteItem(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /order/delete_item"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := svc.DeleteItem(ctx, c.Param("order_id"), c.Param("item_id"), principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
	}
}
