package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tabserv/internal/orders"
)

type advanceItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Status string `json:"status" binding:"required"`
	Cook   string `json:"cook"`
}

type itemStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Cook   string `json:"cook"`
}

// UpdateOrderStatus advances one item named in the body.
func UpdateOrderStatus(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cook/update_order_status"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req advanceItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		item, err := svc.AdvanceItemStatus(ctx, c.Param("order_id"), req.ItemID, req.Status, req.Cook, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order item status updated", "item": item})
	}
}

// UpdateItemStatus advances the item named in the path.
func UpdateItemStatus(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cook/items"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req itemStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		item, err := svc.AdvanceItemStatus(ctx, c.Param("order_id"), c.Param("item_id"), req.Status, req.Cook, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order item status updated", "item": item})
	}
}

func ListPendingDishes(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cook/list_pending_dishes"
		defer handlePanic(c, route)

		if _, ok := requirePrincipal(c, route); !ok {
			return
		}

		skip, limit, ok := parseSkipLimit(c.Query("skip"), c.Query("limit"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "skip and limit must be integers")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		found, err := svc.ListPendingKitchenItems(ctx, skip, limit)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": found, "skip": skip, "count": len(found)})
	}
}

// Health reports whether the order store answers a ping.
func Health(store pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureDBConnection(c.Request.Context(), store); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
