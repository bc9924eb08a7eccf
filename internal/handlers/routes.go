package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tabserv/internal/middleware"
	"tabserv/internal/orders"
	"tabserv/internal/tabs"
)

// Register mounts every route on r. All routes except the health check
// require a bearer token.
func Register(r *gin.Engine, orderSvc *orders.Service, tabSvc *tabs.Service, jwtSecret string, timeout time.Duration) {
	r.GET("/healthz", Health(orderSvc))

	auth := middleware.AuthGuard(jwtSecret)

	order := r.Group("/order")
	order.Use(auth)
	{
		order.POST("/create", CreateOrder(orderSvc, timeout))
		order.GET("/status/:order_id", GetOrderStatus(orderSvc, timeout))
		order.GET("/all", ListMyOrders(orderSvc, timeout))
		order.GET("/customer/orders", ListCustomerOrders(orderSvc, timeout))
		order.PUT("/update/:order_id", ReplaceOrder(orderSvc, timeout))
		order.DELETE("/cancel/:order_id", CancelOrder(orderSvc, timeout))
		order.PUT("/make_takeaway/:order_id", ConvertToTakeaway(orderSvc, timeout))
		order.PUT("/modify_order_items/:order_id", ModifyOrderItems(orderSvc, timeout))
		order.PUT("/mark_takeaway/:order_id", MarkItemsTakeaway(orderSvc, timeout))
		order.PUT("/cancel_item/:order_id/:item_id", CancelItem(orderSvc, timeout))
		order.DELETE("/delete_item/:order_id/:item_id", DeleteItem(orderSvc, timeout))
		order.PUT("/set_billing_status/:order_id/:status", SetBillingStatus(orderSvc, timeout))
		order.DELETE("/delete/:order_id", DeleteOrder(orderSvc, timeout))
	}

	cook := r.Group("/cook")
	cook.Use(auth)
	{
		cook.PUT("/update_order_status/:order_id", UpdateOrderStatus(orderSvc, timeout))
		cook.PUT("/items/:order_id/:item_id", UpdateItemStatus(orderSvc, timeout))
		cook.GET("/list_pending_dishes", ListPendingDishes(orderSvc, timeout))
	}

	tab := r.Group("/tabs")
	tab.Use(auth)
	{
		tab.POST("/add", AddTab(tabSvc, timeout))
		tab.GET("/all", ListTabs(tabSvc, timeout))
		tab.DELETE("/delete/:name", DeleteTab(tabSvc, timeout))
		tab.PUT("/rename/:name", RenameTab(tabSvc, timeout))
		tab.PUT("/update_table/:name", AssignTable(tabSvc, timeout))
		tab.PUT("/call_waiter/:name", CallWaiter(tabSvc, timeout))
		tab.PUT("/clear_waiter/:name", ClearWaiter(tabSvc, timeout))
		tab.PUT("/call_support/:name", CallSupport(tabSvc, timeout))
		tab.PUT("/clear_support/:name", ClearSupport(tabSvc, timeout))
	}
}
