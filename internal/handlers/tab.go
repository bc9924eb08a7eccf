package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tabserv/internal/models"
	"tabserv/internal/tabs"
)

// Tab requests never carry identity; user and user_type come from the token.
type addTabRequest struct {
	Name           string `json:"name" binding:"required"`
	Table          *int   `json:"table" binding:"omitempty,gte=0"`
	WaiterRequest  bool   `json:"waiter_request"`
	WaiterText     string `json:"waiter_text"`
	SupportRequest bool   `json:"support_request"`
	SupportText    string `json:"support_text"`
}

type renameTabRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

type assignTableRequest struct {
	Table *int `json:"table" binding:"required,gte=0"`
}

type serviceCallRequest struct {
	Text string `json:"text"`
}

func AddTab(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /tabs/add"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req addTabRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		tab, err := svc.AddTab(ctx, tabs.Draft{
			Name:           req.Name,
			Table:          req.Table,
			WaiterRequest:  req.WaiterRequest,
			WaiterText:     req.WaiterText,
			SupportRequest: req.SupportRequest,
			SupportText:    req.SupportText,
		}, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "tab added", "tab": tab})
	}
}

func DeleteTab(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /tabs/delete"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := svc.DeleteTab(ctx, c.Param("name"), principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "tab deleted"})
	}
}

func RenameTab(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /tabs/rename"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req renameTabRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := svc.RenameTab(ctx, c.Param("name"), req.NewName, principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "tab renamed"})
	}
}

func AssignTable(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /tabs/update_table"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req assignTableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := svc.AssignTable(ctx, c.Param("name"), *req.Table, principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "tab table updated"})
	}
}

func ListTabs(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /tabs/all"
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		found, err := svc.ListTabs(ctx, principal)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tabs": found})
	}
}

type tabCall func(ctx context.Context, name, text string, p models.Principal) error

// tabServiceCall serves the waiter and support flag endpoints. The optional
// body text is only used when raising a flag.
func tabServiceCall(route string, timeout time.Duration, call tabCall) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		principal, ok := requirePrincipal(c, route)
		if !ok {
			return
		}

		var req serviceCallRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, err)
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := call(ctx, c.Param("name"), req.Text, principal); err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "tab updated"})
	}
}

func CallWaiter(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return tabServiceCall("PUT /tabs/call_waiter", timeout, svc.CallWaiter)
}

func ClearWaiter(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return tabServiceCall("PUT /tabs/clear_waiter", timeout,
		func(ctx context.Context, name, _ string, p models.Principal) error {
			return svc.ClearWaiter(ctx, name, p)
		})
}

func CallSupport(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return tabServiceCall("PUT /tabs/call_support", timeout, svc.CallSupport)
}

func ClearSupport(svc *tabs.Service, timeout time.Duration) gin.HandlerFunc {
	return tabServiceCall("PUT /tabs/clear_support", timeout,
		func(ctx context.Context, name, _ string, p models.Principal) error {
			return svc.ClearSupport(ctx, name, p)
		})
}
