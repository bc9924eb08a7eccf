// Package policy decides whether a principal may perform a mutation. It is
// pure: callers load whatever resource the rule needs and pass it in.
package policy

import (
	"tabserv/internal/apperr"
	"tabserv/internal/models"
)

type Action int

const (
	// AdvanceItem moves an item along the kitchen axis.
	AdvanceItem Action = iota
	// EditOrder covers item cancellation, takeaway flags, item list changes
	// and whole-order replacement.
	EditOrder
	// AdministerTab covers tab creation, deletion, renaming and table
	// reassignment.
	AdministerTab
	// CancelOrder is open to the owner and to order staff, both only while
	// the order is still in the ordered state.
	CancelOrder
	SetBilling
	DeleteOrder
	// RequestService is a waiter or support call from a tab.
	RequestService
)

func (a Action) String() string {
	switch a {
	case AdvanceItem:
		return "advance item"
	case EditOrder:
		return "edit order"
	case AdministerTab:
		return "administer tab"
	case CancelOrder:
		return "cancel order"
	case SetBilling:
		return "set billing status"
	case DeleteOrder:
		return "delete order"
	case RequestService:
		return "request service"
	default:
		return "unknown action"
	}
}

var (
	orderStaff   = []string{models.RoleAdmin, models.RoleWaiter, models.RoleBilling}
	tabAdmins    = []string{models.RoleAdmin, models.RoleManager}
	billingStaff = []string{models.RoleAdmin, models.RoleBilling, models.RoleWaiter}
)

// Resource is what an action targets. Order is required for EditOrder and
// CancelOrder and ignored otherwise.
type Resource struct {
	Order *models.Order
}

// Authorize returns nil when p may perform action on res. Denials are
// *apperr.Error values of kind Forbidden, or PreconditionFailed when a
// whole-order cancel is attempted outside the ordered state.
func Authorize(p models.Principal, action Action, res Resource) error {
	const op = "authorize"

	if p.Username == "" {
		return apperr.New(apperr.KindForbidden, op, "unauthenticated principal")
	}

	switch action {
	case AdvanceItem:
		if p.Role != models.RoleCook {
			return apperr.New(apperr.KindForbidden, op, "only cooks can update item status")
		}
		return nil

	case EditOrder:
		if !ownerOrStaff(p, res.Order) {
			return apperr.New(apperr.KindForbidden, op, "permission denied")
		}
		return nil

	case AdministerTab:
		if !hasRole(p, tabAdmins) {
			return apperr.New(apperr.KindForbidden, op, "only admins and managers can administer tabs")
		}
		return nil

	case CancelOrder:
		if !ownerOrStaff(p, res.Order) {
			return apperr.New(apperr.KindForbidden, op, "permission denied")
		}
		if res.Order.OrderStatus != models.OrderStatusOrdered {
			return apperr.New(apperr.KindPreconditionFailed, op,
				"order cannot be cancelled as it is not in 'ordered' status")
		}
		return nil

	case SetBilling:
		if !p.HasAny(billingStaff...) {
			return apperr.New(apperr.KindForbidden, op, "only billing staff can change payment status")
		}
		return nil

	case DeleteOrder:
		if !hasRole(p, tabAdmins) {
			return apperr.New(apperr.KindForbidden, op, "only admins and managers can delete orders")
		}
		return nil

	case RequestService:
		return nil
	}

	return apperr.New(apperr.KindForbidden, op, "no rule allows %s", action)
}

func ownerOrStaff(p models.Principal, order *models.Order) bool {
	if order == nil {
		return false
	}
	if order.PlacedBy.Username != "" && order.PlacedBy.Username == p.Username {
		return true
	}
	return p.HasAny(orderStaff...)
}

// hasRole ignores privilege; administrative rules key on the token role only.
func hasRole(p models.Principal, roles []string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
