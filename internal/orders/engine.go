package orders

import (
	"strings"
	"time"

	"tabserv/internal/apperr"
	"tabserv/internal/models"
)

var (
	kitchenStatuses = []string{models.ItemStatusPending, models.ItemStatusCooking, models.ItemStatusReady}
	// entryStatuses are the only statuses an item may carry when it first
	// enters an order; everything later goes through the kitchen or cancel
	// paths.
	entryStatuses = []string{models.ItemStatusOrdered, models.ItemStatusPending}
	orderStatuses = []string{
		models.OrderStatusOrdered,
		models.OrderStatusProcessing,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	}
	serviceModes = []string{models.DineIn, models.Takeaway}
)

// kitchenNext maps a kitchen status to the only status it may advance to.
var kitchenNext = map[string]string{
	models.ItemStatusPending: models.ItemStatusCooking,
	models.ItemStatusCooking: models.ItemStatusReady,
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ValidateKitchenStatus rejects targets outside {pending, cooking, ready}.
// Comparison is exact and case-sensitive.
func ValidateKitchenStatus(status string) error {
	if !contains(kitchenStatuses, status) {
		return apperr.New(apperr.KindValidation, "validate status",
			"invalid status %q, must be one of: %s", status, strings.Join(kitchenStatuses, ", "))
	}
	return nil
}

// CheckAdvance validates a kitchen transition from current to target. Only
// pending -> cooking and cooking -> ready are accepted.
func CheckAdvance(current, target string) error {
	const op = "advance item"
	if err := ValidateKitchenStatus(target); err != nil {
		return err
	}
	if current == models.ItemStatusCancelled {
		return apperr.New(apperr.KindInvalidTransition, op, "item is cancelled")
	}
	if next, ok := kitchenNext[current]; ok && next == target {
		return nil
	}
	return apperr.New(apperr.KindInvalidTransition, op, "cannot move item from %q to %q", current, target)
}

// CheckCancel validates cancelling an item that has not reached the kitchen.
func CheckCancel(itemID, current string) error {
	const op = "cancel item"
	switch current {
	case models.ItemStatusOrdered, models.ItemStatusPending:
		return nil
	case models.ItemStatusCancelled:
		return apperr.New(apperr.KindPreconditionFailed, op, "item with ID %s is already cancelled", itemID)
	default:
		return apperr.New(apperr.KindPreconditionFailed, op,
			"item with ID %s cannot be cancelled as it is not in 'ordered' status", itemID)
	}
}

// ApplyPatch returns item with patch applied. Empty patch fields leave the
// item untouched.
func ApplyPatch(item models.Item, patch ItemPatch) models.Item {
	if patch.Status != "" {
		item.Status = patch.Status
	}
	if patch.Cook != "" {
		item.Cook = patch.Cook
	}
	if !patch.UpdatedAt.IsZero() {
		ts := patch.UpdatedAt
		item.UpdatedAt = &ts
	}
	return item
}

// normalizeItem fills server-side defaults and validates what the caller
// supplied. entering is false for items already stored on the order, whose
// status was carried over by the caller.
func normalizeItem(item models.Item, addedBy string, now time.Time, newID func() string, entering bool) (models.Item, error) {
	const op = "validate item"

	item.ItemID = strings.TrimSpace(item.ItemID)
	if item.ItemID == "" {
		item.ItemID = newID()
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return models.Item{}, apperr.New(apperr.KindValidation, op, "item name is required")
	}
	if item.Quantity <= 0 {
		return models.Item{}, apperr.New(apperr.KindValidation, op, "quantity must be greater than zero")
	}
	if item.UnitCost < 0 {
		return models.Item{}, apperr.New(apperr.KindValidation, op, "unit_cost must not be negative")
	}
	if item.Status == "" {
		item.Status = models.ItemStatusPending
	}
	if entering && !contains(entryStatuses, item.Status) {
		return models.Item{}, apperr.New(apperr.KindValidation, op,
			"invalid item status %q for a new item, must be one of: %s", item.Status, strings.Join(entryStatuses, ", "))
	}
	if item.AddedBy == "" {
		item.AddedBy = addedBy
	}
	if item.RequestedAt.IsZero() {
		item.RequestedAt = now
	}
	return item, nil
}

// carryItemState keeps the server-owned fields of a stored item when a client
// resubmits it. Only the kitchen and cancel paths change these.
func carryItemState(submitted, stored models.Item) models.Item {
	submitted.Status = stored.Status
	submitted.Cook = stored.Cook
	submitted.UpdatedAt = stored.UpdatedAt
	submitted.AddedBy = stored.AddedBy
	submitted.RequestedAt = stored.RequestedAt
	return submitted
}
