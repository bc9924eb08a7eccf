package orders_test

import (
	"errors"
	"testing"
	"time"

	"tabserv/internal/apperr"
	"tabserv/internal/models"
	"tabserv/internal/orders"
)

func TestCheckAdvance(t *testing.T) {
	tests := []struct {
		current string
		target  string
		want    error
	}{
		{models.ItemStatusPending, models.ItemStatusCooking, nil},
		{models.ItemStatusCooking, models.ItemStatusReady, nil},
		{models.ItemStatusPending, models.ItemStatusReady, apperr.InvalidTransition},
		{models.ItemStatusReady, models.ItemStatusCooking, apperr.InvalidTransition},
		{models.ItemStatusCooking, models.ItemStatusPending, apperr.InvalidTransition},
		{models.ItemStatusCooking, models.ItemStatusCooking, apperr.InvalidTransition},
		{models.ItemStatusReady, models.ItemStatusReady, apperr.InvalidTransition},
		{models.ItemStatusOrdered, models.ItemStatusCooking, apperr.InvalidTransition},
		{models.ItemStatusCancelled, models.ItemStatusCooking, apperr.InvalidTransition},
		{models.ItemStatusPending, "Cooking", apperr.Validation},
		{models.ItemStatusPending, models.ItemStatusCancelled, apperr.Validation},
		{models.ItemStatusPending, "", apperr.Validation},
	}

	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.target, func(t *testing.T) {
			err := orders.CheckAdvance(tt.current, tt.target)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckCancel(t *testing.T) {
	for _, status := range []string{models.ItemStatusOrdered, models.ItemStatusPending} {
		if err := orders.CheckCancel("A", status); err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
	}
	for _, status := range []string{models.ItemStatusCooking, models.ItemStatusReady, models.ItemStatusCancelled} {
		err := orders.CheckCancel("A", status)
		if !errors.Is(err, apperr.PreconditionFailed) {
			t.Fatalf("cancel from %s: expected PreconditionFailed, got %v", status, err)
		}
	}
}

func TestApplyPatchLeavesOtherFields(t *testing.T) {
	requested := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	item := models.Item{
		ItemID:      "A",
		Name:        "Dal",
		Quantity:    2,
		Status:      models.ItemStatusPending,
		AddedBy:     "waiter1",
		RequestedAt: requested,
	}
	at := requested.Add(time.Minute)

	got := orders.ApplyPatch(item, orders.ItemPatch{Status: models.ItemStatusCooking, Cook: "chef1", UpdatedAt: at})
	if got.Status != models.ItemStatusCooking || got.Cook != "chef1" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(at) {
		t.Fatalf("expected updated_at %v, got %v", at, got.UpdatedAt)
	}
	if got.Name != "Dal" || got.Quantity != 2 || got.AddedBy != "waiter1" || !got.RequestedAt.Equal(requested) {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if item.Status != models.ItemStatusPending {
		t.Fatal("input item was modified")
	}

	same := orders.ApplyPatch(item, orders.ItemPatch{})
	if same.Status != item.Status || same.Cook != "" || same.UpdatedAt != nil {
		t.Fatalf("empty patch changed item: %+v", same)
	}
}
