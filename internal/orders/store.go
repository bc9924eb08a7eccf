package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tabserv/internal/models"
)

var (
	// ErrOrderNotFound is returned by Get, Replace, ReplaceItems and Delete
	// when no order has the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoMatch is returned by conditional writes when the filter matched no
	// document: the order is gone, the item is gone, or the precondition no
	// longer holds.
	ErrNoMatch = errors.New("no order matched the update filter")
)

// Field names a top-level order field that can be replaced on its own.
type Field string

const (
	FieldOrderStatus    Field = "order_status"
	FieldDineInTakeaway Field = "dine_in_takeaway"
	FieldPaymentStatus  Field = "payment_status"
	FieldPaymentMode    Field = "payment_mode"
)

// Query selects orders. Zero-valued fields do not constrain the result.
type Query struct {
	// ItemStatuses matches orders holding at least one item in any of these
	// statuses.
	ItemStatuses []string
	PlacedBy     string
	CustomerName string
	Skip         int64
	Limit        int64
}

// ItemPatch lists the embedded item fields a targeted update may touch.
type ItemPatch struct {
	Status    string
	Cook      string
	UpdatedAt time.Time
}

//go:generate mockgen -destination=mock_store_test.go -package=orders_test tabserv/internal/orders Store

// Store persists orders. Implementations guarantee single-document atomicity
// and read-your-writes; they offer no multi-document transactions.
type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Find(ctx context.Context, q Query) ([]models.Order, error)
	Replace(ctx context.Context, id primitive.ObjectID, order *models.Order) error
	// SetField replaces one field. When expected is non-empty the write only
	// applies if the current value is one of expected.
	SetField(ctx context.Context, id primitive.ObjectID, field Field, value string, expected ...string) error
	// UpdateItem applies patch to the item itemID of order id, provided its
	// current status is one of expected. Sibling items are never written.
	UpdateItem(ctx context.Context, id primitive.ObjectID, itemID string, patch ItemPatch, expected []string) error
	// ReplaceItems overwrites the whole items array.
	ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.Item) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
