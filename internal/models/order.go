package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item statuses. The kitchen axis is pending -> cooking -> ready; ordered and
// cancelled belong to the submission axis.
const (
	ItemStatusOrdered   = "ordered"
	ItemStatusPending   = "pending"
	ItemStatusCooking   = "cooking"
	ItemStatusReady     = "ready"
	ItemStatusCancelled = "cancelled"
)

const (
	OrderStatusOrdered    = "ordered"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

const (
	DineIn   = "dine-in"
	Takeaway = "takeaway"
)

// Item is one line of a kitchen order, embedded in Order.items.
type Item struct {
	ItemID       string     `bson:"item_id" json:"item_id"`
	Category     string     `bson:"category" json:"category"`
	Name         string     `bson:"name" json:"name"`
	Quantity     int        `bson:"quantity" json:"quantity"`
	UnitCost     float64    `bson:"unit_cost" json:"unit_cost"`
	Instructions string     `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Status       string     `bson:"status" json:"status"`
	Cook         string     `bson:"cook,omitempty" json:"cook,omitempty"`
	AddedBy      string     `bson:"added_by" json:"added_by"`
	RequestedAt  time.Time  `bson:"requested_at" json:"requested_at"`
	IsTakeaway   bool       `bson:"is_takeaway" json:"is_takeaway"`
	UpdatedAt    *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// PlacedBy captures who created an order. It is never rewritten.
type PlacedBy struct {
	Username string `bson:"username" json:"username"`
	Role     string `bson:"role" json:"role"`
}

// Order defines the persisted order document.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Table          TableRef           `bson:"table" json:"table"`
	CustomerName   string             `bson:"customer_name" json:"customer_name"`
	PhoneNumber    string             `bson:"phone_number" json:"phone_number"`
	Items          []Item             `bson:"items" json:"items"`
	OrderDateTime  time.Time          `bson:"order_date_time" json:"order_date_time"`
	OrderStatus    string             `bson:"order_status" json:"order_status"`
	DineInTakeaway string             `bson:"dine_in_takeaway" json:"dine_in_takeaway"`
	BillAmount     float64            `bson:"bill_amount" json:"bill_amount"`
	PaymentStatus  string             `bson:"payment_status" json:"payment_status"`
	PaymentMode    string             `bson:"payment_mode,omitempty" json:"payment_mode,omitempty"`
	PlacedBy       PlacedBy           `bson:"placed_by" json:"placed_by"`
}

// ItemIndex returns the position of itemID in o.Items, or -1.
func (o *Order) ItemIndex(itemID string) int {
	for i := range o.Items {
		if o.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate items without touching the
// original slice.
func (o *Order) Clone() *Order {
	out := *o
	if o.Items != nil {
		out.Items = make([]Item, len(o.Items))
		copy(out.Items, o.Items)
		for i := range out.Items {
			if ts := o.Items[i].UpdatedAt; ts != nil {
				t := *ts
				out.Items[i].UpdatedAt = &t
			}
		}
	}
	return &out
}
