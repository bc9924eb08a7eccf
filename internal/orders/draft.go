package orders

import (
	"strings"
	"time"

	"tabserv/internal/apperr"
	"tabserv/internal/models"
)

// Draft is the caller-supplied part of an order, used for creation and for
// whole-document replacement. Identity and placed_by are always set by the
// service.
type Draft struct {
	Table          models.TableRef
	CustomerName   string
	PhoneNumber    string
	Items          []models.Item
	OrderDateTime  time.Time
	OrderStatus    string
	DineInTakeaway string
	BillAmount     float64
	PaymentStatus  string
	PaymentMode    string
}

// Modifications is a bulk edit of an order's item list. Unknown ids in
// TakeawayItemIDs and CancelItemIDs are ignored.
type Modifications struct {
	TakeawayItemIDs []string
	CancelItemIDs   []string
	NewItems        []models.Item
}

func (m Modifications) validate() error {
	if len(m.TakeawayItemIDs) == 0 && len(m.CancelItemIDs) == 0 && len(m.NewItems) == 0 {
		return apperr.New(apperr.KindValidation, "modify items", "no modifications requested")
	}
	for _, id := range append(append([]string{}, m.TakeawayItemIDs...), m.CancelItemIDs...) {
		if strings.TrimSpace(id) == "" {
			return apperr.New(apperr.KindValidation, "modify items", "item ids must not be empty")
		}
	}
	return nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[strings.TrimSpace(id)] = struct{}{}
	}
	return set
}

// buildOrder validates d and turns it into an order document with defaults
// applied. placedBy fills added_by on items that do not carry one. When
// existing is set, items whose id is already on it keep their stored state.
func (s *Service) buildOrder(d Draft, placedBy models.PlacedBy, existing *models.Order) (*models.Order, error) {
	const op = "validate order"
	now := s.now()

	order := &models.Order{
		Table:          models.TableRef(strings.TrimSpace(string(d.Table))),
		CustomerName:   strings.TrimSpace(d.CustomerName),
		PhoneNumber:    strings.TrimSpace(d.PhoneNumber),
		OrderDateTime:  d.OrderDateTime,
		OrderStatus:    d.OrderStatus,
		DineInTakeaway: d.DineInTakeaway,
		BillAmount:     d.BillAmount,
		PaymentStatus:  strings.TrimSpace(d.PaymentStatus),
		PaymentMode:    strings.TrimSpace(d.PaymentMode),
		PlacedBy:       placedBy,
	}
	if order.CustomerName == "" {
		return nil, apperr.New(apperr.KindValidation, op, "customer_name is required")
	}
	if order.OrderDateTime.IsZero() {
		order.OrderDateTime = now
	}
	if order.OrderStatus == "" {
		order.OrderStatus = models.OrderStatusOrdered
	}
	if !contains(orderStatuses, order.OrderStatus) {
		return nil, apperr.New(apperr.KindValidation, op,
			"invalid order_status %q, must be one of: %s", order.OrderStatus, strings.Join(orderStatuses, ", "))
	}
	if order.DineInTakeaway == "" {
		order.DineInTakeaway = models.DineIn
	}
	if !contains(serviceModes, order.DineInTakeaway) {
		return nil, apperr.New(apperr.KindValidation, op,
			"invalid dine_in_takeaway %q, must be one of: %s", order.DineInTakeaway, strings.Join(serviceModes, ", "))
	}
	if order.BillAmount < 0 {
		return nil, apperr.New(apperr.KindValidation, op, "bill_amount must not be negative")
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = "unpaid"
	}

	order.Items = make([]models.Item, 0, len(d.Items))
	for _, item := range d.Items {
		entering := true
		if existing != nil {
			if id := strings.TrimSpace(item.ItemID); id != "" {
				if idx := existing.ItemIndex(id); idx >= 0 {
					item = carryItemState(item, existing.Items[idx])
					entering = false
				}
			}
		}
		normalized, err := normalizeItem(item, placedBy.Username, now, s.newID, entering)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, normalized)
	}
	return order, nil
}
