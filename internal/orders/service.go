// Package orders coordinates every mutation of order documents.
//
// Two write paths exist. Single-item changes (kitchen advances, single-item
// cancellation) read the order, validate the transition and then issue a
// conditional positional update keyed on the item id and the status that was
// observed; a lost race surfaces as apperr.KindConflict and nothing is
// written. Bulk changes to the item list (takeaway flags, cancellations,
// appended items, item deletion) rewrite the whole items array. That path has
// no per-item guarantee: concurrent whole-array writers race and the last one
// wins, dropping any targeted update that landed in between.
//
// The service keeps no state between calls and never retries.
package orders

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tabserv/internal/apperr"
	"tabserv/internal/models"
	"tabserv/internal/policy"
)

const (
	defaultKitchenLimit = 10
	maxKitchenLimit     = 100
)

type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how missing item ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func parseOrderID(op, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.KindInvalidArgument, op, "invalid order ID format")
	}
	return id, nil
}

// internal logs an unexpected store failure with its context and hides it
// behind an opaque Internal error.
func internal(op string, id primitive.ObjectID, err error) error {
	log.Printf("[ORDER] [ERROR] %s order=%s: %v", op, id.Hex(), err)
	return apperr.Wrap(op, err)
}

// load reads an order, mapping a missing document to NotFound.
func (s *Service) load(ctx context.Context, op string, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, apperr.New(apperr.KindNotFound, op, "order not found")
	}
	if err != nil {
		return nil, internal(op, id, err)
	}
	return order, nil
}

// CreateOrder persists a new order placed by p and returns it with its id.
func (s *Service) CreateOrder(ctx context.Context, d Draft, p models.Principal) (*models.Order, error) {
	const op = "CreateOrder"

	if p.Username == "" {
		return nil, apperr.New(apperr.KindForbidden, op, "unauthenticated principal")
	}

	order, err := s.buildOrder(d, models.PlacedBy{Username: p.Username, Role: p.Role}, nil)
	if err != nil {
		return nil, err
	}

	id, err := s.store.Create(ctx, order)
	if err != nil {
		return nil, internal(op, primitive.NilObjectID, err)
	}
	order.ID = id

	log.Printf("[ORDER] [INFO] order created: %s by %s (%d items)", id.Hex(), p.Username, len(order.Items))
	return order, nil
}

// GetOrderStatus returns the order with the given id.
func (s *Service) GetOrderStatus(ctx context.Context, rawID string) (*models.Order, error) {
	const op = "GetOrderStatus"

	id, err := parseOrderID(op, rawID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, op, id)
}

// ReplaceOrder overwrites every caller-owned field of an order. Identity and
// placed_by are kept. Items that were already present keep status, cook,
// updated_at, added_by and requested_at; new items must enter as ordered or
// pending. A takeaway order can not be turned back into dine-in.
func (s *Service) ReplaceOrder(ctx context.Context, rawID string, d Draft, p models.Principal) (*models.Order, error) {
	const op = "ReplaceOrder"

	id, err := parseOrderID(op, rawID)
	if err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.EditOrder, policy.Resource{Order: existing}); err != nil {
		return nil, err
	}

	order, err := s.buildOrder(d, existing.PlacedBy, existing)
	if err != nil {
		return nil, err
	}
	if existing.DineInTakeaway == models.Takeaway && order.DineInTakeaway != models.Takeaway {
		return nil, apperr.New(apperr.KindPreconditionFailed, op, "a takeaway order cannot be converted back to dine-in")
	}
	order.ID = id

	err = s.store.Replace(ctx, id, order)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, apperr.New(apperr.KindNotFound, op, "order not found")
	}
	if err != nil {
		return nil, internal(op, id, err)
	}

	log.Printf("[ORDER] [INFO] order %s replaced by %s", id.Hex(), p.Username)
	return order, nil
}

// CancelOrder moves an order from ordered to cancelled. The write is
// conditioned on the order still being ordered.
func (s *Service) CancelOrder(ctx context.Context, rawID string, p models.Principal) error {
	const op = "CancelOrder"

	id, err := parseOrderID(op, rawID)
	if err != nil {
		return err
	}
	order, err := s.load(ctx, op, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.CancelOrder, policy.Resource{Order: order}); err != nil {
		return err
	}

	err = s.store.SetField(ctx, id, FieldOrderStatus, models.OrderStatusCancelled, models.OrderStatusOrdered)
	if errors.Is(err, ErrNoMatch) {
		return apperr.New(apperr.KindConflict, op, "order status changed, reload and retry")
	}
	if err != nil {
		return internal(op, id, err)
	}

	log.Printf("[ORDER] [INFO] order %s cancelled by %s", id.Hex(), p.Username)
	return nil
}

// ConvertToTakeaway switches a dine-in order to takeaway. The change is one
// way.
func (s *Service) ConvertToTakeaway(ctx context.Context, rawID string, p models.Principal) error {
	const op = "ConvertToTakeaway"

	id, err := parseOrderID(op, rawID)
	if err != nil {
		return err
	}
	order, err := s.load(ctx, op, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.EditOrder, policy.Resource{Order: order}); err != nil {
		return err
	}
	if order.DineInTakeaway != models.DineIn {
		return apperr.New(apperr.KindPreconditionFailed, op, "only dine-in orders can be converted to takeaway")
	}

	err = s.store.SetField(ctx, id, FieldDineInTakeaway, models.Takeaway, models.DineIn)
	if errors.Is(err, ErrNoMatch) {
		return apperr.New(apperr.KindConflict, op, "order changed, reload and retry")
	}
	if err != nil {
		return internal(op, id, err)
	}

	log.Printf("[ORDER] [INFO] order %s converted to takeaway by %s", id.Hex(), p.Username)
	return nil
}

// AdvanceItemStatus moves one item along the kitchen axis using the targeted
// path. cookRef names the cook to record; when empty the acting principal is
// recorded. The returned item reflects the written state.
func (s *Service) AdvanceItemStatus(ctx context.Context, rawID, itemID, newStatus, cookRef string, p models.Principal) (*models.Item, error) {
	const op = "AdvanceItemStatus"

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, apperr.New(apperr.KindValidation, op, "item_id is required")
	}
	if err := ValidateKitchenStatus(newStatus); err != nil {
		return nil, err
	}
	id, err := parseOrderID(op, rawID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.AdvanceItem, policy.Resource{}); err != nil {
		log.Printf("[KITCHEN] [WARN] unauthorized item update by %s (role %q)", p.Username, p.Role)
		return nil, err
	}

	order, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	idx := order.ItemIndex(itemID)
	if idx < 0 {
		return nil, apperr.New(apperr.KindNotFound, op, "item %s not found in order", itemID)
	}
	current := order.Items[idx].Status
	if err := CheckAdvance(current, newStatus); err != nil {
		return nil, err
	}

	cook := strings.TrimSpace(cookRef)
	if cook == "" {
		cook = p.Username
	}
	patch := ItemPatch{Status: newStatus, Cook: cook, UpdatedAt: s.now()}

	if err := s.updateItem(ctx, op, id, itemID, patch, current); err != nil {
		return nil, err
	}

	updated := ApplyPatch(order.Items[idx], patch)
	log.Printf("[KITCHEN] [INFO] order %s item %s: %s -> %s by %s", id.Hex(), itemID, current, newStatus, cook)
	return &updated, nil
}

// CancelItem cancels a single item that has not reached the kitchen, using
// the targeted path.
func (s *Service) CancelItem(ctx context.Context, rawID, itemID string, p models.Principal) (*models.Item, error) {
	const op = "CancelItem"

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, apperr.New(apperr.KindValidation, op, "item_id is required")
	}
	id, err := parseOrderID(op, rawID)
	if err != nil {
		return nil, err
	}
	order, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.EditOrder, policy.Resource{Order: order}); err != nil {
		return nil, err
	}
	idx := order.ItemIndex(itemID)
	if idx < 0 {
		return nil, apperr.New(apperr.KindNotFound, op, "item %s not found in order", itemID)
	}
	current := order.Items[idx].Status
	if err := CheckCancel(itemID, current); err != nil {
		return nil, err
	}

	patch := ItemPatch{Status: models.ItemStatusCancelled, UpdatedAt: s.now()}
	if err := s.updateItem(ctx, op, id, itemID, patch, current); err != nil {
		return nil, err
	}

	updated := ApplyPatch(order.Items[idx], patch)
	log.Printf("[ORDER] [INFO] order %s item %s cancelled by %s", id.Hex(), itemID, p.Username)
	return &updated, nil
}

// updateItem is the conditional positional write shared by the targeted
// operations. observed is the status the caller validated against.
func (s *Service) updateItem(ctx context.Context, op string, id primitive.ObjectID, itemID string, patch ItemPatch, observed string) error {
	err := s.store.UpdateItem(ctx, id, itemID, patch, []string{observed})
	if errors.Is(err, ErrNoMatch) {
		log.Printf("[ORDER] [WARN] %s order=%s item=%s: precondition %q no longer holds", op, id.Hex(), itemID, observed)
		return apperr.New(apperr.KindConflict, op, "item %s changed concurrently, reload and retry", itemID)
	}
	if err != nil {
		return internal(op, id, err)
	}
	return nil
}

// ModifyItems applies takeaway flags, cancellations and appended items in one
// whole-array rewrite and returns the resulting item list. Any cancellation
// of an item that already reached the kitchen fails the whole request before
// anything is written.
func (s *Service) ModifyItems(ctx context.Context, rawID string, mods Modifications, p models.Principal) ([]models.Item, error) {
	const op = "ModifyItems"

	if err := mods.validate(); err != nil {
		return nil, err
	}
	id, err := parseOrderID(op, rawID)
	if err != nil {
		return nil, err
	}
	order, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.EditOrder, policy.Resource{Order: order}); err != nil {
		return nil, err
	}

	takeaway := idSet(mods.TakeawayItemIDs)
	cancel := idSet(mods.CancelItemIDs)
	now := s.now()

	items := make([]models.Item, 0, len(order.Items)+len(mods.NewItems))
	for _, item := range order.Items {
		if _, ok := takeaway[item.ItemID]; ok {
			item.IsTakeaway = true
		}
		if _, ok := cancel[item.ItemID]; ok {
			if err := CheckCancel(item.ItemID, item.Status); err != nil {
				return nil, err
			}
			item.Status = models.ItemStatusCancelled
		}
		items = append(items, item)
	}
	for _, item := range mods.NewItems {
		normalized, err := normalizeItem(item, p.Username, now, s.newID, true)
		if err != nil {
			return nil, err
		}
		items = append(items, normalized)
	}

	if err := s.replaceItems(ctx, op, id, items); err != nil {
		return nil, err
	}

	log.Printf("[ORDER] [INFO] order %s items modified by %s: takeaway=%d cancel=%d new=%d",
		id.Hex(), p.Username, len(mods.TakeawayItemIDs), len(mods.CancelItemIDs), len(mods.NewItems))
	return items, nil
}

// MarkItemsTakeaway flags the listed items as takeaway.
func (s *Service) MarkItemsTakeaway(ctx context.Context, rawID string, itemIDs []string, p models.Principal) ([]models.Item, error) {
	return s.ModifyItems(ctx, rawID, Modifications{TakeawayItemIDs: itemIDs}, p)
}

// DeleteItem removes an item from the order. Deleting an item that is not
// present succeeds without writing.
func (s *Service) DeleteItem(ctx context.Context, rawID, itemID string, p models.Principal) error {
	const op = "DeleteItem"

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return apperr.New(apperr.KindValidation, op, "item_id is required")
	}
	id, err := parseOrderID(op, rawID)
	if err != nil {
		return err
	}
	order, err := s.load(ctx, op, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.EditOrder, policy.Resource{Order: order}); err != nil {
		return err
	}

	if order.ItemIndex(itemID) < 0 {
		return nil
	}
	items := make([]models.Item, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ItemID != itemID {
			items = append(items, item)
		}
	}

	if err := s.replaceItems(ctx, op, id, items); err != nil {
		return err
	}

	log.Printf("[ORDER] [INFO] item %s deleted from order %s by %s", itemID, id.Hex(), p.Username)
	return nil
}

func (s *Service) replaceItems(ctx context.Context, op string, id primitive.ObjectID, items []models.Item) error {
	err := s.store.ReplaceItems(ctx, id, items)
	if errors.Is(err, ErrOrderNotFound) {
		return apperr.New(apperr.KindNotFound, op, "order not found")
	}
	if err != nil {
		return internal(op, id, err)
	}
	return nil
}

// SetBillingStatus records the payment status of an order.
func (s *Service) SetBillingStatus(ctx context.Context, rawID, status string, p models.Principal) error {
	const op = "SetBillingStatus"

	status = strings.TrimSpace(status)
	if status == "" {
		return apperr.New(apperr.KindValidation, op, "payment status is required")
	}
	id, err := parseOrderID(op, rawID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.SetBilling, policy.Resource{}); err != nil {
		return err
	}

	err = s.store.SetField(ctx, id, FieldPaymentStatus, status)
	if errors.Is(err, ErrNoMatch) {
		return apperr.New(apperr.KindNotFound, op, "order not found")
	}
	if err != nil {
		return internal(op, id, err)
	}

	log.Printf("[ORDER] [INFO] order %s payment status set to %q by %s", id.Hex(), status, p.Username)
	return nil
}

// DeleteOrder removes a whole order.
func (s *Service) DeleteOrder(ctx context.Context, rawID string, p models.Principal) error {
	const op = "DeleteOrder"

	id, err := parseOrderID(op, rawID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.DeleteOrder, policy.Resource{}); err != nil {
		return err
	}

	err = s.store.Delete(ctx, id)
	if errors.Is(err, ErrOrderNotFound) {
		return apperr.New(apperr.KindNotFound, op, "order not found")
	}
	if err != nil {
		return internal(op, id, err)
	}

	log.Printf("[ORDER] [INFO] order %s deleted by %s", id.Hex(), p.Username)
	return nil
}

// ListPendingKitchenItems pages through orders that still have kitchen work
// and returns them with only their pending and cooking items. limit 0 means
// the default page size.
func (s *Service) ListPendingKitchenItems(ctx context.Context, skip, limit int64) ([]models.Order, error) {
	const op = "ListPendingKitchenItems"

	if skip < 0 || limit < 0 {
		return nil, apperr.New(apperr.KindValidation, op, "skip and limit must not be negative")
	}
	if limit == 0 {
		limit = defaultKitchenLimit
	}
	if limit > maxKitchenLimit {
		limit = maxKitchenLimit
	}

	active := []string{models.ItemStatusPending, models.ItemStatusCooking}
	found, err := s.store.Find(ctx, Query{ItemStatuses: active, Skip: skip, Limit: limit})
	if err != nil {
		return nil, internal(op, primitive.NilObjectID, err)
	}

	out := make([]models.Order, 0, len(found))
	for _, order := range found {
		kept := make([]models.Item, 0, len(order.Items))
		for _, item := range order.Items {
			if contains(active, item.Status) {
				kept = append(kept, item)
			}
		}
		order.Items = kept
		out = append(out, order)
	}
	return out, nil
}

// ListOrdersByPrincipal returns every order placed by p.
func (s *Service) ListOrdersByPrincipal(ctx context.Context, p models.Principal) ([]models.Order, error) {
	const op = "ListOrdersByPrincipal"

	if p.Username == "" {
		return nil, apperr.New(apperr.KindForbidden, op, "unauthenticated principal")
	}
	found, err := s.store.Find(ctx, Query{PlacedBy: p.Username})
	if err != nil {
		return nil, internal(op, primitive.NilObjectID, err)
	}
	return found, nil
}

// Dish is the customer-facing view of one item.
type Dish struct {
	Dish   string `json:"dish"`
	Status string `json:"status"`
}

// CustomerOrder is the customer-facing view of an order.
type CustomerOrder struct {
	OrderID       string          `json:"order_id"`
	Table         models.TableRef `json:"table"`
	CustomerName  string          `json:"customer_name"`
	Dishes        []Dish          `json:"dishes"`
	OrderStatus   string          `json:"order_status"`
	OrderDateTime time.Time       `json:"order_date_time"`
}

// ListCustomerOrders returns a summary of orders whose customer name is the
// principal's username.
func (s *Service) ListCustomerOrders(ctx context.Context, p models.Principal) ([]CustomerOrder, error) {
	const op = "ListCustomerOrders"

	if p.Username == "" {
		return nil, apperr.New(apperr.KindForbidden, op, "unauthenticated principal")
	}
	found, err := s.store.Find(ctx, Query{CustomerName: p.Username})
	if err != nil {
		return nil, internal(op, primitive.NilObjectID, err)
	}

	out := make([]CustomerOrder, 0, len(found))
	for _, order := range found {
		dishes := make([]Dish, 0, len(order.Items))
		for _, item := range order.Items {
			dishes = append(dishes, Dish{Dish: item.Name, Status: item.Status})
		}
		out = append(out, CustomerOrder{
			OrderID:       order.ID.Hex(),
			Table:         order.Table,
			CustomerName:  order.CustomerName,
			Dishes:        dishes,
			OrderStatus:   order.OrderStatus,
			OrderDateTime: order.OrderDateTime,
		})
	}
	return out, nil
}
