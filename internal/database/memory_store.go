package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tabserv/internal/models"
	"tabserv/internal/orders"
	"tabserv/internal/tabs"
)

// MemoryOrderStore is an in-process orders.Store. The mutex plays the part of
// MongoDB's per-document write lock: each call is atomic on its own and calls
// never see partial writes. Documents are copied on the way in and out.
type MemoryOrderStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]*models.Order
	seq  []primitive.ObjectID
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{docs: map[primitive.ObjectID]*models.Order{}}
}

func (s *MemoryOrderStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryOrderStore) Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	doc := order.Clone()
	doc.ID = primitive.NewObjectID()
	if doc.Items == nil {
		doc.Items = []models.Item{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	s.seq = append(s.seq, doc.ID)
	return doc.ID, nil
}

func (s *MemoryOrderStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return doc.Clone(), nil
}

func matches(doc *models.Order, q orders.Query) bool {
	if q.PlacedBy != "" && doc.PlacedBy.Username != q.PlacedBy {
		return false
	}
	if q.CustomerName != "" && doc.CustomerName != q.CustomerName {
		return false
	}
	if len(q.ItemStatuses) == 0 {
		return true
	}
	for _, item := range doc.Items {
		for _, status := range q.ItemStatuses {
			if item.Status == status {
				return true
			}
		}
	}
	return false
}

// Find returns matches in insertion order, the natural order of this store.
func (s *MemoryOrderStore) Find(ctx context.Context, q orders.Query) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	found := []models.Order{}
	skipped := int64(0)
	for _, id := range s.seq {
		doc, ok := s.docs[id]
		if !ok || !matches(doc, q) {
			continue
		}
		if skipped < q.Skip {
			skipped++
			continue
		}
		found = append(found, *doc.Clone())
		if q.Limit > 0 && int64(len(found)) >= q.Limit {
			break
		}
	}
	return found, nil
}

func (s *MemoryOrderStore) Replace(ctx context.Context, id primitive.ObjectID, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return orders.ErrOrderNotFound
	}
	doc := order.Clone()
	doc.ID = id
	if doc.Items == nil {
		doc.Items = []models.Item{}
	}
	s.docs[id] = doc
	return nil
}

func fieldRef(doc *models.Order, field orders.Field) (*string, error) {
	switch field {
	case orders.FieldOrderStatus:
		return &doc.OrderStatus, nil
	case orders.FieldDineInTakeaway:
		return &doc.DineInTakeaway, nil
	case orders.FieldPaymentStatus:
		return &doc.PaymentStatus, nil
	case orders.FieldPaymentMode:
		return &doc.PaymentMode, nil
	default:
		return nil, fmt.Errorf("unknown order field %q", field)
	}
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (s *MemoryOrderStore) SetField(ctx context.Context, id primitive.ObjectID, field orders.Field, value string, expected ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return orders.ErrNoMatch
	}
	ref, err := fieldRef(doc, field)
	if err != nil {
		return err
	}
	if len(expected) > 0 && !oneOf(*ref, expected) {
		return orders.ErrNoMatch
	}
	*ref = value
	return nil
}

func (s *MemoryOrderStore) UpdateItem(ctx context.Context, id primitive.ObjectID, itemID string, patch orders.ItemPatch, expected []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if patch == (orders.ItemPatch{}) {
		return fmt.Errorf("empty item patch for item %s", itemID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return orders.ErrNoMatch
	}
	for i := range doc.Items {
		item := doc.Items[i]
		if item.ItemID != itemID {
			continue
		}
		if len(expected) > 0 && !oneOf(item.Status, expected) {
			continue
		}
		doc.Items[i] = orders.ApplyPatch(item, patch)
		return nil
	}
	return orders.ErrNoMatch
}

func (s *MemoryOrderStore) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return orders.ErrOrderNotFound
	}
	doc.Items = (&models.Order{Items: items}).Clone().Items
	if doc.Items == nil {
		doc.Items = []models.Item{}
	}
	return nil
}

func (s *MemoryOrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return orders.ErrOrderNotFound
	}
	delete(s.docs, id)
	for i, seqID := range s.seq {
		if seqID == id {
			s.seq = append(s.seq[:i], s.seq[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryTabStore is an in-process tabs.Store keyed by tab name.
type MemoryTabStore struct {
	mu     sync.Mutex
	byName map[string]models.Tab
}

func NewMemoryTabStore() *MemoryTabStore {
	return &MemoryTabStore{byName: map[string]models.Tab{}}
}

func (s *MemoryTabStore) Create(ctx context.Context, tab *models.Tab) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[tab.Name]; ok {
		return primitive.NilObjectID, tabs.ErrDuplicateName
	}
	doc := *tab
	doc.ID = primitive.NewObjectID()
	if tab.Table != nil {
		table := *tab.Table
		doc.Table = &table
	}
	s.byName[doc.Name] = doc
	return doc.ID, nil
}

func (s *MemoryTabStore) List(ctx context.Context) ([]models.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Tab, 0, len(s.byName))
	for _, tab := range s.byName {
		out = append(out, tab)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryTabStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return tabs.ErrTabNotFound
	}
	delete(s.byName, name)
	return nil
}

func (s *MemoryTabStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tab, ok := s.byName[oldName]
	if !ok {
		return tabs.ErrTabNotFound
	}
	if oldName == newName {
		return nil
	}
	if _, taken := s.byName[newName]; taken {
		return tabs.ErrDuplicateName
	}
	delete(s.byName, oldName)
	tab.Name = newName
	s.byName[newName] = tab
	return nil
}

func (s *MemoryTabStore) Update(ctx context.Context, name string, u tabs.Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tab, ok := s.byName[name]
	if !ok {
		return tabs.ErrTabNotFound
	}
	if u.IsEmpty() {
		return nil
	}
	if u.Table != nil {
		table := *u.Table
		tab.Table = &table
	}
	if u.User != nil {
		tab.User = *u.User
	}
	if u.UserType != nil {
		tab.UserType = *u.UserType
	}
	if u.WaiterRequest != nil {
		tab.WaiterRequest = *u.WaiterRequest
	}
	if u.WaiterText != nil {
		tab.WaiterText = *u.WaiterText
	}
	if u.SupportRequest != nil {
		tab.SupportRequest = *u.SupportRequest
	}
	if u.SupportText != nil {
		tab.SupportText = *u.SupportText
	}
	s.byName[name] = tab
	return nil
}

var (
	_ orders.Store = (*MemoryOrderStore)(nil)
	_ tabs.Store   = (*MemoryTabStore)(nil)
)
