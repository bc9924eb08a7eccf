package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tabserv/internal/models"
	"tabserv/internal/orders"
)

// OrderStore keeps orders in a MongoDB collection, one document per order
// with items embedded.
type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(OrdersCollection)}
}

func (s *OrderStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	doc := *order
	doc.ID = primitive.NewObjectID()
	if doc.Items == nil {
		doc.Items = []models.Item{}
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return primitive.NilObjectID, err
	}
	return doc.ID, nil
}

func (s *OrderStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func queryFilter(q orders.Query) bson.M {
	filter := bson.M{}
	if len(q.ItemStatuses) > 0 {
		filter["items.status"] = bson.M{"$in": q.ItemStatuses}
	}
	if q.PlacedBy != "" {
		filter["placed_by.username"] = q.PlacedBy
	}
	if q.CustomerName != "" {
		filter["customer_name"] = q.CustomerName
	}
	return filter
}

// Find returns matches in _id order, which follows insertion order.
func (s *OrderStore) Find(ctx context.Context, q orders.Query) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := s.coll.Find(ctx, queryFilter(q), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	found := []models.Order{}
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (s *OrderStore) Replace(ctx context.Context, id primitive.ObjectID, order *models.Order) error {
	doc := *order
	doc.ID = id
	if doc.Items == nil {
		doc.Items = []models.Item{}
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return orders.ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) SetField(ctx context.Context, id primitive.ObjectID, field orders.Field, value string, expected ...string) error {
	filter := bson.M{"_id": id}
	if len(expected) > 0 {
		filter[string(field)] = bson.M{"$in": expected}
	}

	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{string(field): value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return orders.ErrNoMatch
	}
	return nil
}

// UpdateItem uses $elemMatch so the positional operator binds to the element
// that satisfies both the id and the status precondition.
func (s *OrderStore) UpdateItem(ctx context.Context, id primitive.ObjectID, itemID string, patch orders.ItemPatch, expected []string) error {
	set := bson.M{}
	if patch.Status != "" {
		set["items.$.status"] = patch.Status
	}
	if patch.Cook != "" {
		set["items.$.cook"] = patch.Cook
	}
	if !patch.UpdatedAt.IsZero() {
		set["items.$.updated_at"] = patch.UpdatedAt
	}
	if len(set) == 0 {
		return fmt.Errorf("empty item patch for item %s", itemID)
	}

	match := bson.M{"item_id": itemID}
	if len(expected) > 0 {
		match["status"] = bson.M{"$in": expected}
	}
	filter := bson.M{
		"_id":   id,
		"items": bson.M{"$elemMatch": match},
	}

	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return orders.ErrNoMatch
	}
	return nil
}

func (s *OrderStore) ReplaceItems(ctx context.Context, id primitive.ObjectID, items []models.Item) error {
	if items == nil {
		items = []models.Item{}
	}
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"items": items}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return orders.ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return orders.ErrOrderNotFound
	}
	return nil
}

var _ orders.Store = (*OrderStore)(nil)
