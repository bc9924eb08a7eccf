package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tabserv/internal/models"
	"tabserv/internal/tabs"
)

// TabStore keeps tabs in MongoDB. Name uniqueness is enforced by the
// name_unique index created in EnsureTabIndexes.
type TabStore struct {
	coll *mongo.Collection
}

func NewTabStore(db *mongo.Database) *TabStore {
	return &TabStore{coll: db.Collection(TabsCollection)}
}

func (s *TabStore) Create(ctx context.Context, tab *models.Tab) (primitive.ObjectID, error) {
	doc := *tab
	doc.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, tabs.ErrDuplicateName
		}
		return primitive.NilObjectID, err
	}
	return doc.ID, nil
}

func (s *TabStore) List(ctx context.Context) ([]models.Tab, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	found := []models.Tab{}
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (s *TabStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return tabs.ErrTabNotFound
	}
	return nil
}

func (s *TabStore) Rename(ctx context.Context, oldName, newName string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"name": oldName}, bson.M{"$set": bson.M{"name": newName}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tabs.ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return tabs.ErrTabNotFound
	}
	return nil
}

func (s *TabStore) Update(ctx context.Context, name string, u tabs.Update) error {
	set := bson.M{}
	if u.Table != nil {
		set["table"] = *u.Table
	}
	if u.User != nil {
		set["user"] = *u.User
	}
	if u.UserType != nil {
		set["user_type"] = *u.UserType
	}
	if u.WaiterRequest != nil {
		set["waiter_request"] = *u.WaiterRequest
	}
	if u.WaiterText != nil {
		set["waiter_text"] = *u.WaiterText
	}
	if u.SupportRequest != nil {
		set["support_request"] = *u.SupportRequest
	}
	if u.SupportText != nil {
		set["support_text"] = *u.SupportText
	}

	filter := bson.M{"name": name}
	if u.IsEmpty() {
		n, err := s.coll.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}
		if n == 0 {
			return tabs.ErrTabNotFound
		}
		return nil
	}

	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return tabs.ErrTabNotFound
	}
	return nil
}

var _ tabs.Store = (*TabStore)(nil)
