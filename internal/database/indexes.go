package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(OrdersCollection).Indexes()

	orderIndexes := []mongo.IndexModel{
		{
			// kitchen queue scans
			Keys:    bson.D{{Key: "items.status", Value: 1}},
			Options: options.Index().SetName("items_status_index"),
		},
		{
			Keys:    bson.D{{Key: "placed_by.username", Value: 1}},
			Options: options.Index().SetName("placed_by_username_index"),
		},
		{
			Keys:    bson.D{{Key: "customer_name", Value: 1}},
			Options: options.Index().SetName("customer_name_index"),
		},
	}

	log.Println("[DB] [INFO] EnsureOrderIndexes: creating order indexes")
	names, err := indexes.CreateMany(ctx, orderIndexes)
	if err != nil {
		log.Println("[DB] [ERROR] EnsureOrderIndexes:", err)
		return err
	}
	log.Println("[DB] [INFO] EnsureOrderIndexes: indexes ready:", names)
	return nil
}

func EnsureTabIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(TabsCollection).Indexes()

	nameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_unique").
			SetUnique(true),
	}

	log.Println("[DB] [INFO] EnsureTabIndexes: creating name_unique index")
	_, err := indexes.CreateOne(ctx, nameIndex)
	if err != nil {
		log.Println("[DB] [ERROR] EnsureTabIndexes: name index error:", err)
		return err
	}
	log.Println("[DB] [INFO] EnsureTabIndexes: name_unique index created")
	return nil
}
