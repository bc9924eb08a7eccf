package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Tab is a named dining session that customers and staff use to request
// service.
type Tab struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	User           string             `bson:"user" json:"user"`
	UserType       string             `bson:"user_type" json:"user_type"`
	Table          *int               `bson:"table,omitempty" json:"table,omitempty"`
	WaiterRequest  bool               `bson:"waiter_request" json:"waiter_request"`
	WaiterText     string             `bson:"waiter_text" json:"waiter_text"`
	SupportRequest bool               `bson:"support_request" json:"support_request"`
	SupportText    string             `bson:"support_text" json:"support_text"`
}
