package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is an audit record of an uploaded picture, kept per user.
type Image struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	URL       string             `bson:"url" json:"url"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
