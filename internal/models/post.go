package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a community feed entry. PublisherID always matches the user
// who created the post; Publisher is the display name snapshotted at
// creation time.
type Post struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Content     string               `bson:"content" json:"content"`
	Images      []string             `bson:"images,omitempty" json:"images,omitempty"`
	Publisher   string               `bson:"publisher" json:"publisher"`
	PublisherID primitive.ObjectID   `bson:"publisher_id" json:"publisher_id"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	LikesCount  int                  `bson:"likes_count" json:"likes_count"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}
