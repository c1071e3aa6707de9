package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pet represents an animal profile owned by a user. A pet has at most
// one owner at any time; ownership only changes through the adoption
// workflow or an administrative transfer.
type Pet struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Type               string             `bson:"type" json:"type"` // "Dog", "Cat", etc.
	Age                string             `bson:"age" json:"age"`
	Image              string             `bson:"image,omitempty" json:"image,omitempty"`
	OwnerID            primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	WaitingForAdoption bool               `bson:"waiting_for_adoption" json:"waiting_for_adoption"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}
