package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Adoption request statuses. "accepted" and "rejected" are terminal.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// AdoptionRequest records a user asking to adopt a pet. OwnerID is the
// pet's owner captured at creation time; if the pet changes hands before
// the request is handled, the stale value blocks acceptance.
type AdoptionRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PetID       primitive.ObjectID `bson:"pet_id" json:"pet_id"`
	RequesterID primitive.ObjectID `bson:"requester_id" json:"requester_id"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
