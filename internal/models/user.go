package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the PawPal community.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	DisplayName    string             `bson:"display_name,omitempty" json:"display_name,omitempty"`
	PhotoURL       string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	City           string             `bson:"city,omitempty" json:"city,omitempty"`
	Role           string             `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the profile shape exposed to other users.
type PublicUser struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"display_name,omitempty"`
	PhotoURL    string             `json:"photo_url,omitempty"`
	Bio         string             `json:"bio,omitempty"`
	City        string             `json:"city,omitempty"`
}
