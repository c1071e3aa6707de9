package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Danelya04/PawPal/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PetRepository handles database operations related to pets.
type PetRepository struct {
	collection *mongo.Collection
}

// NewPetRepository creates a new instance of PetRepository.
func NewPetRepository(db *mongo.Database) *PetRepository {
	return &PetRepository{
		collection: db.Collection("pets"),
	}
}

// CreatePet inserts a new pet into the database.
func (r *PetRepository) CreatePet(ctx context.Context, pet *models.Pet) (*models.Pet, error) {
	pet.CreatedAt = time.Now()
	pet.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, pet)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert pet")
		return nil, fmt.Errorf("failed to insert pet: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	pet.ID = insertedID

	logrus.WithField("petID", pet.ID.Hex()).Info("Pet inserted successfully")
	return pet, nil
}

// GetPetByID fetches a pet by its ID.
func (r *PetRepository) GetPetByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	var pet models.Pet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logrus.WithError(err).WithField("petID", id.Hex()).Error("Failed to find pet by ID")
		return nil, fmt.Errorf("failed to find pet: %v", err)
	}
	return &pet, nil
}

// GetPetsByOwner fetches all pets of a user, newest first.
func (r *PetRepository) GetPetsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		logrus.WithError(err).WithField("ownerID", ownerID.Hex()).Error("Failed to fetch pets by owner")
		return nil, fmt.Errorf("failed to fetch pets: %v", err)
	}
	defer cursor.Close(ctx)

	var pets []models.Pet
	if err := cursor.All(ctx, &pets); err != nil {
		return nil, fmt.Errorf("failed to decode pets: %v", err)
	}
	return pets, nil
}

// GetPetsWaitingForAdoption fetches all pets currently listed for adoption.
func (r *PetRepository) GetPetsWaitingForAdoption(ctx context.Context) ([]models.Pet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"waiting_for_adoption": true}, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch adoption listings")
		return nil, fmt.Errorf("failed to fetch adoption listings: %v", err)
	}
	defer cursor.Close(ctx)

	var pets []models.Pet
	if err := cursor.All(ctx, &pets); err != nil {
		return nil, fmt.Errorf("failed to decode pets: %v", err)
	}
	return pets, nil
}

// UpdatePet applies a partial update to a pet document.
func (r *PetRepository) UpdatePet(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		logrus.WithError(err).WithField("petID", id.Hex()).Error("Failed to update pet")
		return fmt.Errorf("failed to update pet: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	logrus.WithField("petID", id.Hex()).Info("Pet updated successfully")
	return nil
}

// DeletePet deletes a pet from the database by its ID.
func (r *PetRepository) DeletePet(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("petID", id.Hex()).Error("Failed to delete pet")
		return fmt.Errorf("failed to delete pet: %v", err)
	}

	logrus.WithField("petID", id.Hex()).Info("Pet deleted successfully")
	return nil
}

// TransferOwnership moves a pet to a new owner and takes it off the
// adoption listings. The update is filtered on the expected current
// owner, so a concurrent transfer loses with ErrNotMatched instead of
// silently overwriting.
func (r *PetRepository) TransferOwnership(ctx context.Context, petID, expectedOwnerID, newOwnerID primitive.ObjectID) error {
	filter := bson.M{"_id": petID, "owner_id": expectedOwnerID}
	update := bson.M{"$set": bson.M{
		"owner_id":             newOwnerID,
		"waiting_for_adoption": false,
		"updated_at":           time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("petID", petID.Hex()).Error("Failed to transfer ownership")
		return fmt.Errorf("failed to transfer ownership: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotMatched
	}

	logrus.WithFields(logrus.Fields{
		"petID":      petID.Hex(),
		"newOwnerID": newOwnerID.Hex(),
	}).Info("Pet ownership transferred")
	return nil
}
