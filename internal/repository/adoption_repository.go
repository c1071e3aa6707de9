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

// AdoptionRepository handles database operations on adoption requests.
type AdoptionRepository struct {
	collection *mongo.Collection
}

// NewAdoptionRepository creates a new instance of AdoptionRepository.
func NewAdoptionRepository(db *mongo.Database) *AdoptionRepository {
	return &AdoptionRepository{
		collection: db.Collection("adoption_requests"),
	}
}

// CreateRequest inserts a new pending adoption request.
func (r *AdoptionRepository) CreateRequest(ctx context.Context, req *models.AdoptionRequest) (*models.AdoptionRequest, error) {
	req.Status = models.RequestStatusPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert adoption request")
		return nil, fmt.Errorf("failed to create adoption request: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	req.ID = insertedID

	logrus.WithFields(logrus.Fields{
		"requestID": req.ID.Hex(),
		"petID":     req.PetID.Hex(),
	}).Info("Adoption request created")
	return req, nil
}

// GetRequestByID fetches a single adoption request.
func (r *AdoptionRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error) {
	var req models.AdoptionRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find adoption request: %v", err)
	}
	return &req, nil
}

// GetPendingRequest returns the pending request a user has for a pet, if any.
func (r *AdoptionRepository) GetPendingRequest(ctx context.Context, petID, requesterID primitive.ObjectID) (*models.AdoptionRequest, error) {
	filter := bson.M{
		"pet_id":       petID,
		"requester_id": requesterID,
		"status":       models.RequestStatusPending,
	}

	var req models.AdoptionRequest
	err := r.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pending request: %v", err)
	}
	return &req, nil
}

// GetPendingRequestsByPet returns all pending requests for a pet. When
// ownerID is non-zero the query is additionally filtered by the owner
// captured on the requests.
func (r *AdoptionRepository) GetPendingRequestsByPet(ctx context.Context, petID, ownerID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	filter := bson.M{
		"pet_id": petID,
		"status": models.RequestStatusPending,
	}
	if !ownerID.IsZero() {
		filter["owner_id"] = ownerID
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logrus.WithError(err).WithField("petID", petID.Hex()).Error("Failed to fetch pending requests")
		return nil, fmt.Errorf("failed to fetch pending requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.AdoptionRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %v", err)
	}
	return requests, nil
}

// GetRequestsByRequester returns every request a user has filed, any status.
func (r *AdoptionRepository) GetRequestsByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"requester_id": requesterID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.AdoptionRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %v", err)
	}
	return requests, nil
}

// UpdateRequestStatus transitions a request and stamps the update time.
func (r *AdoptionRepository) UpdateRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		logrus.WithError(err).WithField("requestID", id.Hex()).Error("Failed to update request status")
		return fmt.Errorf("failed to update request status: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RejectOtherPending rejects every pending request for a pet except the
// given one. Used when a request is accepted, inside the same transaction.
func (r *AdoptionRepository) RejectOtherPending(ctx context.Context, petID, exceptID primitive.ObjectID) error {
	filter := bson.M{
		"pet_id": petID,
		"status": models.RequestStatusPending,
		"_id":    bson.M{"$ne": exceptID},
	}
	update := bson.M{"$set": bson.M{
		"status":     models.RequestStatusRejected,
		"updated_at": time.Now(),
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		logrus.WithError(err).WithField("petID", petID.Hex()).Error("Failed to reject sibling requests")
		return fmt.Errorf("failed to reject sibling requests: %v", err)
	}

	if result.ModifiedCount > 0 {
		logrus.WithFields(logrus.Fields{
			"petID": petID.Hex(),
			"count": result.ModifiedCount,
		}).Info("Rejected sibling adoption requests")
	}
	return nil
}

// ListStalePending returns pending requests created before the cutoff.
func (r *AdoptionRepository) ListStalePending(ctx context.Context, before time.Time) ([]models.AdoptionRequest, error) {
	filter := bson.M{
		"status":     models.RequestStatusPending,
		"created_at": bson.M{"$lt": before},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stale requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.AdoptionRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %v", err)
	}
	return requests, nil
}
