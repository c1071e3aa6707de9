package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Danelya04/PawPal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImageRepository keeps an audit trail of uploaded images per user.
type ImageRepository struct {
	collection *mongo.Collection
}

func NewImageRepository(db *mongo.Database) *ImageRepository {
	return &ImageRepository{
		collection: db.Collection("images"),
	}
}

// SaveImage records an uploaded image URL for a user.
func (r *ImageRepository) SaveImage(ctx context.Context, userID primitive.ObjectID, url string) error {
	img := models.Image{
		UserID:    userID,
		URL:       url,
		CreatedAt: time.Now(),
	}
	_, err := r.collection.InsertOne(ctx, img)
	if err != nil {
		return fmt.Errorf("failed to save image record: %v", err)
	}
	return nil
}

// GetImagesByUser returns a user's uploaded images, newest first.
func (r *ImageRepository) GetImagesByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Image, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch images: %v", err)
	}
	defer cursor.Close(ctx)

	var images []models.Image
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %v", err)
	}
	return images, nil
}
