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

// PostRepository handles database operations related to community posts.
type PostRepository struct {
	collection *mongo.Collection
}

// NewPostRepository creates a new instance of PostRepository.
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		collection: db.Collection("posts"),
	}
}

// CreatePost inserts a new post into the database.
func (r *PostRepository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert post")
		return nil, fmt.Errorf("failed to insert post: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	post.ID = insertedID

	logrus.WithField("postID", post.ID.Hex()).Info("Post created successfully")
	return post, nil
}

// GetPostByID fetches a post by its ID.
func (r *PostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %v", err)
	}
	return &post, nil
}

// GetAllPosts fetches the community feed, newest first.
func (r *PostRepository) GetAllPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch posts")
		return nil, fmt.Errorf("failed to fetch posts: %v", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %v", err)
	}
	return posts, nil
}

// GetPostsByPublisher fetches all posts of one user, newest first.
func (r *PostRepository) GetPostsByPublisher(ctx context.Context, publisherID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"publisher_id": publisherID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user posts: %v", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %v", err)
	}
	return posts, nil
}

// UpdatePost applies a partial update to a post document.
func (r *PostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		logrus.WithError(err).WithField("postID", id.Hex()).Error("Failed to update post")
		return fmt.Errorf("failed to update post: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by its ID.
func (r *PostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("postID", id.Hex()).Error("Failed to delete post")
		return fmt.Errorf("failed to delete post: %v", err)
	}
	return nil
}

// AddLike records a like from a user, keeping the counter in sync.
func (r *PostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID, newCount int) error {
	update := bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"likes_count": newCount},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return fmt.Errorf("failed to like post: %v", err)
	}
	return nil
}

// RemoveLike removes a user's like, keeping the counter in sync.
func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID, newCount int) error {
	update := bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"likes_count": newCount},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return fmt.Errorf("failed to unlike post: %v", err)
	}
	return nil
}
