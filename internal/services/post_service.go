package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostService encapsulates the business logic for community posts.
type PostService struct {
	repo *repository.PostRepository
}

// NewPostService creates a new instance of PostService.
func NewPostService(repo *repository.PostRepository) *PostService {
	return &PostService{
		repo: repo,
	}
}

// CreatePost publishes a new post. The publisher id always comes from
// the acting user, never from the payload.
func (s *PostService) CreatePost(ctx context.Context, post *models.Post, publisherID primitive.ObjectID, publisherName string) (*models.Post, error) {
	if post.Title == "" && post.Content == "" {
		return nil, fmt.Errorf("post must have a title or content")
	}

	post.PublisherID = publisherID
	if post.Publisher == "" {
		post.Publisher = publisherName
	}
	post.Likes = []primitive.ObjectID{}
	post.LikesCount = 0

	return s.repo.CreatePost(ctx, post)
}

// GetPost fetches a single post.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID")
	}

	post, err := s.repo.GetPostByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
		}
		return nil, err
	}
	return post, nil
}

// GetAllPosts returns the community feed, newest first.
func (s *PostService) GetAllPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	return s.repo.GetAllPosts(ctx, limit)
}

// GetPostsByPublisher returns all posts of one user, newest first.
func (s *PostService) GetPostsByPublisher(ctx context.Context, publisherID primitive.ObjectID) ([]models.Post, error) {
	return s.repo.GetPostsByPublisher(ctx, publisherID)
}

// UpdatePost edits a post. Only the publisher may edit it.
func (s *PostService) UpdatePost(ctx context.Context, id string, actingUserID primitive.ObjectID, updates map[string]interface{}) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID")
	}

	post, err := s.repo.GetPostByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
		}
		return nil, err
	}
	if post.PublisherID != actingUserID {
		return nil, fmt.Errorf("%w: only the publisher can edit a post", ErrUnauthorized)
	}

	allowed := map[string]interface{}{}
	for _, field := range []string{"title", "content", "images"} {
		if value, ok := updates[field]; ok {
			allowed[field] = value
		}
	}

	if len(allowed) > 0 {
		if err := s.repo.UpdatePost(ctx, objID, allowed); err != nil {
			return nil, err
		}
	}

	return s.repo.GetPostByID(ctx, objID)
}

// DeletePost removes a post. Only the publisher may delete it.
func (s *PostService) DeletePost(ctx context.Context, id string, actingUserID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID")
	}

	post, err := s.repo.GetPostByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: post %s", ErrNotFound, id)
		}
		return err
	}
	if post.PublisherID != actingUserID {
		return fmt.Errorf("%w: only the publisher can delete a post", ErrUnauthorized)
	}

	return s.repo.DeletePost(ctx, objID)
}

// ToggleLike likes a post if the user has not liked it yet, otherwise
// removes the like. The counter never drops below zero.
func (s *PostService) ToggleLike(ctx context.Context, id string, userID primitive.ObjectID) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID")
	}

	post, err := s.repo.GetPostByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
		}
		return nil, err
	}

	liked := false
	for _, likerID := range post.Likes {
		if likerID == userID {
			liked = true
			break
		}
	}

	if liked {
		newCount := post.LikesCount - 1
		if newCount < 0 {
			newCount = 0
		}
		err = s.repo.RemoveLike(ctx, objID, userID, newCount)
	} else {
		err = s.repo.AddLike(ctx, objID, userID, post.LikesCount+1)
	}
	if err != nil {
		return nil, err
	}

	return s.repo.GetPostByID(ctx, objID)
}
