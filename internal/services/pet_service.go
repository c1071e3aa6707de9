package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const petPlaceholderImage = "/pet-placeholder.png"

// PetService encapsulates the business logic for pet profiles.
type PetService struct {
	repo      *repository.PetRepository
	imageRepo *repository.ImageRepository
}

// NewPetService creates a new instance of PetService.
func NewPetService(repo *repository.PetRepository, imageRepo *repository.ImageRepository) *PetService {
	return &PetService{
		repo:      repo,
		imageRepo: imageRepo,
	}
}

// CreatePet registers a new pet owned by the given user.
func (s *PetService) CreatePet(ctx context.Context, pet *models.Pet, ownerID primitive.ObjectID) (*models.Pet, error) {
	if pet.Name == "" || pet.Type == "" {
		return nil, fmt.Errorf("pet must have a name and a type")
	}

	pet.OwnerID = ownerID
	if pet.Image == "" {
		pet.Image = petPlaceholderImage
	} else {
		s.recordImage(ctx, ownerID, pet.Image)
	}

	return s.repo.CreatePet(ctx, pet)
}

// GetPet fetches a single pet profile.
func (s *PetService) GetPet(ctx context.Context, id string) (*models.Pet, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid pet ID")
	}

	pet, err := s.repo.GetPetByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: pet %s", ErrNotFound, id)
		}
		return nil, err
	}
	return pet, nil
}

// GetPetsByOwner returns all pets of a user, newest first.
func (s *PetService) GetPetsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Pet, error) {
	return s.repo.GetPetsByOwner(ctx, ownerID)
}

// GetAdoptablePets returns all pets currently listed for adoption.
func (s *PetService) GetAdoptablePets(ctx context.Context) ([]models.Pet, error) {
	return s.repo.GetPetsWaitingForAdoption(ctx)
}

// UpdatePet applies owner-initiated attribute edits to a pet.
func (s *PetService) UpdatePet(ctx context.Context, id string, actingUserID primitive.ObjectID, updates map[string]interface{}) (*models.Pet, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid pet ID")
	}

	pet, err := s.repo.GetPetByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: pet %s", ErrNotFound, id)
		}
		return nil, err
	}
	if pet.OwnerID != actingUserID {
		return nil, fmt.Errorf("%w: only the owner can edit a pet", ErrUnauthorized)
	}

	// Owners edit attributes only; ownership moves through the adoption
	// workflow or an administrative transfer.
	allowed := map[string]interface{}{}
	for _, field := range []string{"name", "type", "age", "image", "waiting_for_adoption"} {
		if value, ok := updates[field]; ok {
			allowed[field] = value
		}
	}

	if image, ok := allowed["image"].(string); ok && image != "" && image != petPlaceholderImage {
		s.recordImage(ctx, actingUserID, image)
	}

	if len(allowed) > 0 {
		if err := s.repo.UpdatePet(ctx, objID, allowed); err != nil {
			return nil, err
		}
	}

	return s.repo.GetPetByID(ctx, objID)
}

// DeletePet removes a pet. Only the owner may delete it.
func (s *PetService) DeletePet(ctx context.Context, id string, actingUserID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid pet ID")
	}

	pet, err := s.repo.GetPetByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: pet %s", ErrNotFound, id)
		}
		return err
	}
	if pet.OwnerID != actingUserID {
		return fmt.Errorf("%w: only the owner can delete a pet", ErrUnauthorized)
	}

	return s.repo.DeletePet(ctx, objID)
}

// AttachImage sets a newly uploaded image on a pet.
func (s *PetService) AttachImage(ctx context.Context, id string, actingUserID primitive.ObjectID, url string) (*models.Pet, error) {
	return s.UpdatePet(ctx, id, actingUserID, map[string]interface{}{"image": url})
}

func (s *PetService) recordImage(ctx context.Context, userID primitive.ObjectID, url string) {
	if s.imageRepo == nil {
		return
	}
	if err := s.imageRepo.SaveImage(ctx, userID, url); err != nil {
		logrus.WithError(err).Warn("Failed to record uploaded image")
	}
}
