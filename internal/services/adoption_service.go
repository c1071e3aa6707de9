package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/repository"
	"github.com/Danelya04/PawPal/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// PetStore is the slice of pet storage the adoption workflow needs.
type PetStore interface {
	GetPetByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error)
	TransferOwnership(ctx context.Context, petID, expectedOwnerID, newOwnerID primitive.ObjectID) error
}

// AdoptionStore is the adoption-request storage used by the workflow.
type AdoptionStore interface {
	CreateRequest(ctx context.Context, req *models.AdoptionRequest) (*models.AdoptionRequest, error)
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error)
	GetPendingRequest(ctx context.Context, petID, requesterID primitive.ObjectID) (*models.AdoptionRequest, error)
	GetPendingRequestsByPet(ctx context.Context, petID, ownerID primitive.ObjectID) ([]models.AdoptionRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequest, error)
	UpdateRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error
	RejectOtherPending(ctx context.Context, petID, exceptID primitive.ObjectID) error
	ListStalePending(ctx context.Context, before time.Time) ([]models.AdoptionRequest, error)
}

// UserStore resolves user ids to accounts, used for owner email lookups.
type UserStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Notifier records in-app notifications. May be nil.
type Notifier interface {
	CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error
}

// Txn runs a function inside one atomic multi-document transaction.
type Txn interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdoptionService implements the adoption workflow: filing requests,
// accepting exactly one request per pet (transferring ownership and
// rejecting the rivals), and rejecting individual requests.
type AdoptionService struct {
	pets     PetStore
	requests AdoptionStore
	users    UserStore
	notifier Notifier
	txn      Txn
	sendMail func(to, subject, body string) error
}

// NewAdoptionService creates a new AdoptionService. users and notifier
// may be nil; the workflow then skips mail and notifications.
func NewAdoptionService(pets PetStore, requests AdoptionStore, users UserStore, notifier Notifier, txn Txn) *AdoptionService {
	return &AdoptionService{
		pets:     pets,
		requests: requests,
		users:    users,
		notifier: notifier,
		txn:      txn,
		sendMail: email.SendEmail,
	}
}

// CreateRequest files an adoption request for a pet. The pet must exist
// and be listed for adoption, the requester must not be its owner, and
// the requester must not already have a pending request for it. The
// pet's current owner is captured on the request for later checks.
func (s *AdoptionService) CreateRequest(ctx context.Context, petID, requesterID primitive.ObjectID) (*models.AdoptionRequest, error) {
	pet, err := s.pets.GetPetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: pet %s", ErrNotFound, petID.Hex())
		}
		return nil, err
	}

	if !pet.WaitingForAdoption {
		return nil, fmt.Errorf("%w: pet is not listed for adoption", ErrInvalidState)
	}
	if pet.OwnerID == requesterID {
		return nil, fmt.Errorf("%w: cannot request to adopt your own pet", ErrInvalidState)
	}

	if existing, err := s.requests.GetPendingRequest(ctx, petID, requesterID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: a pending request for this pet already exists", ErrConflict)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	req := &models.AdoptionRequest{
		PetID:       petID,
		RequesterID: requesterID,
		OwnerID:     pet.OwnerID,
		Status:      models.RequestStatusPending,
	}

	created, err := s.requests.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, pet.OwnerID, "request_received", "New adoption request",
		fmt.Sprintf("Someone wants to adopt %s.", pet.Name), &created.ID)
	s.mailOwner(ctx, pet)

	return created, nil
}

// HasPendingRequest reports whether the requester already has a pending
// request for the pet. Used by clients to suppress duplicate submission.
func (s *AdoptionService) HasPendingRequest(ctx context.Context, petID, requesterID primitive.ObjectID) (bool, error) {
	_, err := s.requests.GetPendingRequest(ctx, petID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListPendingRequestsForPet returns all pending requests for a pet.
// A non-zero ownerID additionally filters by the owner captured on the
// requests; this shapes the query, it is not a security boundary.
func (s *AdoptionService) ListPendingRequestsForPet(ctx context.Context, petID, ownerID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	return s.requests.GetPendingRequestsByPet(ctx, petID, ownerID)
}

// ListRequestsByRequester returns every request a user has filed.
func (s *AdoptionService) ListRequestsByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	return s.requests.GetRequestsByRequester(ctx, requesterID)
}

// AcceptRequest accepts one adoption request: the target transitions to
// accepted, every other pending request for the pet is rejected, and
// ownership moves to the requester. All authorization checks run before
// any write; the writes themselves share one transaction, so a failure
// never leaves partial state.
func (s *AdoptionService) AcceptRequest(ctx context.Context, requestID, petID, newOwnerID, actingUserID primitive.ObjectID) error {
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: adoption request %s", ErrNotFound, requestID.Hex())
		}
		return err
	}

	if req.PetID != petID {
		return fmt.Errorf("%w: request refers to a different pet", ErrMismatch)
	}
	if req.RequesterID != newOwnerID {
		return fmt.Errorf("%w: request was filed by a different user", ErrMismatch)
	}
	if req.Status != models.RequestStatusPending {
		return fmt.Errorf("%w: request is already %s", ErrInvalidState, req.Status)
	}

	pet, err := s.pets.GetPetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: pet %s", ErrNotFound, petID.Hex())
		}
		return err
	}

	if pet.OwnerID != actingUserID {
		return fmt.Errorf("%w: only the current owner can accept a request", ErrUnauthorized)
	}
	// The owner stored on the request must still match. If the pet
	// changed hands after the request was filed, the request is stale.
	if req.OwnerID != actingUserID {
		return fmt.Errorf("%w: request predates an ownership change", ErrUnauthorized)
	}

	var rejected []models.AdoptionRequest
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.requests.GetPendingRequestsByPet(ctx, petID, primitive.NilObjectID)
		if err != nil {
			return err
		}
		for _, sibling := range pending {
			if sibling.ID != requestID {
				rejected = append(rejected, sibling)
			}
		}

		if err := s.requests.RejectOtherPending(ctx, petID, requestID); err != nil {
			return err
		}
		if err := s.requests.UpdateRequestStatus(ctx, requestID, models.RequestStatusAccepted); err != nil {
			return err
		}
		return s.pets.TransferOwnership(ctx, petID, actingUserID, newOwnerID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return fmt.Errorf("%w: pet changed hands during acceptance", ErrConflict)
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"requestID":  requestID.Hex(),
		"petID":      petID.Hex(),
		"newOwnerID": newOwnerID.Hex(),
	}).Info("Adoption request accepted, ownership transferred")

	// Notifications fan out concurrently; failures are logged, never fatal.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.notify(gctx, newOwnerID, "request_accepted", "Adoption request accepted",
			fmt.Sprintf("Congratulations! %s is now yours.", pet.Name), &requestID)
		return nil
	})
	for _, sibling := range rejected {
		sibling := sibling
		g.Go(func() error {
			s.notify(gctx, sibling.RequesterID, "request_rejected", "Adoption request declined",
				fmt.Sprintf("%s was adopted by someone else.", pet.Name), &sibling.ID)
			return nil
		})
	}
	_ = g.Wait()

	return nil
}

// RejectRequest declines a single pending adoption request. Terminal
// requests stay terminal: rejecting an already handled request fails.
func (s *AdoptionService) RejectRequest(ctx context.Context, requestID primitive.ObjectID) error {
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: adoption request %s", ErrNotFound, requestID.Hex())
		}
		return err
	}
	if req.Status != models.RequestStatusPending {
		return fmt.Errorf("%w: request is already %s", ErrInvalidState, req.Status)
	}

	if err := s.requests.UpdateRequestStatus(ctx, requestID, models.RequestStatusRejected); err != nil {
		return err
	}

	s.notify(ctx, req.RequesterID, "request_rejected", "Adoption request declined",
		"The owner declined your adoption request.", &requestID)
	return nil
}

// TransferOwnership moves a pet to a new owner outside the request
// flow (administrative transfer). It carries none of AcceptRequest's
// request checks, only the compare-and-swap on the current owner.
func (s *AdoptionService) TransferOwnership(ctx context.Context, petID, newOwnerID primitive.ObjectID) error {
	pet, err := s.pets.GetPetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: pet %s", ErrNotFound, petID.Hex())
		}
		return err
	}

	if err := s.pets.TransferOwnership(ctx, petID, pet.OwnerID, newOwnerID); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return fmt.Errorf("%w: pet changed hands during transfer", ErrConflict)
		}
		return err
	}
	return nil
}

// ExpireStaleRequests rejects pending requests older than maxAge and
// notifies their requesters. Called from the cron scheduler.
func (s *AdoptionService) ExpireStaleRequests(ctx context.Context, maxAge time.Duration) error {
	stale, err := s.requests.ListStalePending(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return fmt.Errorf("failed to list stale requests: %v", err)
	}

	for _, req := range stale {
		if err := s.requests.UpdateRequestStatus(ctx, req.ID, models.RequestStatusRejected); err != nil {
			logrus.WithError(err).WithField("requestID", req.ID.Hex()).Warn("Failed to expire stale request")
			continue
		}
		s.notify(ctx, req.RequesterID, "request_expired", "Adoption request expired",
			"Your adoption request went unanswered and has expired.", &req.ID)
	}

	if len(stale) > 0 {
		logrus.Infof("Expired %d stale adoption requests", len(stale))
	}
	return nil
}

func (s *AdoptionService) notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CreateNotification(ctx, userID, notifType, title, message, targetID); err != nil {
		logrus.WithError(err).Warnf("Failed to create %s notification for user %s", notifType, userID.Hex())
	}
}

func (s *AdoptionService) mailOwner(ctx context.Context, pet *models.Pet) {
	if s.users == nil || s.sendMail == nil {
		return
	}
	owner, err := s.users.GetUserByID(ctx, pet.OwnerID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load owner for request mail")
		return
	}
	body := fmt.Sprintf("Hi %s,\n\nSomeone asked to adopt %s. Open PawPal to review the request.\n", owner.Username, pet.Name)
	if err := s.sendMail(owner.Email, "New adoption request for "+pet.Name, body); err != nil {
		logrus.WithError(err).Warn("Failed to send adoption request mail")
	}
}
