package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// -------------------------
// In-memory fakes
// -------------------------

type fakePetStore struct {
	mu             sync.Mutex
	byID           map[primitive.ObjectID]*models.Pet
	beforeTransfer func()
}

func newFakePetStore() *fakePetStore {
	return &fakePetStore{byID: map[primitive.ObjectID]*models.Pet{}}
}

func (f *fakePetStore) add(pet *models.Pet) *models.Pet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pet.ID.IsZero() {
		pet.ID = primitive.NewObjectID()
	}
	f.byID[pet.ID] = pet
	return pet
}

func (f *fakePetStore) GetPetByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pet, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *pet
	return &copied, nil
}

func (f *fakePetStore) TransferOwnership(ctx context.Context, petID, expectedOwnerID, newOwnerID primitive.ObjectID) error {
	if f.beforeTransfer != nil {
		f.beforeTransfer()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pet, ok := f.byID[petID]
	if !ok || pet.OwnerID != expectedOwnerID {
		return repository.ErrNotMatched
	}
	pet.OwnerID = newOwnerID
	pet.WaitingForAdoption = false
	pet.UpdatedAt = time.Now()
	return nil
}

type fakeAdoptionStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.AdoptionRequest
}

func newFakeAdoptionStore() *fakeAdoptionStore {
	return &fakeAdoptionStore{byID: map[primitive.ObjectID]*models.AdoptionRequest{}}
}

func (f *fakeAdoptionStore) CreateRequest(ctx context.Context, req *models.AdoptionRequest) (*models.AdoptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = primitive.NewObjectID()
	req.Status = models.RequestStatusPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.UpdatedAt = req.CreatedAt
	stored := *req
	f.byID[req.ID] = &stored
	return req, nil
}

func (f *fakeAdoptionStore) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeAdoptionStore) GetPendingRequest(ctx context.Context, petID, requesterID primitive.ObjectID) (*models.AdoptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.byID {
		if req.PetID == petID && req.RequesterID == requesterID && req.Status == models.RequestStatusPending {
			copied := *req
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdoptionStore) GetPendingRequestsByPet(ctx context.Context, petID, ownerID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AdoptionRequest, 0)
	for _, req := range f.byID {
		if req.PetID != petID || req.Status != models.RequestStatusPending {
			continue
		}
		if !ownerID.IsZero() && req.OwnerID != ownerID {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeAdoptionStore) GetRequestsByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AdoptionRequest, 0)
	for _, req := range f.byID {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeAdoptionStore) UpdateRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAdoptionStore) RejectOtherPending(ctx context.Context, petID, exceptID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.byID {
		if req.PetID == petID && req.Status == models.RequestStatusPending && req.ID != exceptID {
			req.Status = models.RequestStatusRejected
			req.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (f *fakeAdoptionStore) ListStalePending(ctx context.Context, before time.Time) ([]models.AdoptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AdoptionRequest, 0)
	for _, req := range f.byID {
		if req.Status == models.RequestStatusPending && req.CreatedAt.Before(before) {
			out = append(out, *req)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	entries []models.Notification
}

func (f *fakeNotifier) CreateNotification(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		TargetID: targetID,
	})
	return nil
}

func (f *fakeNotifier) byType(notifType string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range f.entries {
		if n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

type fakeTxn struct{}

func (fakeTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	pets     *fakePetStore
	requests *fakeAdoptionStore
	notifier *fakeNotifier
	svc      *AdoptionService
}

func newFixture() *fixture {
	pets := newFakePetStore()
	requests := newFakeAdoptionStore()
	notifier := &fakeNotifier{}
	svc := NewAdoptionService(pets, requests, nil, notifier, fakeTxn{})
	return &fixture{pets: pets, requests: requests, notifier: notifier, svc: svc}
}

func (fx *fixture) listedPet(ownerID primitive.ObjectID) *models.Pet {
	return fx.pets.add(&models.Pet{
		Name:               "Barsik",
		Type:               "Cat",
		Age:                "2 years",
		OwnerID:            ownerID,
		WaitingForAdoption: true,
	})
}

// -------------------------
// CreateRequest
// -------------------------

func TestCreateRequest_CapturesOwnerAndPending(t *testing.T) {
	fx := newFixture()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	req, err := fx.svc.CreateRequest(context.Background(), pet.ID, requester)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, owner, req.OwnerID)
	assert.Equal(t, pet.ID, req.PetID)
	assert.Equal(t, requester, req.RequesterID)

	has, err := fx.svc.HasPendingRequest(context.Background(), pet.ID, requester)
	require.NoError(t, err)
	assert.True(t, has)

	received := fx.notifier.byType("request_received")
	require.Len(t, received, 1)
	assert.Equal(t, owner, received[0].UserID)
}

func TestCreateRequest_PetNotFound(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateRequest(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRequest_PetNotListed(t *testing.T) {
	fx := newFixture()
	pet := fx.pets.add(&models.Pet{Name: "Rex", Type: "Dog", OwnerID: primitive.NewObjectID()})

	_, err := fx.svc.CreateRequest(context.Background(), pet.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateRequest_OwnPet(t *testing.T) {
	fx := newFixture()
	owner := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	_, err := fx.svc.CreateRequest(context.Background(), pet.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateRequest_DuplicatePending(t *testing.T) {
	fx := newFixture()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(primitive.NewObjectID())

	_, err := fx.svc.CreateRequest(context.Background(), pet.ID, requester)
	require.NoError(t, err)

	_, err = fx.svc.CreateRequest(context.Background(), pet.ID, requester)
	assert.ErrorIs(t, err, ErrConflict)
}

// -------------------------
// AcceptRequest
// -------------------------

func TestAcceptRequest_TransfersOwnershipAndRejectsSiblings(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	ownerA := primitive.NewObjectID()
	userB := primitive.NewObjectID()
	userC := primitive.NewObjectID()
	pet := fx.listedPet(ownerA)

	r1, err := fx.svc.CreateRequest(ctx, pet.ID, userB)
	require.NoError(t, err)
	r2, err := fx.svc.CreateRequest(ctx, pet.ID, userC)
	require.NoError(t, err)

	pending, err := fx.svc.ListPendingRequestsForPet(ctx, pet.ID, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, fx.svc.AcceptRequest(ctx, r1.ID, pet.ID, userB, ownerA))

	got1, err := fx.requests.GetRequestByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, got1.Status)

	got2, err := fx.requests.GetRequestByID(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, got2.Status)

	gotPet, err := fx.pets.GetPetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, userB, gotPet.OwnerID)
	assert.False(t, gotPet.WaitingForAdoption)

	pending, err = fx.svc.ListPendingRequestsForPet(ctx, pet.ID, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	accepted := fx.notifier.byType("request_accepted")
	require.Len(t, accepted, 1)
	assert.Equal(t, userB, accepted[0].UserID)

	declined := fx.notifier.byType("request_rejected")
	require.Len(t, declined, 1)
	assert.Equal(t, userC, declined[0].UserID)
}

func TestAcceptRequest_FormerOwnerCannotAccept(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	ownerA := primitive.NewObjectID()
	userB := primitive.NewObjectID()
	userC := primitive.NewObjectID()
	pet := fx.listedPet(ownerA)

	r1, err := fx.svc.CreateRequest(ctx, pet.ID, userB)
	require.NoError(t, err)
	require.NoError(t, fx.svc.AcceptRequest(ctx, r1.ID, pet.ID, userB, ownerA))

	// B relists the pet, C files a new request.
	fx.pets.mu.Lock()
	fx.pets.byID[pet.ID].WaitingForAdoption = true
	fx.pets.mu.Unlock()

	r3, err := fx.svc.CreateRequest(ctx, pet.ID, userC)
	require.NoError(t, err)

	// A no longer owns the pet and must not be able to accept.
	err = fx.svc.AcceptRequest(ctx, r3.ID, pet.ID, userC, ownerA)
	assert.ErrorIs(t, err, ErrUnauthorized)

	gotPet, err := fx.pets.GetPetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, userB, gotPet.OwnerID)
	assert.True(t, gotPet.WaitingForAdoption)
}

func TestAcceptRequest_MismatchLeavesStateUntouched(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(owner)
	otherPet := fx.listedPet(owner)

	req, err := fx.svc.CreateRequest(ctx, pet.ID, requester)
	require.NoError(t, err)

	err = fx.svc.AcceptRequest(ctx, req.ID, otherPet.ID, requester, owner)
	assert.ErrorIs(t, err, ErrMismatch)

	err = fx.svc.AcceptRequest(ctx, req.ID, pet.ID, primitive.NewObjectID(), owner)
	assert.ErrorIs(t, err, ErrMismatch)

	got, err := fx.requests.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, got.Status)

	gotPet, err := fx.pets.GetPetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, gotPet.OwnerID)
	assert.True(t, gotPet.WaitingForAdoption)
}

func TestAcceptRequest_ReplayFails(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	req, err := fx.svc.CreateRequest(ctx, pet.ID, requester)
	require.NoError(t, err)
	require.NoError(t, fx.svc.AcceptRequest(ctx, req.ID, pet.ID, requester, owner))

	err = fx.svc.AcceptRequest(ctx, req.ID, pet.ID, requester, owner)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAcceptRequest_NotOwner(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	req, err := fx.svc.CreateRequest(ctx, pet.ID, requester)
	require.NoError(t, err)

	err = fx.svc.AcceptRequest(ctx, req.ID, pet.ID, requester, stranger)
	assert.ErrorIs(t, err, ErrUnauthorized)

	gotPet, err := fx.pets.GetPetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, gotPet.OwnerID)
	assert.True(t, gotPet.WaitingForAdoption)
}

func TestAcceptRequest_StaleDenormalizedOwner(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	currentOwner := primitive.NewObjectID()
	formerOwner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(currentOwner)

	// Request captured against the former owner, as if the pet changed
	// hands after it was filed.
	req := &models.AdoptionRequest{
		PetID:       pet.ID,
		RequesterID: requester,
		OwnerID:     formerOwner,
	}
	_, err := fx.requests.CreateRequest(ctx, req)
	require.NoError(t, err)

	err = fx.svc.AcceptRequest(ctx, req.ID, pet.ID, requester, currentOwner)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAcceptRequest_NotFound(t *testing.T) {
	fx := newFixture()

	err := fx.svc.AcceptRequest(context.Background(),
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptRequest_ConcurrentTransferConflicts(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	rival := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	req, err := fx.svc.CreateRequest(ctx, pet.ID, requester)
	require.NoError(t, err)

	// A rival transfer sneaks in after the checks but before the swap.
	fx.pets.beforeTransfer = func() {
		fx.pets.mu.Lock()
		fx.pets.byID[pet.ID].OwnerID = rival
		fx.pets.mu.Unlock()
		fx.pets.beforeTransfer = nil
	}

	err = fx.svc.AcceptRequest(ctx, req.ID, pet.ID, requester, owner)
	assert.ErrorIs(t, err, ErrConflict)
}

// -------------------------
// RejectRequest
// -------------------------

func TestRejectRequest_Pending(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(primitive.NewObjectID())

	req, err := fx.svc.CreateRequest(ctx, pet.ID, requester)
	require.NoError(t, err)

	require.NoError(t, fx.svc.RejectRequest(ctx, req.ID))

	got, err := fx.requests.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, got.Status)

	has, err := fx.svc.HasPendingRequest(ctx, pet.ID, requester)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRejectRequest_TerminalStaysTerminal(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	req, err := fx.svc.CreateRequest(ctx, pet.ID, requester)
	require.NoError(t, err)
	require.NoError(t, fx.svc.AcceptRequest(ctx, req.ID, pet.ID, requester, owner))

	err = fx.svc.RejectRequest(ctx, req.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	got, err := fx.requests.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, got.Status)
}

func TestRejectRequest_NotFound(t *testing.T) {
	fx := newFixture()

	err := fx.svc.RejectRequest(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

// -------------------------
// Listing and transfer
// -------------------------

func TestListPendingRequestsForPet_OwnerFilter(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	_, err := fx.svc.CreateRequest(ctx, pet.ID, primitive.NewObjectID())
	require.NoError(t, err)

	matched, err := fx.svc.ListPendingRequestsForPet(ctx, pet.ID, owner)
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	filtered, err := fx.svc.ListPendingRequestsForPet(ctx, pet.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestListRequestsByRequester_AnyStatus(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet1 := fx.listedPet(owner)
	pet2 := fx.listedPet(owner)

	r1, err := fx.svc.CreateRequest(ctx, pet1.ID, requester)
	require.NoError(t, err)
	_, err = fx.svc.CreateRequest(ctx, pet2.ID, requester)
	require.NoError(t, err)
	require.NoError(t, fx.svc.RejectRequest(ctx, r1.ID))

	all, err := fx.svc.ListRequestsByRequester(ctx, requester)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTransferOwnership_Administrative(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	newOwner := primitive.NewObjectID()
	pet := fx.listedPet(owner)

	require.NoError(t, fx.svc.TransferOwnership(ctx, pet.ID, newOwner))

	got, err := fx.pets.GetPetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, newOwner, got.OwnerID)
	assert.False(t, got.WaitingForAdoption)
}

func TestTransferOwnership_PetNotFound(t *testing.T) {
	fx := newFixture()

	err := fx.svc.TransferOwnership(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

// -------------------------
// Stale request expiry
// -------------------------

func TestExpireStaleRequests(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	requester := primitive.NewObjectID()
	pet := fx.listedPet(primitive.NewObjectID())

	old := &models.AdoptionRequest{
		PetID:       pet.ID,
		RequesterID: requester,
		OwnerID:     pet.OwnerID,
		CreatedAt:   time.Now().Add(-40 * 24 * time.Hour),
	}
	_, err := fx.requests.CreateRequest(ctx, old)
	require.NoError(t, err)

	fresh, err := fx.svc.CreateRequest(ctx, pet.ID, primitive.NewObjectID())
	require.NoError(t, err)

	require.NoError(t, fx.svc.ExpireStaleRequests(ctx, 30*24*time.Hour))

	gotOld, err := fx.requests.GetRequestByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, gotOld.Status)

	gotFresh, err := fx.requests.GetRequestByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, gotFresh.Status)

	expired := fx.notifier.byType("request_expired")
	require.Len(t, expired, 1)
	assert.Equal(t, requester, expired[0].UserID)
}
