package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/repository"
	"github.com/Danelya04/PawPal/internal/services"
	jwtutil "github.com/Danelya04/PawPal/pkg/jwt"
	"github.com/Danelya04/PawPal/pkg/logger"
	"github.com/Danelya04/PawPal/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "handler-test-secret"

func TestMain(m *testing.M) {
	logger.InitLogger()
	m.Run()
}

// -------------------------
// In-memory stores
// -------------------------

type memPets struct {
	byID map[primitive.ObjectID]*models.Pet
}

func (m *memPets) GetPetByID(ctx context.Context, id primitive.ObjectID) (*models.Pet, error) {
	pet, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *pet
	return &copied, nil
}

func (m *memPets) TransferOwnership(ctx context.Context, petID, expectedOwnerID, newOwnerID primitive.ObjectID) error {
	pet, ok := m.byID[petID]
	if !ok || pet.OwnerID != expectedOwnerID {
		return repository.ErrNotMatched
	}
	pet.OwnerID = newOwnerID
	pet.WaitingForAdoption = false
	return nil
}

type memRequests struct {
	byID map[primitive.ObjectID]*models.AdoptionRequest
}

func (m *memRequests) CreateRequest(ctx context.Context, req *models.AdoptionRequest) (*models.AdoptionRequest, error) {
	req.ID = primitive.NewObjectID()
	req.Status = models.RequestStatusPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	m.byID[req.ID] = &stored
	return req, nil
}

func (m *memRequests) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.AdoptionRequest, error) {
	req, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *memRequests) GetPendingRequest(ctx context.Context, petID, requesterID primitive.ObjectID) (*models.AdoptionRequest, error) {
	for _, req := range m.byID {
		if req.PetID == petID && req.RequesterID == requesterID && req.Status == models.RequestStatusPending {
			copied := *req
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRequests) GetPendingRequestsByPet(ctx context.Context, petID, ownerID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	out := make([]models.AdoptionRequest, 0)
	for _, req := range m.byID {
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

func (m *memRequests) GetRequestsByRequester(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequest, error) {
	out := make([]models.AdoptionRequest, 0)
	for _, req := range m.byID {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memRequests) UpdateRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	req, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (m *memRequests) RejectOtherPending(ctx context.Context, petID, exceptID primitive.ObjectID) error {
	for _, req := range m.byID {
		if req.PetID == petID && req.Status == models.RequestStatusPending && req.ID != exceptID {
			req.Status = models.RequestStatusRejected
		}
	}
	return nil
}

func (m *memRequests) ListStalePending(ctx context.Context, before time.Time) ([]models.AdoptionRequest, error) {
	return nil, nil
}

type passTxn struct{}

func (passTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// -------------------------
// Harness
// -------------------------

type harness struct {
	pets     *memPets
	requests *memRequests
	router   *mux.Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pets := &memPets{byID: map[primitive.ObjectID]*models.Pet{}}
	requests := &memRequests{byID: map[primitive.ObjectID]*models.AdoptionRequest{}}
	svc := services.NewAdoptionService(pets, requests, nil, nil, passTxn{})
	handler := NewAdoptionHandler(svc)

	router := mux.NewRouter()
	sub := router.PathPrefix("/adoption").Subrouter()
	sub.Use(middleware.AuthMiddleware(testSecret))
	sub.HandleFunc("/pets/{petId}/requests", handler.CreateRequestHandler).Methods("POST")
	sub.HandleFunc("/pets/{petId}/requests", handler.GetPendingRequestsHandler).Methods("GET")
	sub.HandleFunc("/pets/{petId}/requests/check", handler.CheckPendingRequestHandler).Methods("GET")
	sub.HandleFunc("/requests", handler.GetMyRequestsHandler).Methods("GET")
	sub.HandleFunc("/requests/{id}/accept", handler.AcceptRequestHandler).Methods("POST")
	sub.HandleFunc("/requests/{id}/reject", handler.RejectRequestHandler).Methods("POST")

	return &harness{pets: pets, requests: requests, router: router}
}

func (h *harness) addListedPet(ownerID primitive.ObjectID) *models.Pet {
	pet := &models.Pet{
		ID:                 primitive.NewObjectID(),
		Name:               "Barsik",
		Type:               "Cat",
		OwnerID:            ownerID,
		WaitingForAdoption: true,
	}
	h.pets.byID[pet.ID] = pet
	return pet
}

func (h *harness) do(t *testing.T, method, target string, asUser primitive.ObjectID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if !asUser.IsZero() {
		token, err := jwtutil.GenerateToken(asUser.Hex(), "user@example.com", "user", testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// -------------------------
// Tests
// -------------------------

func TestCreateRequestHandler_Created(t *testing.T) {
	h := newHarness(t)
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := h.addListedPet(owner)

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", requester, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.AdoptionRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, models.RequestStatusPending, created.Status)
	assert.Equal(t, owner, created.OwnerID)

	rec = h.do(t, "GET", "/adoption/pets/"+pet.ID.Hex()+"/requests/check", requester, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var check map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&check))
	assert.True(t, check["has_pending_request"])
}

func TestCreateRequestHandler_PetNotFound(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, "POST", "/adoption/pets/"+primitive.NewObjectID().Hex()+"/requests", primitive.NewObjectID(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequestHandler_Duplicate(t *testing.T) {
	h := newHarness(t)
	requester := primitive.NewObjectID()
	pet := h.addListedPet(primitive.NewObjectID())

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", requester, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", requester, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateRequestHandler_MissingAuth(t *testing.T) {
	h := newHarness(t)
	pet := h.addListedPet(primitive.NewObjectID())

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", primitive.NilObjectID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAcceptRequestHandler_TransfersAndRejectsReplay(t *testing.T) {
	h := newHarness(t)
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := h.addListedPet(owner)

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", requester, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AdoptionRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	acceptBody := map[string]string{
		"pet_id":       pet.ID.Hex(),
		"new_owner_id": requester.Hex(),
	}
	rec = h.do(t, "POST", "/adoption/requests/"+created.ID.Hex()+"/accept", owner, acceptBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, requester, h.pets.byID[pet.ID].OwnerID)
	assert.False(t, h.pets.byID[pet.ID].WaitingForAdoption)

	// Accepting the same request again must fail, it is already terminal.
	rec = h.do(t, "POST", "/adoption/requests/"+created.ID.Hex()+"/accept", owner, acceptBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptRequestHandler_NotOwner(t *testing.T) {
	h := newHarness(t)
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	pet := h.addListedPet(owner)

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", requester, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AdoptionRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = h.do(t, "POST", "/adoption/requests/"+created.ID.Hex()+"/accept", stranger, map[string]string{
		"pet_id":       pet.ID.Hex(),
		"new_owner_id": requester.Hex(),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, owner, h.pets.byID[pet.ID].OwnerID)
}

func TestAcceptRequestHandler_WrongPet(t *testing.T) {
	h := newHarness(t)
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := h.addListedPet(owner)
	otherPet := h.addListedPet(owner)

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", requester, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AdoptionRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = h.do(t, "POST", "/adoption/requests/"+created.ID.Hex()+"/accept", owner, map[string]string{
		"pet_id":       otherPet.ID.Hex(),
		"new_owner_id": requester.Hex(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRejectRequestHandler(t *testing.T) {
	h := newHarness(t)
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	pet := h.addListedPet(owner)

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", requester, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AdoptionRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = h.do(t, "POST", "/adoption/requests/"+created.ID.Hex()+"/reject", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RequestStatusRejected, h.requests.byID[created.ID].Status)

	rec = h.do(t, "POST", "/adoption/requests/"+created.ID.Hex()+"/reject", owner, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetMyRequestsHandler(t *testing.T) {
	h := newHarness(t)
	requester := primitive.NewObjectID()
	pet1 := h.addListedPet(primitive.NewObjectID())
	pet2 := h.addListedPet(primitive.NewObjectID())

	for _, pet := range []*models.Pet{pet1, pet2} {
		rec := h.do(t, "POST", fmt.Sprintf("/adoption/pets/%s/requests", pet.ID.Hex()), requester, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := h.do(t, "GET", "/adoption/requests", requester, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.AdoptionRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&mine))
	assert.Len(t, mine, 2)
}

func TestGetPendingRequestsHandler_OwnerScoped(t *testing.T) {
	h := newHarness(t)
	owner := primitive.NewObjectID()
	pet := h.addListedPet(owner)

	rec := h.do(t, "POST", "/adoption/pets/"+pet.ID.Hex()+"/requests", primitive.NewObjectID(), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, "GET", "/adoption/pets/"+pet.ID.Hex()+"/requests", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []models.AdoptionRequest
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pending))
	assert.Len(t, pending, 1)

	// A different user sees nothing, the owner filter scopes the list.
	rec = h.do(t, "GET", "/adoption/pets/"+pet.ID.Hex()+"/requests", primitive.NewObjectID(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pending))
	assert.Empty(t, pending)
}
