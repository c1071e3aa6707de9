package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Danelya04/PawPal/internal/services"
	"github.com/Danelya04/PawPal/pkg/logger"
	"github.com/Danelya04/PawPal/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdoptionHandler manages HTTP endpoints for the adoption workflow.
type AdoptionHandler struct {
	Service *services.AdoptionService
}

// NewAdoptionHandler initializes a new AdoptionHandler.
func NewAdoptionHandler(service *services.AdoptionService) *AdoptionHandler {
	return &AdoptionHandler{Service: service}
}

// CreateRequestHandler files an adoption request for a pet on behalf of
// the authenticated user.
func (h *AdoptionHandler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to create adoption request")
		return
	}

	petID, err := primitive.ObjectIDFromHex(mux.Vars(r)["petId"])
	if err != nil {
		http.Error(w, "Invalid pet ID", http.StatusBadRequest)
		return
	}
	requesterID, _ := primitive.ObjectIDFromHex(claims.UserID)

	request, err := h.Service.CreateRequest(r.Context(), petID, requesterID)
	if err != nil {
		logger.Log.Warnf("Failed to create adoption request: %v", err)
		writeServiceError(w, err, "Failed to create adoption request")
		return
	}

	logger.Log.Infof("User %s requested to adopt pet %s", claims.UserID, petID.Hex())
	writeJSON(w, http.StatusCreated, request)
}

// GetPendingRequestsHandler lists the pending requests for a pet. The
// acting user's id is used as the owner filter, so only requests
// captured against them come back.
func (h *AdoptionHandler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	petID, err := primitive.ObjectIDFromHex(mux.Vars(r)["petId"])
	if err != nil {
		http.Error(w, "Invalid pet ID", http.StatusBadRequest)
		return
	}
	ownerID, _ := primitive.ObjectIDFromHex(claims.UserID)

	requests, err := h.Service.ListPendingRequestsForPet(r.Context(), petID, ownerID)
	if err != nil {
		logger.Log.Errorf("Failed to list pending requests for pet %s: %v", petID.Hex(), err)
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

// CheckPendingRequestHandler reports whether the authenticated user
// already has a pending request for the pet.
func (h *AdoptionHandler) CheckPendingRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	petID, err := primitive.ObjectIDFromHex(mux.Vars(r)["petId"])
	if err != nil {
		http.Error(w, "Invalid pet ID", http.StatusBadRequest)
		return
	}
	requesterID, _ := primitive.ObjectIDFromHex(claims.UserID)

	hasPending, err := h.Service.HasPendingRequest(r.Context(), petID, requesterID)
	if err != nil {
		http.Error(w, "Failed to check request", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"has_pending_request": hasPending})
}

// GetMyRequestsHandler lists every request the authenticated user has
// filed, any status.
func (h *AdoptionHandler) GetMyRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requesterID, _ := primitive.ObjectIDFromHex(claims.UserID)
	requests, err := h.Service.ListRequestsByRequester(r.Context(), requesterID)
	if err != nil {
		logger.Log.Errorf("Failed to list requests for user %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

// AcceptRequestHandler accepts one adoption request, transferring
// ownership to the requester and rejecting rival requests.
func (h *AdoptionHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to accept adoption request")
		return
	}

	requestID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	var body struct {
		PetID      string `json:"pet_id"`
		NewOwnerID string `json:"new_owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	petID, err := primitive.ObjectIDFromHex(body.PetID)
	if err != nil {
		http.Error(w, "Invalid pet ID", http.StatusBadRequest)
		return
	}
	newOwnerID, err := primitive.ObjectIDFromHex(body.NewOwnerID)
	if err != nil {
		http.Error(w, "Invalid new owner ID", http.StatusBadRequest)
		return
	}
	actingUserID, _ := primitive.ObjectIDFromHex(claims.UserID)

	if err := h.Service.AcceptRequest(r.Context(), requestID, petID, newOwnerID, actingUserID); err != nil {
		logger.Log.Warnf("Failed to accept adoption request %s: %v", requestID.Hex(), err)
		writeServiceError(w, err, "Failed to accept adoption request")
		return
	}

	logger.Log.Infof("User %s accepted adoption request %s for pet %s", claims.UserID, requestID.Hex(), petID.Hex())
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Adoption request accepted, ownership transferred",
	})
}

// RejectRequestHandler declines a single pending adoption request.
func (h *AdoptionHandler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.RejectRequest(r.Context(), requestID); err != nil {
		logger.Log.Warnf("Failed to reject adoption request %s: %v", requestID.Hex(), err)
		writeServiceError(w, err, "Failed to reject adoption request")
		return
	}

	logger.Log.Infof("User %s rejected adoption request %s", claims.UserID, requestID.Hex())
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Adoption request rejected",
	})
}

// AdminTransferOwnershipHandler moves a pet to a new owner outside the
// request flow. Admin only; carries none of the acceptance checks.
func (h *AdoptionHandler) AdminTransferOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	petID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid pet ID", http.StatusBadRequest)
		return
	}

	var body struct {
		NewOwnerID string `json:"new_owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	newOwnerID, err := primitive.ObjectIDFromHex(body.NewOwnerID)
	if err != nil {
		http.Error(w, "Invalid new owner ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.TransferOwnership(r.Context(), petID, newOwnerID); err != nil {
		logger.Log.Warnf("Admin transfer of pet %s failed: %v", petID.Hex(), err)
		writeServiceError(w, err, "Failed to transfer ownership")
		return
	}

	logger.Log.Infof("Admin %s transferred pet %s to user %s", claims.UserID, petID.Hex(), newOwnerID.Hex())
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Ownership transferred",
	})
}
