package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Danelya04/PawPal/internal/config"
	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/services"
	"github.com/Danelya04/PawPal/pkg/logger"
	"github.com/Danelya04/PawPal/pkg/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PetHandler manages HTTP endpoints for pet profiles.
type PetHandler struct {
	Service *services.PetService
	Config  *config.Config
}

// NewPetHandler initializes a new PetHandler.
func NewPetHandler(service *services.PetService, cfg *config.Config) *PetHandler {
	return &PetHandler{Service: service, Config: cfg}
}

// CreatePetHandler registers a new pet owned by the authenticated user.
func (h *PetHandler) CreatePetHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var pet models.Pet
	if err := json.NewDecoder(r.Body).Decode(&pet); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ownerID, _ := primitive.ObjectIDFromHex(claims.UserID)
	created, err := h.Service.CreatePet(r.Context(), &pet, ownerID)
	if err != nil {
		logger.Log.Warnf("Failed to create pet: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Log.Infof("User %s created pet %s", claims.UserID, created.ID.Hex())
	writeJSON(w, http.StatusCreated, created)
}

// GetPetHandler fetches a single pet profile.
func (h *PetHandler) GetPetHandler(w http.ResponseWriter, r *http.Request) {
	pet, err := h.Service.GetPet(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, "Failed to get pet")
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

// GetPetsHandler lists pets of a user. Defaults to the authenticated
// user; an ?owner= query selects another user's pets.
func (h *PetHandler) GetPetsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ownerHex := r.URL.Query().Get("owner")
	if ownerHex == "" {
		ownerHex = claims.UserID
	}
	ownerID, err := primitive.ObjectIDFromHex(ownerHex)
	if err != nil {
		http.Error(w, "Invalid owner ID", http.StatusBadRequest)
		return
	}

	pets, err := h.Service.GetPetsByOwner(r.Context(), ownerID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch pets for owner %s: %v", ownerHex, err)
		http.Error(w, "Failed to fetch pets", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pets)
}

// GetAdoptablePetsHandler lists every pet waiting for adoption.
func (h *PetHandler) GetAdoptablePetsHandler(w http.ResponseWriter, r *http.Request) {
	pets, err := h.Service.GetAdoptablePets(r.Context())
	if err != nil {
		logger.Log.Errorf("Failed to fetch adoption listings: %v", err)
		http.Error(w, "Failed to fetch adoption listings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pets)
}

// UpdatePetHandler edits a pet's attributes. Owner only.
func (h *PetHandler) UpdatePetHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	actingUserID, _ := primitive.ObjectIDFromHex(claims.UserID)
	pet, err := h.Service.UpdatePet(r.Context(), mux.Vars(r)["id"], actingUserID, updates)
	if err != nil {
		writeServiceError(w, err, "Failed to update pet")
		return
	}

	writeJSON(w, http.StatusOK, pet)
}

// DeletePetHandler removes a pet. Owner only.
func (h *PetHandler) DeletePetHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	actingUserID, _ := primitive.ObjectIDFromHex(claims.UserID)
	if err := h.Service.DeletePet(r.Context(), mux.Vars(r)["id"], actingUserID); err != nil {
		writeServiceError(w, err, "Failed to delete pet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Pet deleted"})
}

// UploadPetImageHandler accepts a multipart image upload, stores the
// file under the upload directory with a random name, and attaches the
// resulting URL to the pet.
func (h *PetHandler) UploadPetImageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too large or invalid form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.Config.UploadDir, 0o755); err != nil {
		logger.Log.Errorf("Failed to create upload directory: %v", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	filename := uuid.New().String() + filepath.Ext(header.Filename)
	dstPath := filepath.Join(h.Config.UploadDir, filename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Log.Errorf("Failed to create upload file: %v", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logger.Log.Errorf("Failed to write upload file: %v", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	actingUserID, _ := primitive.ObjectIDFromHex(claims.UserID)
	imageURL := "/uploads/" + filename

	pet, err := h.Service.AttachImage(r.Context(), mux.Vars(r)["id"], actingUserID, imageURL)
	if err != nil {
		writeServiceError(w, err, "Failed to attach image")
		return
	}

	logger.Log.Infof("User %s uploaded image for pet %s", claims.UserID, pet.ID.Hex())
	writeJSON(w, http.StatusOK, pet)
}
