package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Danelya04/PawPal/internal/config"
	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/services"
	jwtutil "github.com/Danelya04/PawPal/pkg/jwt"
	"github.com/Danelya04/PawPal/pkg/logger"
	"github.com/Danelya04/PawPal/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user accounts.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var payload struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
		City        string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user := &models.User{
		Username:    payload.Username,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
		City:        payload.City,
	}

	createdUser, err := h.Service.RegisterUser(r.Context(), user, payload.Password)
	if err != nil {
		log.WithError(err).Error("Failed to register user")
		writeServiceError(w, err, err.Error())
		return
	}

	log.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, createdUser)
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": credentials.Email,
			"error": err,
		}).Warn("Authentication failed")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetUserHandler returns a user profile. The full account is returned
// only to its owner; everyone else gets the public view.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	requestedUserID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to GetUserHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetUser(r.Context(), requestedUserID)
	if err != nil {
		log.WithField("userID", requestedUserID).WithError(err).Warn("User not found")
		writeServiceError(w, err, "User not found")
		return
	}

	if requestedUserID != claims.UserID {
		writeJSON(w, http.StatusOK, models.PublicUser{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			PhotoURL:    user.PhotoURL,
			Bio:         user.Bio,
			City:        user.City,
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUserHandler updates the authenticated user's own profile.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	requestedUserID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized access attempt to UpdateUserHandler")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if requestedUserID != claims.UserID {
		log.WithFields(log.Fields{
			"requestedUserID": requestedUserID,
			"loggedInUserID":  claims.UserID,
		}).Warn("Forbidden update attempt")
		http.Error(w, "Forbidden: You can only update your own profile", http.StatusForbidden)
		return
	}

	var payload struct {
		DisplayName string `json:"display_name"`
		PhotoURL    string `json:"photo_url"`
		Bio         string `json:"bio"`
		City        string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("Failed to decode update request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateProfile(r.Context(), requestedUserID,
		payload.DisplayName, payload.PhotoURL, payload.Bio, payload.City)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": requestedUserID,
			"error":  err,
		}).Error("Failed to update user")
		writeServiceError(w, err, "Failed to update user")
		return
	}

	log.WithField("userID", updated.ID.Hex()).Info("User updated successfully")
	writeJSON(w, http.StatusOK, updated)
}

// AdminGetAllUsersHandler lists every account. Admin only.
func (h *UserHandler) AdminGetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to fetch all users")
		return
	}

	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve users", http.StatusInternalServerError)
		logger.Log.Errorf("Admin %s failed to fetch users: %v", claims.UserID, err)
		return
	}

	logger.Log.Infof("Admin %s fetched %d users", claims.UserID, len(users))
	writeJSON(w, http.StatusOK, users)
}
