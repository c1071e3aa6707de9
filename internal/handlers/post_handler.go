package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Danelya04/PawPal/internal/models"
	"github.com/Danelya04/PawPal/internal/services"
	"github.com/Danelya04/PawPal/pkg/logger"
	"github.com/Danelya04/PawPal/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler manages HTTP endpoints for community posts.
type PostHandler struct {
	Service     *services.PostService
	UserService *services.UserService
}

// NewPostHandler initializes a new PostHandler.
func NewPostHandler(service *services.PostService, userService *services.UserService) *PostHandler {
	return &PostHandler{Service: service, UserService: userService}
}

// CreatePostHandler publishes a new post by the authenticated user.
func (h *PostHandler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var post models.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	publisherID, _ := primitive.ObjectIDFromHex(claims.UserID)

	publisherName := ""
	if user, err := h.UserService.GetUser(r.Context(), claims.UserID); err == nil {
		publisherName = user.DisplayName
	}

	created, err := h.Service.CreatePost(r.Context(), &post, publisherID, publisherName)
	if err != nil {
		logger.Log.Warnf("Failed to create post: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Log.Infof("User %s created post %s", claims.UserID, created.ID.Hex())
	writeJSON(w, http.StatusCreated, created)
}

// GetPostHandler fetches a single post.
func (h *PostHandler) GetPostHandler(w http.ResponseWriter, r *http.Request) {
	post, err := h.Service.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, "Failed to get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GetPostsHandler returns the community feed, or one user's posts when
// a ?publisher= query is present.
func (h *PostHandler) GetPostsHandler(w http.ResponseWriter, r *http.Request) {
	if publisherHex := r.URL.Query().Get("publisher"); publisherHex != "" {
		publisherID, err := primitive.ObjectIDFromHex(publisherHex)
		if err != nil {
			http.Error(w, "Invalid publisher ID", http.StatusBadRequest)
			return
		}
		posts, err := h.Service.GetPostsByPublisher(r.Context(), publisherID)
		if err != nil {
			http.Error(w, "Failed to fetch posts", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, posts)
		return
	}

	limit := int64(0)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.ParseInt(limitStr, 10, 64); err == nil {
			limit = parsed
		}
	}

	posts, err := h.Service.GetAllPosts(r.Context(), limit)
	if err != nil {
		logger.Log.Errorf("Failed to fetch posts: %v", err)
		http.Error(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// UpdatePostHandler edits a post. Publisher only.
func (h *PostHandler) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
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
	post, err := h.Service.UpdatePost(r.Context(), mux.Vars(r)["id"], actingUserID, updates)
	if err != nil {
		writeServiceError(w, err, "Failed to update post")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// DeletePostHandler removes a post. Publisher only.
func (h *PostHandler) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	actingUserID, _ := primitive.ObjectIDFromHex(claims.UserID)
	if err := h.Service.DeletePost(r.Context(), mux.Vars(r)["id"], actingUserID); err != nil {
		writeServiceError(w, err, "Failed to delete post")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// ToggleLikeHandler likes or unlikes a post for the authenticated user.
func (h *PostHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	post, err := h.Service.ToggleLike(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeServiceError(w, err, "Failed to toggle like")
		return
	}

	writeJSON(w, http.StatusOK, post)
}
