package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tradepost/tradepost/internal/handler/dto"
	"github.com/tradepost/tradepost/internal/model"
	"github.com/tradepost/tradepost/internal/service"
	"github.com/tradepost/tradepost/internal/session"
)

// PostHandler handles post CRUD and the list endpoints.
type PostHandler struct {
	posts    *service.PostService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, sessions *session.Manager, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		sessions: sessions,
		logger:   logger,
	}
}

// ListMine handles GET /posts.
func (h *PostHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	views, err := h.posts.ListMine(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// ListMyOffers handles GET /offers.
func (h *PostHandler) ListMyOffers(w http.ResponseWriter, r *http.Request) {
	h.listMineByType(w, r, model.PostTypeOffer)
}

// ListMyRequests handles GET /requests.
func (h *PostHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	h.listMineByType(w, r, model.PostTypeRequest)
}

func (h *PostHandler) listMineByType(w http.ResponseWriter, r *http.Request, postType model.PostType) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	views, err := h.posts.ListMineByType(r.Context(), userID, postType)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// ListByUser handles GET /foreignposts/{userid}. World-readable given
// a known user ID, like the public profile endpoint.
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.Atoi(chi.URLParam(r, "userid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "User ID must be an integer")
		return
	}

	views, err := h.posts.ListByUser(r.Context(), targetID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// ListCommunity handles GET /community.
func (h *PostHandler) ListCommunity(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Resolve(r.Context(), r); err != nil {
		writeAuthError(w)
		return
	}

	views, err := h.posts.ListCommunity(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// ListCommunityOffers handles GET /community/offers.
func (h *PostHandler) ListCommunityOffers(w http.ResponseWriter, r *http.Request) {
	h.listCommunityByType(w, r, model.PostTypeOffer)
}

// ListCommunityRequests handles GET /community/requests.
func (h *PostHandler) ListCommunityRequests(w http.ResponseWriter, r *http.Request) {
	h.listCommunityByType(w, r, model.PostTypeRequest)
}

func (h *PostHandler) listCommunityByType(w http.ResponseWriter, r *http.Request, postType model.PostType) {
	if _, err := h.sessions.Resolve(r.Context(), r); err != nil {
		writeAuthError(w)
		return
	}

	views, err := h.posts.ListCommunityByType(r.Context(), postType)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// Create handles POST /posts/create. Categories arrive as a
// JSON-encoded string form field.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid request body")
		return
	}

	input := service.CreatePostInput{
		Description: r.PostFormValue("description"),
		Categories:  r.PostFormValue("categories"),
		PostType:    model.PostType(r.PostFormValue("post_type")),
		PinCode:     formOptional(r, "pin_code"),
	}

	view, err := h.posts.Create(r.Context(), userID, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("post_created", "post_id", view.ID, "user_id", userID)

	writeJSON(w, http.StatusOK, view)
}

// Update handles PUT /posts/update. The body is the full post as JSON;
// ownership comes from the session, never from the payload.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	var post model.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	updated, err := h.posts.Update(r.Context(), userID, post)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("post_updated", "post_id", updated.ID, "user_id", userID)

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /posts/delete/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Post ID must be an integer")
		return
	}

	if err := h.posts.Delete(r.Context(), userID, postID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("post_deleted", "post_id", postID, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.DeleteResponse{
		Success: true,
		ID:      postID,
		Message: fmt.Sprintf("Post with id %d deleted successfully.", postID),
	})
}

// handleServiceError maps service errors to HTTP responses.
func (h *PostHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCategories):
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORIES", "Categories must be a JSON array of strings")
	case errors.Is(err, service.ErrInvalidPostType):
		writeError(w, http.StatusBadRequest, "INVALID_POST_TYPE", "Post type must be offer or request")
	case errors.Is(err, service.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
