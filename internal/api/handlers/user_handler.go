package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/auth"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user accounts and the follow graph.
type UserHandler struct {
	service services.UserServiceProvider
	issuer  *auth.TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, issuer *auth.TokenIssuer) *UserHandler {
	return &UserHandler{service: service, issuer: issuer}
}

// Create handles new user registration.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.UserSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.CreateUser(r.Context(), payload); err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to create user")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.service.DeleteUser(r.Context(), username); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed to delete user")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUsers handles retrieving a batch of users by username, in input order.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	var payload models.UserListRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	users, err := h.service.GetUsers(r.Context(), payload.Usernames)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to retrieve users")
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.UserPage{Users: users})
}

// Update handles a partial update of a user's profile.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var payload models.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateUser(r.Context(), username, payload); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed to update user")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Search handles user search with equality predicates.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := models.UserSearchParams{
		Username: r.URL.Query().Get("username"),
		Name:     r.URL.Query().Get("name"),
	}
	users, err := h.service.SearchUsers(r.Context(), params)
	if err != nil {
		log.Error().Err(err).Msg("User search failed")
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.UserPage{Users: users})
}

// Follow handles inserting a follow edge.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.followEdge(w, r, h.service.Follow)
}

// UnFollow handles removing a follow edge.
func (h *UserHandler) UnFollow(w http.ResponseWriter, r *http.Request) {
	h.followEdge(w, r, h.service.UnFollow)
}

func (h *UserHandler) followEdge(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, followed, follower string) error) {
	var payload models.FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), payload.FollowedUsername, payload.FollowerUsername); err != nil {
		log.Warn().Err(err).
			Str("followed", payload.FollowedUsername).
			Str("follower", payload.FollowerUsername).
			Msg("Follow edge operation failed")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Authenticate verifies credentials and returns the user payload. On
// success a signed token is set as a cookie; a wrong password surfaces as
// not-found, matching the observed contract.
func (h *UserHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	password := r.URL.Query().Get("password")

	user, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed authentication attempt")
		respondError(w, err)
		return
	}

	token, err := h.issuer.Generate(user.Username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to generate token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, http.StatusOK, user)
}
