package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TweetHandler handles HTTP requests for tweets and engagement.
type TweetHandler struct {
	service services.TweetServiceProvider
}

// NewTweetHandler creates a new TweetHandler.
func NewTweetHandler(service services.TweetServiceProvider) *TweetHandler {
	return &TweetHandler{service: service}
}

// Create handles publishing a tweet.
func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.TweetSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tweet, err := h.service.CreateTweet(r.Context(), payload)
	if err != nil {
		log.Warn().Err(err).Str("owner", payload.OwnerUsername).Msg("Failed to publish tweet")
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tweet)
}

// Get handles retrieving a tweet by its uuid.
func (h *TweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	tweet, err := h.service.GetTweetByUUID(r.Context(), id)
	if err != nil {
		log.Warn().Err(err).Str("uuid", id).Msg("Failed to get tweet")
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tweet)
}

// Delete handles removing a tweet.
func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if err := h.service.DeleteTweet(r.Context(), id); err != nil {
		log.Warn().Err(err).Str("uuid", id).Msg("Failed to delete tweet")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles tweet search by owner, hashtag and date range.
func (h *TweetHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := models.TweetSearchParams{
		OwnerUsername: query.Get("username"),
		Hashtag:       query.Get("hashtag"),
	}

	var err error
	if params.StartDate, err = parseWireDate(query.Get("startDate")); err != nil {
		respondError(w, err)
		return
	}
	if params.FinishDate, err = parseWireDate(query.Get("finishDate")); err != nil {
		respondError(w, err)
		return
	}

	tweets, err := h.service.SearchTweets(r.Context(), params)
	if err != nil {
		log.Error().Err(err).Msg("Tweet search failed")
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TweetPage{Tweets: tweets})
}

// Like handles the like transition.
func (h *TweetHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, "like", h.service.Like)
}

// UnLike handles the unlike transition.
func (h *TweetHandler) UnLike(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, "unlike", h.service.UnLike)
}

// Retweet handles the retweet transition.
func (h *TweetHandler) Retweet(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, "retweet", h.service.Retweet)
}

// UnRetweet handles the un-retweet transition.
func (h *TweetHandler) UnRetweet(w http.ResponseWriter, r *http.Request) {
	h.engage(w, r, "unretweet", h.service.UnRetweet)
}

func (h *TweetHandler) engage(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id, username string) error) {
	id := r.URL.Query().Get("uuid")
	username := r.URL.Query().Get("username")

	if err := fn(r.Context(), id, username); err != nil {
		log.Warn().Err(err).Str("op", op).Str("uuid", id).Str("username", username).
			Msg("Engagement operation failed")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseWireDate parses an optional date in the wire layout; a malformed
// value is a client error.
func parseWireDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(models.TimeLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, models.ErrBadInput)
	}
	return &t, nil
}
