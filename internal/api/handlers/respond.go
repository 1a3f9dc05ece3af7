package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps a domain error kind to its HTTP status. Anything
// without a kind is a store failure.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUserExists), errors.Is(err, models.ErrUserOwnsTweets):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrUserNotFound), errors.Is(err, models.ErrTweetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrBadInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
