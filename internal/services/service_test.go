package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/database"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a migrated in-memory store. A single pooled connection
// keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New("file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCreateUser(t *testing.T, users *UserService, username, name, password string) {
	t.Helper()
	require.NoError(t, users.CreateUser(context.Background(), models.UserSaveRequest{
		Username: username,
		Name:     name,
		Password: password,
	}))
}

func mustCreateTweet(t *testing.T, tweets *TweetService, req models.TweetSaveRequest) models.TweetResponse {
	t.Helper()
	resp, err := tweets.CreateTweet(context.Background(), req)
	require.NoError(t, err)
	return resp
}
