package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// hydration helpers run both inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// userExists reports whether a username is taken.
func userExists(ctx context.Context, q querier, username string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM users WHERE username = ?", username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// requireUser fails with the user-not-found kind when username is unknown.
func requireUser(ctx context.Context, q querier, username string) error {
	ok, err := userExists(ctx, q, username)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s: %w", username, models.ErrUserNotFound)
	}
	return nil
}

// collectStrings runs a single-column query and returns the values. The
// result is never nil so relation sets encode as [] rather than null.
func collectStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// projectUser hydrates the wire projection of a user: every relation set
// collapses to the identifiers of its members, ordered sets newest first.
func projectUser(ctx context.Context, q querier, u models.User) (models.UserResponse, error) {
	resp := models.UserResponse{Username: u.Username, Name: u.Name}

	var err error
	if resp.FollowersUsername, err = collectStrings(ctx, q,
		"SELECT follower_username FROM follows WHERE followed_username = ? ORDER BY rowid", u.Username); err != nil {
		return resp, err
	}
	if resp.FollowingsUsername, err = collectStrings(ctx, q,
		"SELECT followed_username FROM follows WHERE follower_username = ? ORDER BY rowid", u.Username); err != nil {
		return resp, err
	}
	if resp.Tweets, err = collectStrings(ctx, q,
		"SELECT uuid FROM tweets WHERE owner_username = ? ORDER BY rowid DESC", u.Username); err != nil {
		return resp, err
	}
	if resp.ReTweets, err = collectStrings(ctx, q,
		"SELECT tweet_uuid FROM retweets WHERE username = ? ORDER BY rowid DESC", u.Username); err != nil {
		return resp, err
	}
	if resp.LikedTweets, err = collectStrings(ctx, q,
		"SELECT tweet_uuid FROM likes WHERE username = ? ORDER BY rowid DESC", u.Username); err != nil {
		return resp, err
	}
	if resp.Timeline, err = collectStrings(ctx, q,
		"SELECT tweet_uuid FROM timeline WHERE username = ? ORDER BY id DESC", u.Username); err != nil {
		return resp, err
	}
	return resp, nil
}

// projectTweet hydrates the wire projection of a tweet.
func projectTweet(ctx context.Context, q querier, t models.Tweet) (models.TweetResponse, error) {
	resp := models.TweetResponse{
		UUID:          t.UUID,
		Body:          t.Body,
		OwnerUsername: t.OwnerUsername,
		Hashtags:      t.Hashtags,
		Mentions:      t.Mentions,
	}
	if !t.Time.IsZero() {
		resp.Time = t.Time.Format(models.TimeLayout)
	}
	if resp.Hashtags == nil {
		resp.Hashtags = []string{}
	}
	if resp.Mentions == nil {
		resp.Mentions = []string{}
	}

	var err error
	if resp.LikedBy, err = collectStrings(ctx, q,
		"SELECT username FROM likes WHERE tweet_uuid = ? ORDER BY rowid", t.UUID); err != nil {
		return resp, err
	}
	if resp.RetweetedBy, err = collectStrings(ctx, q,
		"SELECT username FROM retweets WHERE tweet_uuid = ? ORDER BY rowid", t.UUID); err != nil {
		return resp, err
	}
	return resp, nil
}

// scanTweetRow reads the scalar columns (uuid, body, time, owner_username)
// of a tweet row. Relation sets are loaded separately, after the cursor is
// done with, so a single pooled connection suffices.
func scanTweetRow(scanner interface{ Scan(...any) error }) (models.Tweet, error) {
	var t models.Tweet
	var wireTime string
	if err := scanner.Scan(&t.UUID, &t.Body, &wireTime, &t.OwnerUsername); err != nil {
		return t, err
	}
	if wireTime != "" {
		parsed, err := time.ParseInLocation(models.TimeLayout, wireTime, time.Local)
		if err != nil {
			return t, err
		}
		t.Time = parsed
	}
	return t, nil
}

// loadTweetSets fills in a tweet's hashtag and mention sets.
func loadTweetSets(ctx context.Context, q querier, t *models.Tweet) error {
	var err error
	if t.Hashtags, err = collectStrings(ctx, q,
		"SELECT hashtag FROM tweet_hashtags WHERE tweet_uuid = ? ORDER BY rowid", t.UUID); err != nil {
		return err
	}
	t.Mentions, err = collectStrings(ctx, q,
		"SELECT mention FROM tweet_mentions WHERE tweet_uuid = ? ORDER BY rowid", t.UUID)
	return err
}

// purgeTimeline drops from username's timeline every tweet whose visibility
// no longer holds: not self-authored, not authored by a current following,
// and not retweeted by a current following.
func purgeTimeline(ctx context.Context, q querier, username string) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM timeline WHERE username = ?1 AND tweet_uuid IN (
			SELECT t.uuid FROM tweets t
			WHERE t.owner_username <> ?1
			  AND NOT EXISTS (
				SELECT 1 FROM follows f
				WHERE f.follower_username = ?1 AND f.followed_username = t.owner_username)
			  AND NOT EXISTS (
				SELECT 1 FROM retweets r
				JOIN follows f2 ON f2.followed_username = r.username
				WHERE r.tweet_uuid = t.uuid AND f2.follower_username = ?1)
		)`, username)
	return err
}
