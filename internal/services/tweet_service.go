package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/database"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/metrics"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/textutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TweetServiceProvider defines the interface for tweet services.
type TweetServiceProvider interface {
	CreateTweet(ctx context.Context, req models.TweetSaveRequest) (models.TweetResponse, error)
	GetTweetByUUID(ctx context.Context, id string) (models.TweetResponse, error)
	DeleteTweet(ctx context.Context, id string) error
	Like(ctx context.Context, id, username string) error
	UnLike(ctx context.Context, id, username string) error
	Retweet(ctx context.Context, id, username string) error
	UnRetweet(ctx context.Context, id, username string) error
	SearchTweets(ctx context.Context, params models.TweetSearchParams) ([]models.TweetResponse, error)
}

// TweetService provides business logic for tweets and engagement.
type TweetService struct {
	db *sql.DB
}

// NewTweetService creates a new TweetService.
func NewTweetService(db *sql.DB) *TweetService {
	return &TweetService{db: db}
}

// loadTweet retrieves a tweet row with its hashtag and mention sets.
func loadTweet(ctx context.Context, q querier, id string) (models.Tweet, error) {
	row := q.QueryRowContext(ctx,
		"SELECT uuid, body, time, owner_username FROM tweets WHERE uuid = ?", id)
	t, err := scanTweetRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Tweet{}, fmt.Errorf("tweet %s: %w", id, models.ErrTweetNotFound)
		}
		return models.Tweet{}, err
	}
	if err := loadTweetSets(ctx, q, &t); err != nil {
		return models.Tweet{}, err
	}
	return t, nil
}

// requireTweet fails with the tweet-not-found kind when id is unknown.
func requireTweet(ctx context.Context, q querier, id string) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM tweets WHERE uuid = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("tweet %s: %w", id, models.ErrTweetNotFound)
	}
	return err
}

// CreateTweet publishes a tweet: the owner must exist, the timestamp is
// assigned server-side, and the tweet enters the head of every follower's
// timeline within the same transaction.
func (s *TweetService) CreateTweet(ctx context.Context, req models.TweetSaveRequest) (models.TweetResponse, error) {
	tweet := models.Tweet{
		UUID:          req.UUID,
		Body:          req.Body,
		Time:          time.Now().Truncate(time.Second),
		OwnerUsername: req.OwnerUsername,
		Hashtags:      req.Hashtags,
		Mentions:      req.Mentions,
	}
	if tweet.UUID == "" {
		tweet.UUID = uuid.New().String()
	}
	if tweet.Hashtags == nil {
		tweet.Hashtags = textutil.Hashtags(tweet.Body)
	}
	if tweet.Mentions == nil {
		tweet.Mentions = textutil.Mentions(tweet.Body)
	}

	var resp models.TweetResponse
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireUser(ctx, tx, tweet.OwnerUsername); err != nil {
			return err
		}

		// A mention resolving to a known user is stored as the bare
		// username; anything else is kept as the literal token.
		resolved := make([]string, 0, len(tweet.Mentions))
		for _, m := range tweet.Mentions {
			candidate := strings.TrimPrefix(m, "@")
			known, err := userExists(ctx, tx, candidate)
			if err != nil {
				return err
			}
			if known {
				resolved = append(resolved, candidate)
			} else {
				resolved = append(resolved, m)
			}
		}
		tweet.Mentions = resolved

		_, err := tx.ExecContext(ctx,
			"INSERT INTO tweets(uuid, body, time, owner_username) VALUES(?, ?, ?, ?)",
			tweet.UUID, tweet.Body, tweet.Time.Format(models.TimeLayout), tweet.OwnerUsername)
		if err != nil {
			return err
		}
		for _, h := range tweet.Hashtags {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO tweet_hashtags(tweet_uuid, hashtag) VALUES(?, ?)", tweet.UUID, h); err != nil {
				return err
			}
		}
		for _, m := range tweet.Mentions {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO tweet_mentions(tweet_uuid, mention) VALUES(?, ?)", tweet.UUID, m); err != nil {
				return err
			}
		}

		// Fan out to the head of every follower's timeline.
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO timeline(username, tweet_uuid)
			SELECT follower_username, ? FROM follows WHERE followed_username = ?`,
			tweet.UUID, tweet.OwnerUsername); err != nil {
			return err
		}

		resp, err = projectTweet(ctx, tx, tweet)
		return err
	})
	if err != nil {
		return models.TweetResponse{}, err
	}
	metrics.TweetsCreated.Inc()
	log.Info().Str("uuid", tweet.UUID).Str("owner", tweet.OwnerUsername).Msg("tweet published")
	return resp, nil
}

// GetTweetByUUID returns the wire projection of one tweet, hydrated from
// one transaction.
func (s *TweetService) GetTweetByUUID(ctx context.Context, id string) (models.TweetResponse, error) {
	var resp models.TweetResponse
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := loadTweet(ctx, tx, id)
		if err != nil {
			return err
		}
		resp, err = projectTweet(ctx, tx, t)
		return err
	})
	if err != nil {
		return models.TweetResponse{}, err
	}
	return resp, nil
}

// DeleteTweet removes a tweet; the cascade scrubs its hashtag, mention,
// like, retweet and timeline rows everywhere.
func (s *TweetService) DeleteTweet(ctx context.Context, id string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireTweet(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM tweets WHERE uuid = ?", id)
		if err == nil {
			log.Info().Str("uuid", id).Msg("tweet deleted")
		}
		return err
	})
}

// Like records username liking the tweet. Idempotent.
func (s *TweetService) Like(ctx context.Context, id, username string) error {
	return s.engage(ctx, "like", id, username, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO likes(username, tweet_uuid) VALUES(?, ?)", username, id)
		return err
	})
}

// UnLike removes the like edge. Idempotent.
func (s *TweetService) UnLike(ctx context.Context, id, username string) error {
	return s.engage(ctx, "unlike", id, username, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM likes WHERE username = ? AND tweet_uuid = ?", username, id)
		return err
	})
}

// Retweet records the retweet edge and injects the tweet at the head of the
// timelines of the retweeter's followers. Idempotent.
func (s *TweetService) Retweet(ctx context.Context, id, username string) error {
	return s.engage(ctx, "retweet", id, username, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO retweets(username, tweet_uuid) VALUES(?, ?)", username, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return nil // already retweeted
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO timeline(username, tweet_uuid)
			SELECT follower_username, ? FROM follows WHERE followed_username = ?`, id, username)
		return err
	})
}

// UnRetweet removes the retweet edge and drops the tweet from the timelines
// of the retweeter's followers where no other visibility path remains.
// Idempotent.
func (s *TweetService) UnRetweet(ctx context.Context, id, username string) error {
	return s.engage(ctx, "unretweet", id, username, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM retweets WHERE username = ? AND tweet_uuid = ?", username, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM timeline WHERE tweet_uuid = ?1
			  AND username IN (SELECT follower_username FROM follows WHERE followed_username = ?2)
			  AND username <> (SELECT owner_username FROM tweets WHERE uuid = ?1)
			  AND NOT EXISTS (
				SELECT 1 FROM follows f
				WHERE f.follower_username = timeline.username
				  AND f.followed_username = (SELECT owner_username FROM tweets WHERE uuid = ?1))
			  AND NOT EXISTS (
				SELECT 1 FROM retweets r
				JOIN follows f2 ON f2.followed_username = r.username
				WHERE r.tweet_uuid = ?1 AND f2.follower_username = timeline.username)`,
			id, username)
		return err
	})
}

// engage wraps an engagement transition: both entities must exist and the
// transition runs in one transaction.
func (s *TweetService) engage(ctx context.Context, op, id, username string, fn func(tx *sql.Tx) error) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireTweet(ctx, tx, id); err != nil {
			return err
		}
		if err := requireUser(ctx, tx, username); err != nil {
			return err
		}
		return fn(tx)
	})
	if err != nil {
		return err
	}
	metrics.EngagementOps.WithLabelValues(op).Inc()
	return nil
}

// SearchTweets returns tweets matching all provided predicates: owner
// equality, hashtag membership, and an inclusive date range.
func (s *TweetService) SearchTweets(ctx context.Context, params models.TweetSearchParams) ([]models.TweetResponse, error) {
	query := "SELECT uuid, body, time, owner_username FROM tweets WHERE 1=1"
	args := []any{}
	if params.OwnerUsername != "" {
		query += " AND owner_username = ?"
		args = append(args, params.OwnerUsername)
	}
	if params.Hashtag != "" {
		query += " AND uuid IN (SELECT tweet_uuid FROM tweet_hashtags WHERE hashtag = ?)"
		args = append(args, params.Hashtag)
	}
	if params.StartDate != nil {
		query += " AND time >= ?"
		args = append(args, params.StartDate.Format(models.TimeLayout))
	}
	if params.FinishDate != nil {
		query += " AND time <= ?"
		args = append(args, params.FinishDate.Format(models.TimeLayout))
	}
	query += " ORDER BY rowid DESC"

	var out []models.TweetResponse
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var tweets []models.Tweet
		for rows.Next() {
			t, err := scanTweetRow(rows)
			if err != nil {
				return err
			}
			tweets = append(tweets, t)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		out = make([]models.TweetResponse, 0, len(tweets))
		for i := range tweets {
			if err := loadTweetSets(ctx, tx, &tweets[i]); err != nil {
				return err
			}
			resp, err := projectTweet(ctx, tx, tweets[i])
			if err != nil {
				return err
			}
			out = append(out, resp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
