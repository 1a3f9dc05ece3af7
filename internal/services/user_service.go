package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/database"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/metrics"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
	"github.com/rs/zerolog/log"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, req models.UserSaveRequest) error
	GetUserByUsername(ctx context.Context, username string) (models.UserResponse, error)
	GetUsers(ctx context.Context, usernames []string) ([]models.UserResponse, error)
	UpdateUser(ctx context.Context, username string, req models.UserUpdateRequest) error
	DeleteUser(ctx context.Context, username string) error
	Follow(ctx context.Context, followed, follower string) error
	UnFollow(ctx context.Context, followed, follower string) error
	SearchUsers(ctx context.Context, params models.UserSearchParams) ([]models.UserResponse, error)
	Authenticate(ctx context.Context, username, password string) (models.UserResponse, error)
}

// UserService provides business logic for user accounts and the follow graph.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// loadUser retrieves a user row including the stored credential.
func loadUser(ctx context.Context, q querier, username string) (models.User, error) {
	var user models.User
	row := q.QueryRowContext(ctx,
		"SELECT username, name, password FROM users WHERE username = ?", username)
	err := row.Scan(&user.Username, &user.Name, &user.Password)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user %s: %w", username, models.ErrUserNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser registers a new user with empty relationship sets.
func (s *UserService) CreateUser(ctx context.Context, req models.UserSaveRequest) error {
	if req.Username == "" {
		return fmt.Errorf("username is required: %w", models.ErrBadInput)
	}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		taken, err := userExists(ctx, tx, req.Username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("user %s: %w", req.Username, models.ErrUserExists)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO users(username, name, password) VALUES(?, ?, ?)",
			req.Username, req.Name, req.Password)
		return err
	})
	if err != nil {
		return err
	}
	metrics.UsersCreated.Inc()
	log.Info().Str("username", req.Username).Msg("user created")
	return nil
}

// GetUserByUsername returns the wire projection of one user. The load and
// the hydration run in one transaction so the payload reflects a single
// store state.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (models.UserResponse, error) {
	var resp models.UserResponse
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		user, err := loadUser(ctx, tx, username)
		if err != nil {
			return err
		}
		resp, err = projectUser(ctx, tx, user)
		return err
	})
	if err != nil {
		return models.UserResponse{}, err
	}
	return resp, nil
}

// GetUsers returns the named users in input order, all hydrated from one
// transaction. The whole call fails when any username is unknown.
func (s *UserService) GetUsers(ctx context.Context, usernames []string) ([]models.UserResponse, error) {
	out := make([]models.UserResponse, 0, len(usernames))
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, username := range usernames {
			user, err := loadUser(ctx, tx, username)
			if err != nil {
				return err
			}
			resp, err := projectUser(ctx, tx, user)
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

// UpdateUser applies the fields present in req. Username is immutable.
func (s *UserService) UpdateUser(ctx context.Context, username string, req models.UserUpdateRequest) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireUser(ctx, tx, username); err != nil {
			return err
		}
		sets := []string{}
		args := []any{}
		if req.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *req.Name)
		}
		if req.Password != nil {
			sets = append(sets, "password = ?")
			args = append(args, *req.Password)
		}
		if len(sets) == 0 {
			return nil
		}
		args = append(args, username)
		_, err := tx.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE username = ?", args...)
		return err
	})
}

// DeleteUser removes a user and scrubs the user from every relation set.
// Deletion is rejected while the user still owns tweets.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireUser(ctx, tx, username); err != nil {
			return err
		}
		var owned int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM tweets WHERE owner_username = ?", username).Scan(&owned); err != nil {
			return err
		}
		if owned > 0 {
			return fmt.Errorf("user %s owns %d tweets: %w", username, owned, models.ErrUserOwnsTweets)
		}

		// Ex-followers may have timeline entries that were visible only
		// through this user; capture them before the cascade drops the edges.
		exFollowers, err := collectStrings(ctx, tx,
			"SELECT follower_username FROM follows WHERE followed_username = ?", username)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE username = ?", username); err != nil {
			return err
		}
		for _, follower := range exFollowers {
			if err := purgeTimeline(ctx, tx, follower); err != nil {
				return err
			}
		}
		log.Info().Str("username", username).Msg("user deleted")
		return nil
	})
}

// Follow inserts the directed edge follower -> followed and merges the
// followed user's authored and retweeted tweets into the follower's
// timeline, newest at the head. A no-op when the edge already exists.
func (s *UserService) Follow(ctx context.Context, followed, follower string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireUser(ctx, tx, followed); err != nil {
			return err
		}
		if err := requireUser(ctx, tx, follower); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO follows(follower_username, followed_username) VALUES(?, ?)",
			follower, followed)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return nil // edge already present
		}

		// Merge oldest-to-newest so the newest tweet lands at the head.
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO timeline(username, tweet_uuid)
			SELECT ?1, t.uuid FROM tweets t
			WHERE t.owner_username = ?2
			   OR EXISTS (SELECT 1 FROM retweets r WHERE r.tweet_uuid = t.uuid AND r.username = ?2)
			ORDER BY t.time ASC, t.rowid ASC`, follower, followed)
		if err != nil {
			return err
		}
		log.Debug().Str("follower", follower).Str("followed", followed).Msg("follow edge added")
		return nil
	})
}

// UnFollow removes the directed edge and purges from the follower's
// timeline every tweet that is no longer visible. A no-op when the edge
// does not exist.
func (s *UserService) UnFollow(ctx context.Context, followed, follower string) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireUser(ctx, tx, followed); err != nil {
			return err
		}
		if err := requireUser(ctx, tx, follower); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"DELETE FROM follows WHERE follower_username = ? AND followed_username = ?",
			follower, followed)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return nil
		}
		return purgeTimeline(ctx, tx, follower)
	})
}

// SearchUsers returns users matching all provided predicates with equality
// semantics. An empty filter returns all users.
func (s *UserService) SearchUsers(ctx context.Context, params models.UserSearchParams) ([]models.UserResponse, error) {
	query := "SELECT username, name, password FROM users WHERE 1=1"
	args := []any{}
	if params.Name != "" {
		query += " AND name = ?"
		args = append(args, params.Name)
	}
	if params.Username != "" {
		query += " AND username = ?"
		args = append(args, params.Username)
	}
	query += " ORDER BY rowid"

	var out []models.UserResponse
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var users []models.User
		for rows.Next() {
			var u models.User
			if err := rows.Scan(&u.Username, &u.Name, &u.Password); err != nil {
				return err
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		out = make([]models.UserResponse, 0, len(users))
		for _, u := range users {
			resp, err := projectUser(ctx, tx, u)
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

// Authenticate verifies a user's credentials with a byte-for-byte compare.
// Unknown username and wrong password collapse to the same outward signal.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.UserResponse, error) {
	var resp models.UserResponse
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		user, err := loadUser(ctx, tx, username)
		if err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
			log.Warn().Str("username", username).Msg("failed authentication attempt")
			return fmt.Errorf("wrong password for %s: %w", username, models.ErrUserNotFound)
		}
		resp, err = projectUser(ctx, tx, user)
		return err
	})
	if err != nil {
		return models.UserResponse{}, err
	}
	return resp, nil
}
