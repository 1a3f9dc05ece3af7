package database

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		username TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		password TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tweets (
		uuid TEXT NOT NULL PRIMARY KEY,
		body TEXT NOT NULL,
		-- Wire layout "yyyy-MM-dd HH:mm:ss"; sorts and range-compares as text.
		time TEXT NOT NULL,
		owner_username TEXT NOT NULL REFERENCES users(username)
	);

	CREATE TABLE IF NOT EXISTS tweet_hashtags (
		tweet_uuid TEXT NOT NULL REFERENCES tweets(uuid) ON DELETE CASCADE,
		hashtag TEXT NOT NULL,
		PRIMARY KEY (tweet_uuid, hashtag)
	);

	CREATE TABLE IF NOT EXISTS tweet_mentions (
		tweet_uuid TEXT NOT NULL REFERENCES tweets(uuid) ON DELETE CASCADE,
		mention TEXT NOT NULL,
		PRIMARY KEY (tweet_uuid, mention)
	);

	CREATE TABLE IF NOT EXISTS follows (
		follower_username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		followed_username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		PRIMARY KEY (follower_username, followed_username)
	);

	CREATE TABLE IF NOT EXISTS likes (
		username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		tweet_uuid TEXT NOT NULL REFERENCES tweets(uuid) ON DELETE CASCADE,
		PRIMARY KEY (username, tweet_uuid)
	);

	CREATE TABLE IF NOT EXISTS retweets (
		username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		tweet_uuid TEXT NOT NULL REFERENCES tweets(uuid) ON DELETE CASCADE,
		PRIMARY KEY (username, tweet_uuid)
	);

	CREATE TABLE IF NOT EXISTS timeline (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		tweet_uuid TEXT NOT NULL REFERENCES tweets(uuid) ON DELETE CASCADE,
		UNIQUE (username, tweet_uuid)
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back when fn returns an error or panics.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
