package database

import (
	"context"
	"database/sql"
	"strings"
)

// schema is written in the SQLite flavour; Migrate rewrites the few
// constructs MySQL spells differently.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(50) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(10) NOT NULL DEFAULT 'user',
		bio TEXT,
		ville VARCHAR(100),
		photo VARCHAR(255),
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS annonces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id BIGINT NOT NULL,
		title VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		location VARCHAR(100),
		photo VARCHAR(255),
		is_valide BOOLEAN NOT NULL DEFAULT FALSE,
		published_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS stories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id BIGINT NOT NULL,
		title VARCHAR(100) NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id BIGINT NOT NULL,
		recipient_id BIGINT NOT NULL,
		annonce_id BIGINT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX idx_messages_pair ON messages (sender_id, recipient_id, created_at)`,
	`CREATE INDEX idx_messages_recipient ON messages (recipient_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id BIGINT NOT NULL,
		rated_id BIGINT NOT NULL,
		stars TINYINT NOT NULL,
		comment TEXT,
		created_at DATETIME NOT NULL,
		UNIQUE (author_id, rated_id),
		FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (rated_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}

// Migrate creates missing tables and indexes.  It is safe to run on every
// start.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	for _, stmt := range schema {
		if strings.HasPrefix(stmt, "CREATE INDEX") {
			exists, err := indexExists(ctx, db, driver, indexName(stmt))
			if err != nil {
				return err
			}
			if exists {
				continue
			}
		}
		if driver == MySQL {
			stmt = strings.ReplaceAll(stmt, "INTEGER PRIMARY KEY AUTOINCREMENT", "BIGINT PRIMARY KEY AUTO_INCREMENT")
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func indexName(stmt string) string {
	return strings.Fields(stmt)[2]
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so both dialects look the index
// up in their catalog first.
func indexExists(ctx context.Context, db *sql.DB, driver, name string) (bool, error) {
	q := "SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?"
	if driver == MySQL {
		q = "SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = DATABASE() AND index_name = ?"
	}
	var n int
	if err := db.QueryRowContext(ctx, q, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
