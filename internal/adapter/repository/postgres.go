package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"planmarket/internal/domain/entity"
	"planmarket/pkg/errors"
)

const uniqueViolation = "23505"

// OpenPostgres opens and pings a PostgreSQL pool.
func OpenPostgres(ctx context.Context, dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		username TEXT UNIQUE,
		role TEXT NOT NULL DEFAULT 'buyer' CHECK (role IN ('buyer', 'seller', 'admin')),
		avatar_url TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		images TEXT[] NOT NULL DEFAULT '{}',
		files TEXT[] NOT NULL DEFAULT '{}',
		category_id TEXT NOT NULL DEFAULT '',
		seller_id TEXT NOT NULL REFERENCES profiles(id),
		downloads BIGINT NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		reviews_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
		featured BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS products_status_category_idx ON products (status, category_id)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		commission NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'canceled', 'refunded')),
		idempotency_key TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (buyer_id, idempotency_key)
	)`,
	`CREATE INDEX IF NOT EXISTS orders_seller_idx ON orders (seller_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS orders_buyer_idx ON orders (buyer_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		buyer_id TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (buyer_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		last_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (buyer_id, seller_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		sender_id TEXT NOT NULL,
		content TEXT NOT NULL,
		message_type TEXT NOT NULL DEFAULT 'text',
		read BOOLEAN NOT NULL DEFAULT false,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_chat_sent_idx ON messages (chat_id, sent_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC)`,
}

// SchemaStatements is the number of statements ApplySchema executes.
var SchemaStatements = len(schema)

// ApplySchema creates every table and index if missing. It is safe to run on
// each start.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// notFoundOr maps sql.ErrNoRows to NotFound and anything else to Internal.
func notFoundOr(err error, resource, action string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource, err)
	}
	return errors.Internal(action, err)
}

// expectOneRow turns a zero-row UPDATE or DELETE into NotFound.
func expectOneRow(result sql.Result, resource string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Internal("Failed to read affected rows", err)
	}
	if n == 0 {
		return errors.NotFound(resource, sql.ErrNoRows)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// limitArg binds LIMIT; NULL means no limit in PostgreSQL.
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// SeedCategories inserts categories that are not present yet.
func SeedCategories(ctx context.Context, db *sql.DB, categories []*entity.Category) error {
	for _, c := range categories {
		_, err := db.ExecContext(ctx,
			`INSERT INTO categories (id, name, slug, description) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			c.ID, c.Name, c.Slug, c.Description)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	return nil
}
