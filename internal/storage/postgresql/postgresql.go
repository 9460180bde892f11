package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

const (
	// tables
	CategoryTable      = "categories"
	PostTable          = "posts"
	GalleryTable       = "gallery_images"
	PendingUploadTable = "pending_uploads"
	AdminTable         = "admins"
)

// SQLSTATE codes mapped to domain errors.
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
)

func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.db
}

func (s *Storage) Stop() {
	s.db.Close()
}

func (s *Storage) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

// Migrate creates the schema. Statements are idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	const op = "storage.postgresql.Migrate"

	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	date DATE NOT NULL,
	category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
	image_key TEXT NOT NULL,
	image_url TEXT NOT NULL,
	additional_image_keys TEXT[] NOT NULL DEFAULT '{}',
	additional_images TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS posts_date_idx ON posts (date DESC);
CREATE INDEX IF NOT EXISTS posts_category_idx ON posts (category_id);

CREATE TABLE IF NOT EXISTS gallery_images (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	photographer TEXT NOT NULL,
	image_key TEXT NOT NULL,
	image_url TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS pending_uploads (
	key TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	url TEXT NOT NULL,
	size BIGINT NOT NULL,
	content_type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS pending_uploads_created_idx ON pending_uploads (created_at);

CREATE TABLE IF NOT EXISTS admins (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email TEXT NOT NULL UNIQUE,
	password_hash BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
