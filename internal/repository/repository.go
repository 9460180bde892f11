package repository

import (
	"context"
	"errors"

	"elite_blog/internal/storage/postgresql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

// Repository groups the postgres-backed repositories sharing one pool.
type Repository struct {
	db       *pgxpool.Pool
	Category *CategoryRepo
	Post     *PostRepo
	Gallery  *GalleryRepo
	Upload   *UploadRepo
	Admin    *AdminRepo
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:       db,
		Category: NewCategoryRepository(db),
		Post:     NewPostRepository(db),
		Gallery:  NewGalleryRepository(db),
		Upload:   NewUploadRepository(db),
		Admin:    NewAdminRepository(db),
	}
}

func (r *Repository) Close() {
	r.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == postgresql.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == postgresql.ForeignKeyViolation
}

func newBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func keysAny(column string, keys []string) sq.Sqlizer {
	return sq.Expr(column+" = ANY(?)", pq.Array(keys))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
