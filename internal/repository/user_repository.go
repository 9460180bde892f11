package repository

import (
	"context"
	"errors"
	"fmt"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type AdminRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{
		db: db,
		sb: newBuilder(),
	}
}

func (r *AdminRepo) SaveAdmin(ctx context.Context, email string, passHash []byte) (uuid.UUID, error) {
	const op = "repository.AdminRepo.SaveAdmin"

	query, args, err := r.sb.Insert("admins").
		Columns("email", "password_hash").
		Values(email, passHash).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *AdminRepo) AdminByEmail(ctx context.Context, email string) (models.Admin, error) {
	const op = "repository.AdminRepo.AdminByEmail"

	admin, err := r.admin(ctx, sq.Eq{"email": email})
	if err != nil {
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	return admin, nil
}

func (r *AdminRepo) AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	const op = "repository.AdminRepo.AdminByID"

	admin, err := r.admin(ctx, sq.Eq{"id": id})
	if err != nil {
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	return admin, nil
}

func (r *AdminRepo) admin(ctx context.Context, where sq.Eq) (models.Admin, error) {
	query, args, err := r.sb.Select("id", "email", "password_hash", "created_at").
		From("admins").
		Where(where).
		ToSql()
	if err != nil {
		return models.Admin{}, fmt.Errorf("can't build sql: %w", err)
	}

	var a models.Admin
	err = r.db.QueryRow(ctx, query, args...).Scan(&a.ID, &a.Email, &a.Password, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, storage.ErrUserNotFound
		}
		return models.Admin{}, err
	}

	return a, nil
}

func (r *AdminRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passHash []byte) error {
	const op = "repository.AdminRepo.UpdatePassword"

	query, args, err := r.sb.Update("admins").
		Set("password_hash", passHash).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}
