package repository

import (
	"context"
	"errors"
	"fmt"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type CategoryRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{
		db: db,
		sb: newBuilder(),
	}
}

func (r *CategoryRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	const op = "repository.CategoryRepo.ListCategories"

	query, args, err := r.sb.Select("id", "name", "created_at").
		From("categories").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return categories, nil
}

func (r *CategoryRepo) SaveCategory(ctx context.Context, name string) (models.Category, error) {
	const op = "repository.CategoryRepo.SaveCategory"

	query, args, err := r.sb.Insert("categories").
		Columns("name").
		Values(name).
		Suffix("RETURNING id, name, created_at").
		ToSql()
	if err != nil {
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	var c models.Category
	err = r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, fmt.Errorf("%s: %w", op, storage.ErrCategoryExists)
		}
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (r *CategoryRepo) DeleteCategory(ctx context.Context, id int64) error {
	const op = "repository.CategoryRepo.DeleteCategory"

	query, args, err := r.sb.Delete("categories").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var deleted int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrCategoryNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
