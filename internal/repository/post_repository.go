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
	"github.com/lib/pq"
)

type PostRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPostRepository(db *pgxpool.Pool) *PostRepo {
	return &PostRepo{
		db: db,
		sb: newBuilder(),
	}
}

var postColumns = []string{
	"p.id", "p.title", "p.content", "p.date", "p.category_id",
	"p.image_key", "p.image_url", "p.additional_image_keys", "p.additional_images",
	"p.created_at", "p.updated_at", "c.name",
}

func (r *PostRepo) selectPosts() sq.SelectBuilder {
	return r.sb.Select(postColumns...).
		From("posts p").
		LeftJoin("categories c ON c.id = p.category_id")
}

func scanPost(row scanner) (models.Post, error) {
	var (
		p            models.Post
		categoryName *string
	)

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Date,
		&p.CategoryID,
		&p.ImageKey,
		&p.ImageURL,
		&p.AdditionalImageKeys,
		&p.AdditionalImages,
		&p.CreatedAt,
		&p.UpdatedAt,
		&categoryName,
	)
	if err != nil {
		return models.Post{}, err
	}

	if p.CategoryID != nil && categoryName != nil {
		p.Category = &models.Category{ID: *p.CategoryID, Name: *categoryName}
	}
	p.AdditionalImageKeys = nonNil(p.AdditionalImageKeys)
	p.AdditionalImages = nonNil(p.AdditionalImages)

	return p, nil
}

func (r *PostRepo) GetPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	const op = "repository.PostRepo.GetPosts"

	qb := r.selectPosts()

	if filter.CategoryID != 0 {
		qb = qb.Where(sq.Eq{"p.category_id": filter.CategoryID})
	}
	if filter.DateFrom != nil {
		qb = qb.Where(sq.GtOrEq{"p.date": *filter.DateFrom})
	}
	if filter.DateBefore != nil {
		qb = qb.Where(sq.Lt{"p.date": *filter.DateBefore})
	}

	switch filter.OrderBy {
	case models.PostOrderDateAsc:
		qb = qb.OrderBy("p.date ASC", "p.id ASC")
	case models.PostOrderCreatedDesc:
		qb = qb.OrderBy("p.created_at DESC", "p.id DESC")
	default:
		qb = qb.OrderBy("p.date DESC", "p.id DESC")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return posts, nil
}

func (r *PostRepo) GetPostByID(ctx context.Context, id int64) (models.Post, error) {
	const op = "repository.PostRepo.GetPostByID"

	post, err := r.getPost(ctx, r.db, id)
	if err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

func (r *PostRepo) getPost(ctx context.Context, q querier, id int64) (models.Post, error) {
	query, args, err := r.selectPosts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return models.Post{}, err
	}

	post, err := scanPost(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, storage.ErrPostNotFound
		}
		return models.Post{}, err
	}

	return post, nil
}

func (r *PostRepo) SavePost(ctx context.Context, post models.Post) (models.Post, error) {
	const op = "repository.PostRepo.SavePost"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query, args, err := r.sb.Insert("posts").
		Columns(
			"title",
			"content",
			"date",
			"category_id",
			"image_key",
			"image_url",
			"additional_image_keys",
			"additional_images",
		).
		Values(
			post.Title,
			post.Content,
			post.Date,
			post.CategoryID,
			post.ImageKey,
			post.ImageURL,
			pq.Array(nonNil(post.AdditionalImageKeys)),
			pq.Array(nonNil(post.AdditionalImages)),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return models.Post{}, fmt.Errorf("%s: %w", op, storage.ErrCategoryNotFound)
		}
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := claimPending(ctx, tx, r.sb, models.CollectionBlog, post.ImageKeys()); err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := r.getPost(ctx, tx, id)
	if err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

func (r *PostRepo) UpdatePost(ctx context.Context, id int64, upd models.PostUpdate) (models.Post, []string, error) {
	const op = "repository.PostRepo.UpdatePost"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query, args, err := r.sb.Select("image_key", "additional_image_keys").
		From("posts").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	var current models.Post
	if err := tx.QueryRow(ctx, query, args...).Scan(&current.ImageKey, &current.AdditionalImageKeys); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
		}
		return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	ub := r.sb.Update("posts").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})

	if upd.Title != nil {
		ub = ub.Set("title", *upd.Title)
	}
	if upd.Content != nil {
		ub = ub.Set("content", *upd.Content)
	}
	if upd.Date != nil {
		ub = ub.Set("date", *upd.Date)
	}
	if upd.CategoryID != nil {
		var categoryID *int64
		if *upd.CategoryID != 0 {
			categoryID = upd.CategoryID
		}
		ub = ub.Set("category_id", categoryID)
	}

	var removed []string
	if upd.Images != nil {
		var next models.Post
		next.SetImages(upd.Images)

		oldKeys := current.ImageKeys()
		newKeys := next.ImageKeys()
		removed = difference(oldKeys, newKeys)

		if err := claimPending(ctx, tx, r.sb, models.CollectionBlog, difference(newKeys, oldKeys)); err != nil {
			return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
		}

		ub = ub.Set("image_key", next.ImageKey).
			Set("image_url", next.ImageURL).
			Set("additional_image_keys", pq.Array(next.AdditionalImageKeys)).
			Set("additional_images", pq.Array(next.AdditionalImages))
	}

	query, args, err = ub.ToSql()
	if err != nil {
		return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return models.Post{}, nil, fmt.Errorf("%s: %w", op, storage.ErrCategoryNotFound)
		}
		return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := r.getPost(ctx, tx, id)
	if err != nil {
		return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Post{}, nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, removed, nil
}

func (r *PostRepo) DeletePost(ctx context.Context, id int64) ([]string, error) {
	const op = "repository.PostRepo.DeletePost"

	query, args, err := r.sb.Delete("posts").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING image_key, additional_image_keys").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var deleted models.Post
	if err := r.db.QueryRow(ctx, query, args...).Scan(&deleted.ImageKey, &deleted.AdditionalImageKeys); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return deleted.ImageKeys(), nil
}

// difference returns the elements of a missing from b, in a's order.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, k := range b {
		seen[k] = struct{}{}
	}

	out := make([]string, 0)
	for _, k := range a {
		if _, ok := seen[k]; !ok {
			out = append(out, k)
		}
	}

	return out
}
