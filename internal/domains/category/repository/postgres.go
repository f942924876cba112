package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub-backend/internal/domains/category"
	"contenthub-backend/internal/infrastructure/database"
	"contenthub-backend/internal/store"
)

const categoryColumns = `id, name, slug, description, image_url, author_id, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) store.Repository[category.Category, category.CreateCategoryRequest, category.UpdateCategoryRequest] {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) SelectAll(ctx context.Context) ([]category.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories ORDER BY created_at DESC`, categoryColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepository) SelectByID(ctx context.Context, id int64) (category.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)

	c, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return category.Category{}, store.ErrNotFound
	}
	return c, err
}

func (r *postgresRepository) Insert(ctx context.Context, dto category.CreateCategoryRequest, slug, mediaURL string) (category.Category, error) {
	query := fmt.Sprintf(`
		INSERT INTO categories (name, slug, description, image_url, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING %s`, categoryColumns)

	c, err := scanCategory(r.pool.QueryRow(ctx, query,
		dto.Name,
		slug,
		dto.Description,
		database.TextOrNil(mediaURL),
		dto.AuthorID,
	))
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return category.Category{}, fmt.Errorf("category slug already in use: %w", store.ErrConflict)
		}
		return category.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch category.UpdateCategoryRequest, slug, mediaURL string) (category.Category, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Name != nil {
		sets = append(sets, "name = "+arg(*patch.Name))
	}
	if patch.Description != nil {
		sets = append(sets, "description = "+arg(*patch.Description))
	}
	if slug != "" {
		sets = append(sets, "slug = "+arg(slug))
	}
	if mediaURL != "" {
		sets = append(sets, "image_url = "+arg(mediaURL))
	}

	query := fmt.Sprintf(`UPDATE categories SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), arg(id), categoryColumns)

	c, err := scanCategory(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return category.Category{}, store.ErrNotFound
	}
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return category.Category{}, fmt.Errorf("category slug already in use: %w", store.ErrConflict)
		}
		return category.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (category.Category, error) {
	var c category.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.ImageURL,
		&c.AuthorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
