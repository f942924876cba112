package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub-backend/internal/domains/resource"
	"contenthub-backend/internal/infrastructure/database"
	"contenthub-backend/internal/store"
)

const resourceColumns = `id, event_id, media_type, source, url, author_id, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) store.Repository[resource.Resource, resource.CreateResourceRequest, resource.UpdateResourceRequest] {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) SelectAll(ctx context.Context) ([]resource.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources ORDER BY created_at DESC`, resourceColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var out []resource.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *postgresRepository) SelectByID(ctx context.Context, id int64) (resource.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources WHERE id = $1`, resourceColumns)

	res, err := scanResource(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return resource.Resource{}, store.ErrNotFound
	}
	return res, err
}

func (r *postgresRepository) Insert(ctx context.Context, dto resource.CreateResourceRequest, _ string, mediaURL string) (resource.Resource, error) {
	query := fmt.Sprintf(`
		INSERT INTO resources (event_id, media_type, source, url, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING %s`, resourceColumns)

	res, err := scanResource(r.pool.QueryRow(ctx, query,
		dto.EventID,
		dto.MediaType,
		dto.Source,
		database.TextOrNil(mediaURL),
		dto.AuthorID,
	))
	if err != nil {
		return resource.Resource{}, fmt.Errorf("insert resource: %w", err)
	}
	return res, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch resource.UpdateResourceRequest, _ string, mediaURL string) (resource.Resource, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.EventID != nil {
		sets = append(sets, "event_id = "+arg(*patch.EventID))
	}
	if patch.MediaType != nil {
		sets = append(sets, "media_type = "+arg(*patch.MediaType))
	}
	if patch.Source != nil {
		sets = append(sets, "source = "+arg(*patch.Source))
	}
	if mediaURL != "" {
		sets = append(sets, "url = "+arg(mediaURL))
	}

	query := fmt.Sprintf(`UPDATE resources SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), arg(id), resourceColumns)

	res, err := scanResource(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return resource.Resource{}, store.ErrNotFound
	}
	if err != nil {
		return resource.Resource{}, fmt.Errorf("update resource: %w", err)
	}
	return res, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanResource(row pgx.Row) (resource.Resource, error) {
	var res resource.Resource
	err := row.Scan(
		&res.ID,
		&res.EventID,
		&res.MediaType,
		&res.Source,
		&res.URL,
		&res.AuthorID,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	return res, err
}
