package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub-backend/internal/domains/event"
	"contenthub-backend/internal/infrastructure/database"
	"contenthub-backend/internal/store"
)

const eventColumns = `id, title, slug, content, start_date, end_date, important, source,
	street, city, state, postal_code, country, lat, lng, address,
	day_month, category_ids, author_id, image_url, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) store.Repository[event.Event, event.CreateEventRequest, event.UpdateEventRequest] {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) SelectAll(ctx context.Context) ([]event.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY created_at DESC`, eventColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *postgresRepository) SelectByID(ctx context.Context, id int64) (event.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)

	e, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, store.ErrNotFound
	}
	return e, err
}

func (r *postgresRepository) Insert(ctx context.Context, dto event.CreateEventRequest, slug, mediaURL string) (event.Event, error) {
	query := fmt.Sprintf(`
		INSERT INTO events (title, slug, content, start_date, end_date, important, source,
			street, city, state, postal_code, country, lat, lng, address,
			day_month, category_ids, author_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, now(), now())
		RETURNING %s`, eventColumns)

	categoryIDs := dto.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []int64{}
	}

	e, err := scanEvent(r.pool.QueryRow(ctx, query,
		dto.Title,
		slug,
		dto.Content,
		dto.StartDate,
		dto.EndDate,
		dto.Important,
		dto.Source,
		dto.Street,
		dto.City,
		dto.State,
		dto.PostalCode,
		dto.Country,
		dto.Lat,
		dto.Lng,
		dto.Address,
		event.DayMonthOf(dto.StartDate),
		categoryIDs,
		dto.AuthorID,
		database.TextOrNil(mediaURL),
	))
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return event.Event{}, fmt.Errorf("event slug already in use: %w", store.ErrConflict)
		}
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch event.UpdateEventRequest, slug, mediaURL string) (event.Event, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Title != nil {
		sets = append(sets, "title = "+arg(*patch.Title))
	}
	if patch.Content != nil {
		sets = append(sets, "content = "+arg(*patch.Content))
	}
	if patch.StartDate != nil {
		sets = append(sets, "start_date = "+arg(*patch.StartDate))
		sets = append(sets, "day_month = "+arg(event.DayMonthOf(*patch.StartDate)))
	}
	if patch.EndDate != nil {
		sets = append(sets, "end_date = "+arg(*patch.EndDate))
	}
	if patch.Important != nil {
		sets = append(sets, "important = "+arg(*patch.Important))
	}
	if patch.Source != nil {
		sets = append(sets, "source = "+arg(*patch.Source))
	}
	if patch.Street != nil {
		sets = append(sets, "street = "+arg(*patch.Street))
	}
	if patch.City != nil {
		sets = append(sets, "city = "+arg(*patch.City))
	}
	if patch.State != nil {
		sets = append(sets, "state = "+arg(*patch.State))
	}
	if patch.PostalCode != nil {
		sets = append(sets, "postal_code = "+arg(*patch.PostalCode))
	}
	if patch.Country != nil {
		sets = append(sets, "country = "+arg(*patch.Country))
	}
	if patch.Lat != nil {
		sets = append(sets, "lat = "+arg(*patch.Lat))
	}
	if patch.Lng != nil {
		sets = append(sets, "lng = "+arg(*patch.Lng))
	}
	if patch.Address != nil {
		sets = append(sets, "address = "+arg(*patch.Address))
	}
	if patch.CategoryIDs != nil {
		sets = append(sets, "category_ids = "+arg(*patch.CategoryIDs))
	}
	if slug != "" {
		sets = append(sets, "slug = "+arg(slug))
	}
	if mediaURL != "" {
		sets = append(sets, "image_url = "+arg(mediaURL))
	}

	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), arg(id), eventColumns)

	e, err := scanEvent(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, store.ErrNotFound
	}
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return event.Event{}, fmt.Errorf("event slug already in use: %w", store.ErrConflict)
		}
		return event.Event{}, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Slug,
		&e.Content,
		&e.StartDate,
		&e.EndDate,
		&e.Important,
		&e.Source,
		&e.Street,
		&e.City,
		&e.State,
		&e.PostalCode,
		&e.Country,
		&e.Lat,
		&e.Lng,
		&e.Address,
		&e.DayMonth,
		&e.CategoryIDs,
		&e.AuthorID,
		&e.ImageURL,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}
