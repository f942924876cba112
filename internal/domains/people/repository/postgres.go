package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub-backend/internal/domains/people"
	"contenthub-backend/internal/infrastructure/database"
	"contenthub-backend/internal/store"
)

const personColumns = `id, name, slug, biography, birth_date, death_date, nationality,
	profession, day_month, author_id, image_url, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) store.Repository[people.Person, people.CreatePersonRequest, people.UpdatePersonRequest] {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) SelectAll(ctx context.Context) ([]people.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM people ORDER BY created_at DESC`, personColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var out []people.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepository) SelectByID(ctx context.Context, id int64) (people.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM people WHERE id = $1`, personColumns)

	p, err := scanPerson(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return people.Person{}, store.ErrNotFound
	}
	return p, err
}

func (r *postgresRepository) Insert(ctx context.Context, dto people.CreatePersonRequest, slug, mediaURL string) (people.Person, error) {
	query := fmt.Sprintf(`
		INSERT INTO people (name, slug, biography, birth_date, death_date, nationality,
			profession, day_month, author_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING %s`, personColumns)

	var dayMonth *string
	if dto.BirthDate != nil {
		dm := dto.BirthDate.Format("02-01")
		dayMonth = &dm
	}

	p, err := scanPerson(r.pool.QueryRow(ctx, query,
		dto.Name,
		slug,
		dto.Biography,
		dto.BirthDate,
		dto.DeathDate,
		dto.Nationality,
		dto.Profession,
		dayMonth,
		dto.AuthorID,
		database.TextOrNil(mediaURL),
	))
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return people.Person{}, fmt.Errorf("person slug already in use: %w", store.ErrConflict)
		}
		return people.Person{}, fmt.Errorf("insert person: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch people.UpdatePersonRequest, slug, mediaURL string) (people.Person, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Name != nil {
		sets = append(sets, "name = "+arg(*patch.Name))
	}
	if patch.Biography != nil {
		sets = append(sets, "biography = "+arg(*patch.Biography))
	}
	if patch.BirthDate != nil {
		sets = append(sets, "birth_date = "+arg(*patch.BirthDate))
		sets = append(sets, "day_month = "+arg(patch.BirthDate.Format("02-01")))
	}
	if patch.DeathDate != nil {
		sets = append(sets, "death_date = "+arg(*patch.DeathDate))
	}
	if patch.Nationality != nil {
		sets = append(sets, "nationality = "+arg(*patch.Nationality))
	}
	if patch.Profession != nil {
		sets = append(sets, "profession = "+arg(*patch.Profession))
	}
	if slug != "" {
		sets = append(sets, "slug = "+arg(slug))
	}
	if mediaURL != "" {
		sets = append(sets, "image_url = "+arg(mediaURL))
	}

	query := fmt.Sprintf(`UPDATE people SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), arg(id), personColumns)

	p, err := scanPerson(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return people.Person{}, store.ErrNotFound
	}
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return people.Person{}, fmt.Errorf("person slug already in use: %w", store.ErrConflict)
		}
		return people.Person{}, fmt.Errorf("update person: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanPerson(row pgx.Row) (people.Person, error) {
	var p people.Person
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Biography,
		&p.BirthDate,
		&p.DeathDate,
		&p.Nationality,
		&p.Profession,
		&p.DayMonth,
		&p.AuthorID,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
