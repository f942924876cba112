package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub-backend/internal/domains/user"
	"contenthub-backend/internal/infrastructure/database"
	"contenthub-backend/internal/store"
)

const userColumns = `id, auth_uid, email, username, fullname, role, profile_picture_url, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) SelectAll(ctx context.Context) ([]user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC`, userColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *postgresRepository) SelectByID(ctx context.Context, id int64) (user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, store.ErrNotFound
	}
	return u, err
}

func (r *postgresRepository) SelectByAuthUID(ctx context.Context, authUID string) (user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE auth_uid = $1`, userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query, authUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, store.ErrNotFound
	}
	return u, err
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *postgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *postgresRepository) ExistsByAuthUID(ctx context.Context, authUID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE auth_uid = $1)`, authUID)
}

func (r *postgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return found, nil
}

func (r *postgresRepository) Insert(ctx context.Context, dto user.CreateUserRequest, _ string, mediaURL string) (user.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (auth_uid, email, username, fullname, role, profile_picture_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING %s`, userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query,
		dto.AuthUID,
		dto.Email,
		dto.Username,
		dto.Fullname,
		dto.Role,
		database.TextOrNil(mediaURL),
	))
	if err != nil {
		if constraint, ok := database.UniqueViolation(err); ok {
			return user.User{}, fmt.Errorf("%w: %s", duplicateError(constraint), constraint)
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch user.UpdateProfileRequest, _ string, mediaURL string) (user.User, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Username != nil {
		sets = append(sets, "username = "+arg(*patch.Username))
	}
	if patch.Fullname != nil {
		sets = append(sets, "fullname = "+arg(*patch.Fullname))
	}
	if mediaURL != "" {
		sets = append(sets, "profile_picture_url = "+arg(mediaURL))
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), arg(id), userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, store.ErrNotFound
	}
	if err != nil {
		if constraint, ok := database.UniqueViolation(err); ok {
			return user.User{}, fmt.Errorf("%w: %s", duplicateError(constraint), constraint)
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// duplicateError maps a violated constraint to the user-facing duplicate
// error. The pre-checks in the store are racy; this is the real guard.
func duplicateError(constraint string) error {
	switch {
	case strings.Contains(constraint, "email"):
		return user.ErrEmailTaken
	case strings.Contains(constraint, "username"):
		return user.ErrUsernameTaken
	default:
		return store.ErrConflict
	}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.AuthUID,
		&u.Email,
		&u.Username,
		&u.Fullname,
		&u.Role,
		&u.ProfilePictureURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
