package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
)

const userColumns = `id, name, email, role, avatar_url, password_hash,
	password_changed_at, reset_token_hash, reset_token_expiry, active,
	created_at, updated_at`

// UserRepository is the pgx-backed CredentialStore. Every query carries the
// active = TRUE predicate explicitly; soft-deleted users are invisible here.
type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AvatarURL,
		&u.PasswordHash, &u.PasswordChangedAt, &u.ResetTokenHash,
		&u.ResetTokenExpiry, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, active, created_at, updated_at
	`, u.Name, u.Email, u.Role, u.PasswordHash)

	err := row.Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND active = TRUE
	`, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND active = TRUE
	`, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE active = TRUE
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, avatar_url = $3, updated_at = now()
		WHERE id = $4 AND active = TRUE
	`, u.Name, u.Email, u.AvatarURL, u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, password_changed_at = $2, updated_at = now()
		WHERE id = $3 AND active = TRUE
	`, passwordHash, changedAt, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expiry = $2, updated_at = now()
		WHERE id = $3 AND active = TRUE
	`, tokenHash, expiry, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClearResetToken only clears the pair while it still holds tokenHash, so a
// rollback after a failed notification cannot wipe a token written by a
// concurrent forgot-password request.
func (r *UserRepository) ClearResetToken(ctx context.Context, id, tokenHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = now()
		WHERE id = $1 AND reset_token_hash = $2
	`, id, tokenHash)
	return err
}

// ConsumeResetToken is a single conditional UPDATE, so two concurrent calls
// with the same token cannot both succeed: the second one matches no row.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now, changedAt time.Time) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $1,
		    password_changed_at = $2,
		    reset_token_hash = NULL,
		    reset_token_expiry = NULL,
		    updated_at = now()
		WHERE reset_token_hash = $3
		  AND reset_token_expiry > $4
		  AND active = TRUE
		RETURNING `+userColumns+`
	`, passwordHash, changedAt, tokenHash, now))
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET active = FALSE, updated_at = now()
		WHERE id = $1 AND active = TRUE
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
