package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/contactkeep/service-contacts-go/internal/user/entity"
)

// ErrDuplicateEmail is returned by Create when the email unique index is
// violated. The index, not a pre-check, is the authority for uniqueness so
// concurrent registrations cannot race past each other.
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id varchar(32) PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  subscription TEXT NOT NULL DEFAULT 'starter',
  session_token TEXT NOT NULL DEFAULT '',
  avatar_url TEXT NOT NULL DEFAULT '',
  verified BOOLEAN NOT NULL DEFAULT false,
  verification_token TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email);
CREATE INDEX IF NOT EXISTS idx_users_verification_token ON users (verification_token);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const userColumns = `id, email, password_hash, subscription, session_token,
	avatar_url, verified, verification_token, created_at, updated_at`

// Create inserts a new user row. Returns ErrDuplicateEmail when the email is
// already taken.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, email, password_hash, subscription, session_token, avatar_url, verified, verification_token)
		VALUES (:id, :email, :password_hash, :subscription, :session_token, :avatar_url, :verified, :verification_token)`
	_, err := r.db.NamedExecContext(ctx, q, u)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail returns the user with the given email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID fetches a full user row.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByVerificationToken looks a user up by its pending verification token.
// Consumed tokens are cleared, so a replayed token yields sql.ErrNoRows.
func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE verification_token=$1 AND verification_token <> ''`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, token); err != nil {
		return nil, err
	}
	return &row, nil
}

// SetVerified marks the user verified and consumes its verification token.
func (r *UserRepo) SetVerified(ctx context.Context, id string) error {
	const q = `UPDATE users SET verified=true, verification_token='', updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// SetSessionToken stores the current session token; an empty string revokes
// the session.
func (r *UserRepo) SetSessionToken(ctx context.Context, id, token string) error {
	const q = `UPDATE users SET session_token=$2, updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id, token)
	return err
}

// UpdateSubscription changes the tier and returns the updated row, or
// sql.ErrNoRows when the user does not exist.
func (r *UserRepo) UpdateSubscription(ctx context.Context, id string, sub entity.Subscription) (*entity.User, error) {
	const q = `UPDATE users SET subscription=$2, updated_at=NOW() WHERE id=$1
		RETURNING ` + userColumns
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id, sub); err != nil {
		return nil, err
	}
	return &row, nil
}

// SetAvatarURL updates the stored avatar reference.
func (r *UserRepo) SetAvatarURL(ctx context.Context, id, url string) error {
	const q = `UPDATE users SET avatar_url=$2, updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id, url)
	return err
}
