package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/contactkeep/service-contacts-go/internal/contact/entity"
)

// ContactRepo provides data access for the contacts table using sqlx. Every
// query is scoped by owner_id so one user can never reach another's entries.
type ContactRepo struct {
	db *sqlx.DB
}

func NewContactRepo(db *sqlx.DB) *ContactRepo { return &ContactRepo{db: db} }

// EnsureTable creates the contacts table if not exists (idempotent).
func (r *ContactRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS contacts (
  id varchar(32) PRIMARY KEY,
  owner_id varchar(32) NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  favorite BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts (owner_id);
CREATE INDEX IF NOT EXISTS idx_contacts_owner_favorite ON contacts (owner_id, favorite);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const contactColumns = `id, owner_id, name, email, phone, favorite, created_at, updated_at`

// List returns a page of the owner's contacts, optionally filtered by
// favorite.
func (r *ContactRepo) List(ctx context.Context, ownerID string, favorite *bool, limit, offset int) ([]*entity.Contact, error) {
	rows := []*entity.Contact{}
	if favorite != nil {
		const q = `SELECT ` + contactColumns + ` FROM contacts
			WHERE owner_id=$1 AND favorite=$2 ORDER BY created_at, id LIMIT $3 OFFSET $4`
		if err := r.db.SelectContext(ctx, &rows, q, ownerID, *favorite, limit, offset); err != nil {
			return nil, err
		}
		return rows, nil
	}
	const q = `SELECT ` + contactColumns + ` FROM contacts
		WHERE owner_id=$1 ORDER BY created_at, id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, q, ownerID, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID fetches one of the owner's contacts or sql.ErrNoRows.
func (r *ContactRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Contact, error) {
	const q = `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1 AND owner_id=$2`
	var row entity.Contact
	if err := r.db.GetContext(ctx, &row, q, id, ownerID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new contact row.
func (r *ContactRepo) Create(ctx context.Context, c *entity.Contact) error {
	const q = `INSERT INTO contacts (id, owner_id, name, email, phone, favorite)
		VALUES (:id, :owner_id, :name, :email, :phone, :favorite)`
	_, err := r.db.NamedExecContext(ctx, q, c)
	return err
}

// Update patches the provided fields (nil means keep current) and returns the
// updated row, or sql.ErrNoRows when the contact does not exist for the owner.
func (r *ContactRepo) Update(ctx context.Context, ownerID, id string, name, email, phone *string, favorite *bool) (*entity.Contact, error) {
	const q = `UPDATE contacts SET
			name = COALESCE($3, name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone),
			favorite = COALESCE($6, favorite),
			updated_at = NOW()
		WHERE id=$1 AND owner_id=$2
		RETURNING ` + contactColumns
	var row entity.Contact
	if err := r.db.GetContext(ctx, &row, q, id, ownerID, name, email, phone, favorite); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes the owner's contact and reports whether a row was deleted.
func (r *ContactRepo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const q = `DELETE FROM contacts WHERE id=$1 AND owner_id=$2 RETURNING 1`
	var one int
	err := r.db.GetContext(ctx, &one, q, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
