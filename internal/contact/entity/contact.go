package entity

import "time"

// Contact is an address-book entry owned by exactly one user.
type Contact struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Favorite  bool      `db:"favorite" json:"favorite"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}
