package entity

import "time"

// Subscription is the paid tier of an account.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// Valid reports whether s is one of the known tiers.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User is an account row in the `users` table. The password hash, session
// token and verification token never leave the server in JSON responses.
type User struct {
	ID                string       `db:"id" json:"id"`
	Email             string       `db:"email" json:"email"`
	PasswordHash      string       `db:"password_hash" json:"-"`
	Subscription      Subscription `db:"subscription" json:"subscription"`
	SessionToken      string       `db:"session_token" json:"-"`
	AvatarURL         string       `db:"avatar_url" json:"avatarURL"`
	Verified          bool         `db:"verified" json:"verified"`
	VerificationToken string       `db:"verification_token" json:"-"`
	CreatedAt         time.Time    `db:"created_at" json:"-"`
	UpdatedAt         time.Time    `db:"updated_at" json:"-"`
}

// PublicView is the projection returned by register/login/current responses.
type PublicView struct {
	Email        string       `json:"email"`
	Subscription Subscription `json:"subscription"`
}

// Public returns the caller-visible projection of u.
func (u *User) Public() PublicView {
	return PublicView{Email: u.Email, Subscription: u.Subscription}
}
