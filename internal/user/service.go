package user

import (
	"context"
	"crypto/md5"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/contactkeep/service-contacts-go/internal/config"
	"github.com/contactkeep/service-contacts-go/internal/mail"
	"github.com/contactkeep/service-contacts-go/internal/user/entity"
	userrepo "github.com/contactkeep/service-contacts-go/internal/user/repo"
	"github.com/contactkeep/service-contacts-go/pkg/utilities"
)

// PasswordHasher defines the minimal hashing interface (abstract so we can
// swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Repository is the persistence contract the service depends on.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	SetVerified(ctx context.Context, id string) error
	SetSessionToken(ctx context.Context, id, token string) error
	UpdateSubscription(ctx context.Context, id string, sub entity.Subscription) (*entity.User, error)
	SetAvatarURL(ctx context.Context, id, url string) error
}

// TokenIssuer mints session tokens for an authenticated identity.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AvatarStore persists uploaded avatar images and returns their URL path.
type AvatarStore interface {
	Save(userID, filename string, r io.Reader) (string, error)
}

var (
	ErrEmailInUse      = errors.New("email in use")
	ErrNotFound        = errors.New("user not found")
	ErrBadCredentials  = errors.New("email or password is wrong")
	ErrNotVerified     = errors.New("user not verified")
	ErrAlreadyVerified = errors.New("verification already passed")
	ErrBadSubscription = errors.New("invalid subscription value")
)

// Service orchestrates the account lifecycle: registration, email
// verification, login/logout and profile updates.
type Service struct {
	repo    Repository
	hasher  PasswordHasher
	tokens  TokenIssuer
	mailer  mail.Mailer
	avatars AvatarStore
	cfg     *config.Config
}

// NewService wires the auth workflow. A nil hasher defaults to bcrypt cost 10.
func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer, mailer mail.Mailer, avatars AvatarStore, cfg *config.Config) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &Service{repo: repo, hasher: hasher, tokens: tokens, mailer: mailer, avatars: avatars, cfg: cfg}
}

// Register creates a pending-verification account and emails a verification
// link. Email uniqueness is enforced by the store's unique index; a duplicate
// surfaces as ErrEmailInUse. A mail delivery failure is returned to the
// caller even though the account row already exists, matching the upstream
// behavior this service replaces.
func (s *Service) Register(ctx context.Context, email, password string) (*entity.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		ID:                utilities.NewKSUID(),
		Email:             email,
		PasswordHash:      hash,
		Subscription:      entity.SubscriptionStarter,
		AvatarURL:         gravatarURL(email),
		VerificationToken: uuid.NewString(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	if err := s.sendVerificationEmail(ctx, u.Email, u.VerificationToken); err != nil {
		return nil, err
	}
	return u, nil
}

// Verify consumes a one-time verification token. A token that was already
// consumed, or never existed, yields ErrNotFound.
func (s *Service) Verify(ctx context.Context, token string) error {
	u, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.SetVerified(ctx, u.ID)
}

// ResendVerification re-sends the existing verification token. The token is
// deliberately not rotated so earlier emails stay valid.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if u.Verified {
		return ErrAlreadyVerified
	}
	return s.sendVerificationEmail(ctx, u.Email, u.VerificationToken)
}

// Login authenticates by email and password, mints a session token and
// persists it on the user record for later revocation. Absent user and wrong
// password return the same ErrBadCredentials to avoid leaking account
// existence; an unverified account is distinguished as ErrNotVerified.
func (s *Service) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if !u.Verified {
		return "", nil, ErrNotVerified
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return "", nil, ErrBadCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", nil, err
	}
	if err := s.repo.SetSessionToken(ctx, u.ID, token); err != nil {
		return "", nil, err
	}
	u.SessionToken = token
	return token, u, nil
}

// Logout clears the stored session token; the auth middleware then rejects
// the old bearer token even before it expires.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.repo.SetSessionToken(ctx, userID, "")
}

// UpdateSubscription changes the tier of the target user.
func (s *Service) UpdateSubscription(ctx context.Context, id string, sub entity.Subscription) (*entity.User, error) {
	if !sub.Valid() {
		return nil, ErrBadSubscription
	}
	u, err := s.repo.UpdateSubscription(ctx, id, sub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateAvatar stores a resized copy of the upload and records its URL on the
// user.
func (s *Service) UpdateAvatar(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	url, err := s.avatars.Save(userID, filename, r)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetAvatarURL(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) sendVerificationEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/users/verify/%s", s.cfg.BaseURL, token)
	return s.mailer.Send(ctx, mail.Message{
		To:      email,
		Subject: "Please verify your email",
		HTML:    fmt.Sprintf(`<a target="_blank" href=%q>Click to verify your email</a>`, link),
	})
}

// gravatarURL computes the protocol-relative Gravatar URL used as the default
// avatar for new accounts.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("//www.gravatar.com/avatar/%x", sum)
}
