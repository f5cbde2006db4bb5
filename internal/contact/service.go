package contact

import (
	"context"
	"database/sql"
	"errors"

	"github.com/contactkeep/service-contacts-go/internal/contact/entity"
	"github.com/contactkeep/service-contacts-go/pkg/utilities"
)

// Repository is the persistence contract the service depends on.
type Repository interface {
	List(ctx context.Context, ownerID string, favorite *bool, limit, offset int) ([]*entity.Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (*entity.Contact, error)
	Create(ctx context.Context, c *entity.Contact) error
	Update(ctx context.Context, ownerID, id string, name, email, phone *string, favorite *bool) (*entity.Contact, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

var ErrNotFound = errors.New("contact not found")

const (
	defaultPage  = 1
	defaultLimit = 20
)

// ListParams are the pagination and filter knobs for List.
type ListParams struct {
	Page     int
	Limit    int
	Favorite *bool
}

// Patch carries the mutable contact fields; nil fields stay unchanged.
type Patch struct {
	Name     *string
	Email    *string
	Phone    *string
	Favorite *bool
}

// Service encapsulates the owner-scoped contact CRUD.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// List returns a page of the owner's contacts.
func (s *Service) List(ctx context.Context, ownerID string, p ListParams) ([]*entity.Contact, error) {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	offset := (p.Page - 1) * p.Limit
	return s.repo.List(ctx, ownerID, p.Favorite, p.Limit, offset)
}

// Get fetches one of the owner's contacts.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*entity.Contact, error) {
	c, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create stores a new contact owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID, name, email, phone string, favorite bool) (*entity.Contact, error) {
	c := &entity.Contact{
		ID:       utilities.NewSnowflakeID(),
		OwnerID:  ownerID,
		Name:     name,
		Email:    email,
		Phone:    phone,
		Favorite: favorite,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies the patch to the owner's contact.
func (s *Service) Update(ctx context.Context, ownerID, id string, p Patch) (*entity.Contact, error) {
	c, err := s.repo.Update(ctx, ownerID, id, p.Name, p.Email, p.Phone, p.Favorite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete removes the owner's contact. Deletion is immediate and irreversible.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
