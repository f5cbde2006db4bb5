package contact

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeep/service-contacts-go/internal/contact/entity"
)

type fakeRepo struct {
	mu       sync.Mutex
	contacts map[string]*entity.Contact

	// last List call, for asserting pagination plumbing
	lastLimit  int
	lastOffset int
}

func newFakeRepo() *fakeRepo { return &fakeRepo{contacts: map[string]*entity.Contact{}} }

func (f *fakeRepo) List(ctx context.Context, ownerID string, favorite *bool, limit, offset int) ([]*entity.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit, f.lastOffset = limit, offset
	out := []*entity.Contact{}
	for _, c := range f.contacts {
		if c.OwnerID != ownerID {
			continue
		}
		if favorite != nil && c.Favorite != *favorite {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Create(ctx context.Context, c *entity.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, ownerID, id string, name, email, phone *string, favorite *bool) (*entity.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	if name != nil {
		c.Name = *name
	}
	if email != nil {
		c.Email = *email
	}
	if phone != nil {
		c.Phone = *phone
	}
	if favorite != nil {
		c.Favorite = *favorite
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return false, nil
	}
	delete(f.contacts, id)
	return true, nil
}

func TestCreateAssignsIDAndOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), "owner-1", "Ann", "ann@x.com", "123-456", false)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "owner-1", c.OwnerID)

	stored, err := svc.Get(context.Background(), "owner-1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", stored.Name)
}

func TestListPaginationDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.List(ctx, "owner-1", ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)

	_, err = svc.List(ctx, "owner-1", ListParams{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)
	assert.Equal(t, 10, repo.lastOffset)
}

func TestListFavoriteFilterAndOwnerScope(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	fav, err := svc.Create(ctx, "owner-1", "Ann", "ann@x.com", "1", true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", "Bob", "bob@x.com", "2", false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-2", "Eve", "eve@x.com", "3", true)
	require.NoError(t, err)

	all, err := svc.List(ctx, "owner-1", ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	want := true
	onlyFav, err := svc.List(ctx, "owner-1", ListParams{Favorite: &want})
	require.NoError(t, err)
	require.Len(t, onlyFav, 1)
	assert.Equal(t, fav.ID, onlyFav[0].ID)
}

func TestGetForeignContactIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", "Ann", "ann@x.com", "1", false)
	require.NoError(t, err)

	_, err = svc.Get(ctx, "owner-2", c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePatch(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", "Ann", "ann@x.com", "1", false)
	require.NoError(t, err)

	fav := true
	updated, err := svc.Update(ctx, "owner-1", c.ID, Patch{Favorite: &fav})
	require.NoError(t, err)
	assert.True(t, updated.Favorite)
	// untouched fields keep their value
	assert.Equal(t, "Ann", updated.Name)

	_, err = svc.Update(ctx, "owner-1", "no-such-id", Patch{Favorite: &fav})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", "Ann", "ann@x.com", "1", false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "owner-1", c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "owner-1", c.ID), ErrNotFound)
}
