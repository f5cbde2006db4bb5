package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/contactkeep/service-contacts-go/internal/auth"
	userentity "github.com/contactkeep/service-contacts-go/internal/user/entity"
)

func newHandlerFixture(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc := NewService(newFakeRepo())
	return NewHandler(svc, zap.NewNop().Sugar()), svc
}

func asOwner(r *http.Request, ownerID string) *http.Request {
	u := &userentity.User{ID: ownerID, Email: ownerID + "@x.com", Verified: true}
	return r.WithContext(auth.WithUser(r.Context(), u))
}

func handlerMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestCreateEndpointValidation(t *testing.T) {
	h, _ := newHandlerFixture(t)

	buf, _ := json.Marshal(map[string]string{"email": "ann@x.com", "phone": "1"})
	r := asOwner(httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(buf)), "owner-1")
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"name" is required`, handlerMessage(t, w))
}

func TestCreateAndGetEndpoints(t *testing.T) {
	h, _ := newHandlerFixture(t)

	buf, _ := json.Marshal(map[string]string{"name": "Ann", "email": "ann@x.com", "phone": "123"})
	r := asOwner(httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(buf)), "owner-1")
	w := httptest.NewRecorder()
	h.Create(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID       string `json:"id"`
		Owner    string `json:"owner"`
		Name     string `json:"name"`
		Favorite bool   `json:"favorite"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "owner-1", created.Owner)
	assert.False(t, created.Favorite)

	// owner can fetch it back
	r = asOwner(httptest.NewRequest(http.MethodGet, "/contacts/"+created.ID, nil), "owner-1")
	r.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	h.Get(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	// another user cannot
	r = asOwner(httptest.NewRequest(http.MethodGet, "/contacts/"+created.ID, nil), "owner-2")
	r.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	h.Get(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", handlerMessage(t, w))
}

func TestUpdateFavoriteEndpoint(t *testing.T) {
	h, svc := newHandlerFixture(t)

	c, err := svc.Create(context.Background(), "owner-1", "Ann", "ann@x.com", "1", false)
	require.NoError(t, err)

	r := asOwner(httptest.NewRequest(http.MethodPatch, "/contacts/"+c.ID+"/favorite", bytes.NewReader([]byte(`{}`))), "owner-1")
	r.SetPathValue("id", c.ID)
	w := httptest.NewRecorder()
	h.UpdateFavorite(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing field favorite", handlerMessage(t, w))

	r = asOwner(httptest.NewRequest(http.MethodPatch, "/contacts/"+c.ID+"/favorite", bytes.NewReader([]byte(`{"favorite":true}`))), "owner-1")
	r.SetPathValue("id", c.ID)
	w = httptest.NewRecorder()
	h.UpdateFavorite(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Favorite bool `json:"favorite"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Favorite)
}

func TestDeleteEndpoint(t *testing.T) {
	h, svc := newHandlerFixture(t)

	c, err := svc.Create(context.Background(), "owner-1", "Ann", "ann@x.com", "1", false)
	require.NoError(t, err)

	r := asOwner(httptest.NewRequest(http.MethodDelete, "/contacts/"+c.ID, nil), "owner-1")
	r.SetPathValue("id", c.ID)
	w := httptest.NewRecorder()
	h.Delete(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "contact deleted", handlerMessage(t, w))

	// deletion is immediate and irreversible
	w = httptest.NewRecorder()
	h.Delete(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEndpointQueryParams(t *testing.T) {
	h, svc := newHandlerFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", "Ann", "ann@x.com", "1", true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", "Bob", "bob@x.com", "2", false)
	require.NoError(t, err)

	r := asOwner(httptest.NewRequest(http.MethodGet, "/contacts?favorite=true", nil), "owner-1")
	w := httptest.NewRecorder()
	h.List(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var list []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ann", list[0].Name)
}
