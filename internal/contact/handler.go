package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/contactkeep/service-contacts-go/internal/auth"
	"github.com/contactkeep/service-contacts-go/internal/validate"
)

// Handler exposes HTTP endpoints for contact CRUD. All routes sit behind the
// bearer middleware, so the owner is always present in the request context.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite *bool  `json:"favorite"`
}

func (req *contactRequest) validate() error {
	if err := validate.Required("name", req.Name); err != nil {
		return err
	}
	if err := validate.Required("email", req.Email); err != nil {
		return err
	}
	return validate.Required("phone", req.Phone)
}

// List handles GET /contacts with ?page=&limit=&favorite=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	params := ListParams{}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := q.Get("favorite"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			params.Favorite = &b
		}
	}

	list, err := h.svc.List(r.Context(), owner.ID, params)
	if err != nil {
		h.logger.Errorw("list contacts failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// Get handles GET /contacts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	c, err := h.svc.Get(r.Context(), owner.ID, r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// Create handles POST /contacts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := req.validate(); err != nil {
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	favorite := req.Favorite != nil && *req.Favorite

	c, err := h.svc.Create(r.Context(), owner.ID, req.Name, req.Email, req.Phone, favorite)
	if err != nil {
		h.logger.Errorw("create contact failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

// Update handles PUT /contacts/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := req.validate(); err != nil {
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Update(r.Context(), owner.ID, r.PathValue("id"), Patch{
		Name:     &req.Name,
		Email:    &req.Email,
		Phone:    &req.Phone,
		Favorite: req.Favorite,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// UpdateFavorite handles PATCH /contacts/{id}/favorite.
func (h *Handler) UpdateFavorite(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	var req struct {
		Favorite *bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Favorite == nil {
		h.writeMessage(w, http.StatusBadRequest, "missing field favorite")
		return
	}

	c, err := h.svc.Update(r.Context(), owner.ID, r.PathValue("id"), Patch{Favorite: req.Favorite})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /contacts/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	if err := h.svc.Delete(r.Context(), owner.ID, r.PathValue("id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.writeMessage(w, http.StatusOK, "contact deleted")
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		h.writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	h.logger.Errorw("contact operation failed", "err", err)
	h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"message": msg})
}
