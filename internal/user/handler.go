package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/contactkeep/service-contacts-go/internal/auth"
	"github.com/contactkeep/service-contacts-go/internal/avatar"
	"github.com/contactkeep/service-contacts-go/internal/user/entity"
	"github.com/contactkeep/service-contacts-go/internal/validate"
)

// Handler exposes the HTTP endpoints for the account lifecycle.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *credentialsRequest) validate() error {
	if err := validate.Required("email", req.Email); err != nil {
		return err
	}
	if err := validate.Email(req.Email); err != nil {
		return err
	}
	if err := validate.Required("password", req.Password); err != nil {
		return err
	}
	return validate.MinLen("password", req.Password, 6)
}

// Register handles POST /users/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := req.validate(); err != nil {
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			h.writeMessage(w, http.StatusConflict, "Email in use")
			return
		}
		h.logger.Errorw("register failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"user": u.Public()})
}

// Verify handles GET /users/verify/{token}.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if err := h.svc.Verify(r.Context(), token); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Errorw("verify failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.writeMessage(w, http.StatusOK, "Verification successful")
}

// ResendVerify handles POST /users/verify.
func (h *Handler) ResendVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" {
		h.writeMessage(w, http.StatusBadRequest, "missing required field email")
		return
	}

	err := h.svc.ResendVerification(r.Context(), req.Email)
	switch {
	case err == nil:
		h.writeMessage(w, http.StatusOK, "Verification email sent")
	case errors.Is(err, ErrNotFound):
		h.writeMessage(w, http.StatusNotFound, "Email was not found")
	case errors.Is(err, ErrAlreadyVerified):
		h.writeMessage(w, http.StatusBadRequest, "Verification has already been passed")
	default:
		h.logger.Errorw("resend verification failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// Login handles POST /users/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := req.validate(); err != nil {
		h.writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u.Public()})
	case errors.Is(err, ErrBadCredentials):
		h.writeMessage(w, http.StatusUnauthorized, "Email or password is wrong")
	case errors.Is(err, ErrNotVerified):
		h.writeMessage(w, http.StatusUnauthorized, "User not verified")
	default:
		h.logger.Errorw("login failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// Current handles GET /users/current.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	h.writeJSON(w, http.StatusOK, u.Public())
}

// Logout handles POST /users/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	if err := h.svc.Logout(r.Context(), u.ID); err != nil {
		h.logger.Errorw("logout failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSubscription handles PATCH /users/{id}/subscription.
func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subscription string `json:"subscription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}

	u, err := h.svc.UpdateSubscription(r.Context(), r.PathValue("id"), entity.Subscription(req.Subscription))
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, u)
	case errors.Is(err, ErrBadSubscription):
		h.writeMessage(w, http.StatusBadRequest, "Invalid subscription value")
	case errors.Is(err, ErrNotFound):
		h.writeMessage(w, http.StatusNotFound, "User not found")
	default:
		h.logger.Errorw("update subscription failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// UpdateAvatar handles PATCH /users/avatars (multipart field "avatar").
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "missing avatar file")
		return
	}
	defer file.Close()

	url, err := h.svc.UpdateAvatar(r.Context(), u.ID, header.Filename, file)
	if err != nil {
		if errors.Is(err, avatar.ErrUnsupportedFormat) {
			h.writeMessage(w, http.StatusInternalServerError, "Inappropriate file format")
			return
		}
		h.logger.Errorw("update avatar failed", "err", err)
		h.writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"avatarURL": url})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"message": msg})
}
