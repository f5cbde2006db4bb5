package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/contactkeep/service-contacts-go/internal/auth"
	"github.com/contactkeep/service-contacts-go/internal/avatar"
	"github.com/contactkeep/service-contacts-go/internal/config"
	"github.com/contactkeep/service-contacts-go/internal/contact"
	contactrepo "github.com/contactkeep/service-contacts-go/internal/contact/repo"
	"github.com/contactkeep/service-contacts-go/internal/mail"
	"github.com/contactkeep/service-contacts-go/internal/user"
	userrepo "github.com/contactkeep/service-contacts-go/internal/user/repo"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level
// using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP
// security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes wires repositories, services and handlers and mounts them on
// the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	tokens := auth.NewTokenService(cfg.SecretKey, cfg.SessionTTL)
	users := userrepo.NewUserRepo(db)
	mailer := mail.NewSendGrid(cfg.SendgridKey, cfg.EmailFrom)
	avatars := avatar.NewStore(cfg.AvatarsDir)

	userSvc := user.NewService(users, nil, tokens, mailer, avatars, cfg)
	userHandler := user.NewHandler(userSvc, logger)

	contactSvc := contact.NewService(contactrepo.NewContactRepo(db))
	contactHandler := contact.NewHandler(contactSvc, logger)

	requireAuth := auth.Middleware(tokens, users, logger)
	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// user routes
	mux.HandleFunc("POST /users/register", userHandler.Register)
	mux.HandleFunc("GET /users/verify/{token}", userHandler.Verify)
	mux.HandleFunc("POST /users/verify", userHandler.ResendVerify)
	mux.HandleFunc("POST /users/login", userHandler.Login)
	mux.Handle("GET /users/current", authed(userHandler.Current))
	mux.Handle("POST /users/logout", authed(userHandler.Logout))
	mux.Handle("PATCH /users/{id}/subscription", authed(userHandler.UpdateSubscription))
	mux.Handle("PATCH /users/avatars", authed(userHandler.UpdateAvatar))

	// contact routes
	mux.Handle("GET /contacts", authed(contactHandler.List))
	mux.Handle("GET /contacts/{id}", authed(contactHandler.Get))
	mux.Handle("POST /contacts", authed(contactHandler.Create))
	mux.Handle("PUT /contacts/{id}", authed(contactHandler.Update))
	mux.Handle("PATCH /contacts/{id}/favorite", authed(contactHandler.UpdateFavorite))
	mux.Handle("DELETE /contacts/{id}", authed(contactHandler.Delete))

	// stored avatars
	mux.Handle("GET /avatars/", http.StripPrefix("/avatars/", http.FileServer(http.Dir(cfg.AvatarsDir))))

	// wrap with security headers middleware then logging middleware
	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
}
