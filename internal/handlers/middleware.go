package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"budget-calculator/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// LoadIdentity resolves the session cookie and attaches the identity to the
// request context. Requests without a valid session pass through anonymously.
// Sessions in the second half of their lifetime are renewed and the cookie
// is refreshed.
func (h *Handlers) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		res, err := h.svc.Accounts.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				h.clearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			h.serverError(w, r, "authenticate session", err)
			return
		}

		if res.Renewed {
			h.setSessionCookie(w, cookie.Value)
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, res.Identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity redirects anonymous requests to the login page instead of
// running the wrapped handler. It must run after LoadIdentity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveRequest(route, r.Method, ww.Status(), duration)

		h.log.Debugw("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		)
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.svc.Accounts.SessionDuration().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
