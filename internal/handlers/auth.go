package handlers

import (
	"errors"
	"net/http"

	"budget-calculator/internal/service"
)

const (
	msgInvalidCredentials = "Invalid username or password."
	msgUsernameTaken      = "This username is already taken."
	msgRegistered         = "Registration successful! You can now log in."
	msgInvalidForm        = "Invalid form submission."
)

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", PageData{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "login.html", PageData{Flash: msgInvalidForm})
		return
	}
	username := r.FormValue("username")

	sess, err := h.svc.Accounts.Login(r.Context(), username, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.RecordAuth("login", "failure")
			h.log.Infow("login failed", "username", username)
			h.renderStatus(w, r, http.StatusUnauthorized, "login.html", PageData{
				Flash: msgInvalidCredentials,
				Form:  map[string]string{"username": username},
			})
			return
		}
		h.serverError(w, r, "login", err)
		return
	}

	h.metrics.RecordAuth("login", "success")
	h.setSessionCookie(w, sess.Token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout tears down the session. The cookie is cleared even when the
// session row could not be deleted.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.svc.Accounts.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Errorw("failed to delete session", "err", err)
		}
	}
	h.metrics.RecordAuth("logout", "success")
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", PageData{})
}

// Register creates a user and sends them to the login page.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "register.html", PageData{Flash: msgInvalidForm})
		return
	}
	username := r.FormValue("username")
	form := map[string]string{"username": username}

	user, err := h.svc.Accounts.Register(r.Context(), username, r.FormValue("password"))
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			h.metrics.RecordAuth("register", "invalid")
			h.renderStatus(w, r, http.StatusUnprocessableEntity, "register.html", PageData{Flash: verr.Error(), Form: form})
		case errors.Is(err, service.ErrUsernameTaken):
			h.metrics.RecordAuth("register", "conflict")
			h.renderStatus(w, r, http.StatusConflict, "register.html", PageData{Flash: msgUsernameTaken, Form: form})
		default:
			h.serverError(w, r, "register", err)
		}
		return
	}

	h.metrics.RecordAuth("register", "success")
	h.log.Infow("user registered", "user_id", user.ID, "username", user.Username)
	h.redirectWithFlash(w, r, "/login", msgRegistered)
}
