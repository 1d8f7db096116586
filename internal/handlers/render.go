package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"budget-calculator/internal/models"
	"budget-calculator/internal/service"

	"github.com/go-chi/chi/v5/middleware"
)

const flashCookieName = "flash"

// PageData is passed to every page template.
type PageData struct {
	Identity *models.Identity
	Flash    string
	Form     map[string]string
	Expenses []models.Expense
	Total    float64
	Filter   service.ListFilter
}

// render writes the named page with status 200.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, page string, data PageData) {
	h.renderStatus(w, r, http.StatusOK, page, data)
}

// renderStatus writes the named page. Any flash message queued by a previous
// redirect is consumed when data.Flash is empty.
func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	if id, ok := IdentityFromContext(r.Context()); ok {
		data.Identity = &id
	}
	if data.Flash == "" {
		data.Flash = h.popFlash(w, r)
	}

	tmpl, ok := h.templates[page]
	if !ok {
		h.log.Errorw("unknown template", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.serverError(w, r, "execute template "+page, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serverError logs an unexpected failure and answers 500.
func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Errorw("request failed",
		"op", op,
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"err", err,
	)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// redirectWithFlash queues msg for the next rendered page and redirects.
func (h *Handlers) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, to, http.StatusFound)
}

func (h *Handlers) popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
