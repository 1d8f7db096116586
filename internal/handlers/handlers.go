package handlers

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"budget-calculator/internal/logger"
	"budget-calculator/internal/metrics"
	"budget-calculator/internal/models"
	"budget-calculator/internal/service"
	"budget-calculator/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// IdentityContextKey is the context key for the authenticated identity.
	IdentityContextKey contextKey = "identity"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"

	requestTimeout = 30 * time.Second
)

var pages = []string{"index.html", "login.html", "register.html", "add_expense.html"}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the optional collaborators of Handlers.
type Options struct {
	SecureCookie bool
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Pinger   Pinger
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	svc          *service.Service
	log          *logger.Logger
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	pinger       Pinger
	secureCookie bool
	templates    map[string]*template.Template
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *service.Service, opts Options) *Handlers {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	tmpl := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl[page] = template.Must(template.ParseFS(web.TemplatesFS, "templates/base.html", "templates/"+page))
	}

	return &Handlers{
		svc:          svc,
		log:          log,
		metrics:      opts.Metrics,
		gatherer:     opts.Gatherer,
		pinger:       opts.Pinger,
		secureCookie: opts.SecureCookie,
		templates:    tmpl,
	}
}

// Routes builds the router with every route registered.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.Health)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.LoadIdentity)

		r.Get("/", h.Index)
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)
		r.Get("/register", h.RegisterForm)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(RequireIdentity)

			r.Get("/logout", h.Logout)
			r.Get("/expenses", h.ListExpenses)
			r.Get("/add", h.AddExpenseForm)
			r.Post("/add", h.AddExpense)
			r.Post("/delete/{id}", h.DeleteExpense)
		})
	})

	return r
}

// IdentityFromContext returns the identity attached by LoadIdentity.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(models.Identity)
	return id, ok
}

// Health reports store reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.log.Errorw("health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
