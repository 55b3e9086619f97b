package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/ledgerrules/internal/audit"
	"github.com/TimurManjosov/ledgerrules/internal/auth"
	"github.com/TimurManjosov/ledgerrules/internal/i18n"
	"github.com/TimurManjosov/ledgerrules/internal/logger"
	"github.com/TimurManjosov/ledgerrules/internal/money"
	"github.com/TimurManjosov/ledgerrules/internal/snapshot"
	"github.com/TimurManjosov/ledgerrules/internal/store"
	"github.com/TimurManjosov/ledgerrules/internal/telemetry"
)

// Options tunes a Server. Zero values are usable.
type Options struct {
	NumberFormat   money.NumberFormat
	RateLimitPerIP int // requests per minute, 0 disables limiting
	Logger         *zerolog.Logger
	Audit          *audit.Service // nil disables auditing
}

type Server struct {
	store     store.Store
	catalog   *i18n.Catalog
	fields    *snapshot.Cache
	auth      *auth.Authenticator
	format    money.NumberFormat
	rateLimit int
	log       zerolog.Logger
	audit     *audit.Service
}

func NewServer(st store.Store, catalog *i18n.Catalog, authn *auth.Authenticator, opts Options) *Server {
	if catalog == nil {
		catalog = i18n.NewCatalog()
	}
	format := opts.NumberFormat
	if format == "" {
		format = money.DefaultFormat
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Server{
		store:     st,
		catalog:   catalog,
		fields:    snapshot.NewCache(catalog),
		auth:      authn,
		format:    format,
		rateLimit: opts.RateLimitPerIP,
		log:       log,
		audit:     opts.Audit,
	}
}

// ReloadCatalog drops cached field catalogs after translations changed.
func (s *Server) ReloadCatalog() {
	s.fields.Reset()
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(logger.Middleware(s.log))
	r.Use(telemetry.Middleware)
	if s.rateLimit > 0 {
		r.Use(httprate.Limit(s.rateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(RateLimitedError),
		))
	}
	r.Use(middleware.Timeout(5 * time.Second))

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public: field catalog (ETag)
	r.Get("/v1/fields", s.handleFields)

	// public: codec and validation
	r.Post("/v1/rules/validate", s.handleValidate)
	r.Route("/v1/conditions", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/unparse", s.handleUnparse)
		r.Post("/value", s.handleValue)
		r.Post("/defaults", s.handleDefaults)
		r.Get("/approx-threshold", s.handleApproxThreshold)
	})

	// saved filters, writes are admin only
	r.Route("/v1/filters", func(r chi.Router) {
		r.Get("/", s.handleListFilters)
		r.Get("/{id}", s.handleGetFilter)
		r.Post("/", s.authAdmin(s.handleUpsertFilter))
		r.Delete("/{id}", s.authAdmin(s.handleDeleteFilter))
	})

	return r
}

func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			ForbiddenError(w, r, "admin access is not configured")
			return
		}
		res := s.auth.Authenticate(r.Header.Get("Authorization"))
		if !res.Authenticated {
			s.audit.Log(audit.NewEventBuilder(r).WithAction(audit.ActionAuthFailed).Failure(res.Error).Build())
			if r.Header.Get("Authorization") == "" {
				UnauthorizedError(w, r, res.Error)
				return
			}
			ForbiddenError(w, r, res.Error)
			return
		}
		next.ServeHTTP(w, r)
	}
}
