package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"shopkit/internal/admin"
	"shopkit/internal/api"
	"shopkit/internal/audit"
	"shopkit/internal/auth"
	"shopkit/internal/metrics"
	"shopkit/internal/store"
	"shopkit/internal/webhook"
	"shopkit/pkg/config"
	"shopkit/pkg/shopify"
)

// Stores is everything the HTTP layer needs from persistence.
type Stores interface {
	FindByKey(ctx context.Context, key string) (*store.Store, error)
	FindByID(ctx context.Context, id int64) (*store.Store, error)
	Upsert(ctx context.Context, key, domain, token, scopes string) (*store.Store, error)
	SaveExtra(ctx context.Context, s *store.Store) error
}

type Auditor interface {
	Record(ctx context.Context, storeKey, action, actor string, metadata any) error
}

type Dependencies struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Logger zerolog.Logger

	// Optional. Nil values fall back to the Postgres repositories, the real
	// Shopify clients and a private registry.
	Stores    Stores
	Exchanger auth.TokenExchanger
	Shopify   auth.InstallationClient
	Dedupe    webhook.Deduper
	Audit     Auditor
	Registry  *prometheus.Registry
	Now       func() time.Time
}

const docsPath = "/docs/"

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Cfg

	stores := deps.Stores
	if stores == nil {
		stores = store.NewRepository(deps.DB)
	}
	if deps.Exchanger == nil {
		deps.Exchanger = shopify.OAuthExchanger{APIKey: cfg.Shopify.APIKey, APISecret: cfg.Shopify.APISecret}
	}
	if deps.Shopify == nil {
		deps.Shopify = shopify.NewClient(cfg.Shopify.APIKey, cfg.Shopify.APISecret, cfg.Shopify.APIVersion, deps.Logger)
	}
	if deps.Audit == nil && deps.DB != nil {
		deps.Audit = audit.NewRepository(deps.DB)
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	sessions := shopify.SessionTokens{Secret: cfg.Shopify.APISecret, Now: deps.Now}
	hashTokens := shopify.HashTokens{Secret: cfg.Shopify.APISecret, Location: cfg.Timezone, Now: deps.Now}
	guards := api.Protector{Logger: deps.Logger, Metrics: m}
	bypass := cfg.BypassValidate

	authHandlers := auth.Handlers{
		Cfg:       cfg,
		Stores:    stores,
		Exchanger: deps.Exchanger,
		Shopify:   deps.Shopify,
		Tokens:    sessions,
		Logger:    deps.Logger,
		Metrics:   m,
		Audit:     deps.Audit,
	}
	adminHandlers := admin.Handlers{
		Cfg:       cfg,
		Stores:    stores,
		Responder: api.Responder{Tokens: sessions},
		Logger:    deps.Logger,
	}
	gdpr := webhook.GDPRHandler{
		Stores:  stores,
		Dedupe:  deps.Dedupe,
		Logger:  deps.Logger,
		Metrics: m,
		Audit:   deps.Audit,
		Now:     deps.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get(docsPath, docs)

	r.Get("/install", authHandlers.Install)
	r.With(guards.Protect(api.CallbackGuard{Secret: cfg.Shopify.APISecret, Now: deps.Now})).
		Get("/callback", authHandlers.Callback)
	r.With(guards.Protect(api.EmbeddedGuard{Secret: cfg.Shopify.APISecret, DocsURL: docsPath, Now: deps.Now})).
		Get("/", authHandlers.Index)

	r.Route("/webhook", func(r chi.Router) {
		r.Use(guards.Protect(api.Bypass(api.WebhookGuard{Secret: cfg.Shopify.APISecret}, bypass)))
		r.Post("/shop/redact", gdpr.ShopRedact)
		r.Post("/customers/redact", gdpr.CustomersRedact)
		r.Post("/customers/data_request", gdpr.CustomersDataRequest)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AdminAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           600,
		}))
		r.Use(guards.Protect(api.Bypass(api.AdminGuard{Tokens: sessions}, bypass)))
		r.Get("/test_jwt", adminHandlers.TestJWT)
		r.Get("/check/{action}", adminHandlers.Check)
	})

	r.With(guards.Protect(api.Bypass(api.ProxyGuard{
		Secret: cfg.Shopify.APISecret,
		Stores: stores,
		Debug:  !cfg.IsProd(),
	}, bypass))).HandleFunc("/proxy/ping", func(w http.ResponseWriter, r *http.Request) {
		rc := api.FromContext(r.Context())
		api.ProxyResponse(w, 0, "success", map[string]any{"storeId": rc.StoreID, "shop": rc.StoreKey})
	})

	r.With(guards.Protect(api.Bypass(api.HashTokenGuard{
		Tokens:  hashTokens,
		Subject: func(r *http.Request) string { return chi.URLParam(r, "subject") },
	}, bypass))).Get("/links/{subject}", func(w http.ResponseWriter, r *http.Request) {
		api.ProxyResponse(w, 0, "success", map[string]any{"subject": chi.URLParam(r, "subject")})
	})

	return r
}

func docs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Open this app from the Shopify admin. Direct loads need shop, hmac, host, timestamp and session parameters.\n"))
}
