package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopkit/internal/api"
	"shopkit/internal/audit"
	"shopkit/internal/metrics"
	"shopkit/internal/store"
	"shopkit/pkg/config"
	"shopkit/pkg/shopify"
)

type TokenExchanger interface {
	ExchangeCodeForToken(ctx context.Context, shopDomain, code string) (*shopify.AccessToken, error)
}

type InstallationClient interface {
	FetchInstallation(ctx context.Context, shopDomain, accessToken string) (*shopify.Installation, error)
	RegisterWebhook(ctx context.Context, shopDomain, accessToken, topic, address string) error
}

type Stores interface {
	FindByKey(ctx context.Context, key string) (*store.Store, error)
	Upsert(ctx context.Context, key, domain, token, scopes string) (*store.Store, error)
}

// Auditor records store lifecycle events; nil disables auditing.
type Auditor interface {
	Record(ctx context.Context, storeKey, action, actor string, metadata any) error
}

type Handlers struct {
	Cfg       config.Config
	Stores    Stores
	Exchanger TokenExchanger
	Shopify   InstallationClient
	Tokens    shopify.SessionTokens
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	Audit     Auditor
}

// Install validates the shop, sets the anti-forgery state cookie and sends the
// merchant to Shopify to approve the configured scopes.
func (h Handlers) Install(w http.ResponseWriter, r *http.Request) {
	shopDomain := strings.TrimSpace(r.URL.Query().Get("shop"))
	if !shopify.ValidShopDomain(shopDomain) {
		msg := fmt.Sprintf("shop: value does not match regex '%s'", shopify.ShopDomainPattern)
		if shopDomain == "" {
			msg = "shop: required field"
		}
		api.ProxyResponse(w, http.StatusBadRequest, msg, map[string][]string{"shop": {strings.TrimPrefix(msg, "shop: ")}})
		return
	}

	state := strings.ReplaceAll(uuid.NewString(), "-", "")
	http.SetCookie(w, &http.Cookie{
		Name:     api.StateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.IsProd(),
	})

	http.Redirect(w, r, shopify.AuthorizeURL(
		shopDomain,
		h.Cfg.Shopify.APIKey,
		h.Cfg.Shopify.Scopes,
		h.redirectURI(r),
		state,
	), http.StatusFound)
}

// Callback runs behind the callback guard: it exchanges the code, records the
// granted scopes and sends the merchant into the embedded app.
func (h Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	rc := api.FromContext(r.Context())
	log := h.Logger.With().Str("shop", rc.StoreKey).Logger()

	token, err := h.Exchanger.ExchangeCodeForToken(r.Context(), rc.StoreKey, rc.Code)
	if err != nil {
		log.Error().Err(err).Msg("token exchange failed")
		h.Metrics.Install("exchange_failed")
		api.ProxyResponse(w, http.StatusInternalServerError, "Something went wrong while doing the OAuth!", nil)
		return
	}

	inst, err := h.Shopify.FetchInstallation(r.Context(), rc.StoreKey, token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("installation query failed")
		h.Metrics.Install("fetch_failed")
		msg := "Something went wrong while fetching shop data!"
		if errors.Is(err, shopify.ErrMissingInstallation) {
			msg = "Something went wrong while fetching installation data!"
		}
		api.ProxyResponse(w, http.StatusInternalServerError, msg, nil)
		return
	}

	if _, err := h.Stores.Upsert(r.Context(), rc.StoreKey, inst.Domain, token.AccessToken, strings.Join(inst.Scopes, ",")); err != nil {
		log.Error().Err(err).Msg("save store failed")
		h.Metrics.Install("save_failed")
		api.ProxyResponse(w, http.StatusInternalServerError, "Something went wrong while saving store data!", nil)
		return
	}

	if h.Cfg.PublicBaseURL != "" {
		if err := h.Shopify.RegisterWebhook(r.Context(), rc.StoreKey, token.AccessToken, "app/uninstalled", h.Cfg.PublicBaseURL+"/webhook/shop/redact"); err != nil {
			log.Warn().Err(err).Msg("webhook register app/uninstalled failed")
		}
	}

	// The state is single use.
	http.SetCookie(w, &http.Cookie{Name: api.StateCookie, Value: "", Path: "/", MaxAge: -1})

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), rc.StoreKey, audit.ActionInstalled, "shopify", map[string]any{"scopes": inst.Scopes}); err != nil {
			log.Warn().Err(err).Msg("audit install failed")
		}
	}

	h.Metrics.Install("installed")
	log.Info().Strs("scopes", inst.Scopes).Msg("store installed")
	http.Redirect(w, r, fmt.Sprintf("https://%s/admin/apps/%s", rc.StoreKey, h.Cfg.Shopify.APIKey), http.StatusFound)
}

// Index is the embedded app entry point. It answers with what the admin UI needs
// to boot: the api key, the App Bridge host and a fresh session token.
func (h Handlers) Index(w http.ResponseWriter, r *http.Request) {
	rc := api.FromContext(r.Context())

	storeID := h.Cfg.BypassValidate
	if storeID == 0 {
		s, err := h.Stores.FindByKey(r.Context(), rc.StoreKey)
		if errors.Is(err, store.ErrNotFound) {
			msg := fmt.Sprintf("%s not found in database! \nYou can install the app via this URL: \n%s",
				rc.StoreKey, api.InstallURL(h.Cfg.PublicBaseURL, r, rc.StoreKey))
			api.ProxyResponse(w, http.StatusNotFound, msg, nil)
			return
		}
		if err != nil {
			h.Logger.Error().Err(err).Str("shop", rc.StoreKey).Msg("store lookup failed")
			api.ProxyResponse(w, http.StatusInternalServerError, "store lookup failed", nil)
			return
		}
		storeID = s.ID
	}

	jwtToken, err := h.Tokens.Mint(storeID, rc.StoreKey)
	if err != nil {
		h.Logger.Error().Err(err).Msg("mint session token failed")
		api.ProxyResponse(w, http.StatusInternalServerError, "session token unavailable", nil)
		return
	}
	api.ProxyResponse(w, 0, "success", map[string]any{
		"apiKey":   h.Cfg.Shopify.APIKey,
		"host":     rc.Host,
		"storeId":  storeID,
		"jwtToken": jwtToken,
	})
}

func (h Handlers) redirectURI(r *http.Request) string {
	if h.Cfg.Shopify.RedirectURL != "" {
		return h.Cfg.Shopify.RedirectURL
	}
	if h.Cfg.PublicBaseURL != "" {
		return h.Cfg.PublicBaseURL + "/callback"
	}
	return "https://" + r.Host + "/callback"
}
