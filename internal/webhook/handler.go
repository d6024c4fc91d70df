package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shopkit/internal/api"
	"shopkit/internal/audit"
	"shopkit/internal/metrics"
	"shopkit/internal/store"
)

const (
	TopicShopRedact           = "shop_redact"
	TopicCustomersRedact      = "customers_redact"
	TopicCustomersDataRequest = "customers_data_request"
)

type Stores interface {
	FindByKey(ctx context.Context, key string) (*store.Store, error)
	SaveExtra(ctx context.Context, s *store.Store) error
}

type Auditor interface {
	Record(ctx context.Context, storeKey, action, actor string, metadata any) error
}

var auditActions = map[string]string{
	TopicShopRedact:           audit.ActionShopRedacted,
	TopicCustomersRedact:      audit.ActionCustomerRedact,
	TopicCustomersDataRequest: audit.ActionCustomerRequest,
}

// GDPRHandler answers the mandatory privacy webhooks. It runs behind the webhook guard.
type GDPRHandler struct {
	Stores  Stores
	Dedupe  Deduper
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	Audit   Auditor
	Now     func() time.Time
}

func (h GDPRHandler) ShopRedact(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, TopicShopRedact)
}

func (h GDPRHandler) CustomersRedact(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, TopicCustomersRedact)
}

func (h GDPRHandler) CustomersDataRequest(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, TopicCustomersDataRequest)
}

func (h GDPRHandler) handle(w http.ResponseWriter, r *http.Request, route string) {
	topic := NormalizeTopic(r.Header.Get("X-Shopify-Topic"))
	if topic == "" {
		topic = route
	}
	rc := api.FromContext(r.Context())
	log := h.Logger.With().Str("topic", topic).Str("shop", rc.StoreKey).Logger()

	deliveryID := strings.TrimSpace(r.Header.Get("X-Shopify-Webhook-Id"))
	if h.Dedupe != nil {
		first, err := h.Dedupe.First(r.Context(), deliveryID)
		if err != nil {
			log.Warn().Err(err).Msg("webhook dedupe unavailable")
		} else if !first {
			h.Metrics.Webhook(topic, "duplicate")
			writeSuccess(w)
			return
		}
	}

	body, _ := io.ReadAll(r.Body)
	var payload map[string]any
	_ = json.Unmarshal(body, &payload)
	log.Info().Interface("payload", payload).Msg("gdpr webhook")

	if route == TopicShopRedact && rc.StoreKey != "" && h.Stores != nil {
		if err := h.markRedacted(r.Context(), rc.StoreKey); err != nil {
			log.Error().Err(err).Msg("mark store redacted failed")
		}
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), rc.StoreKey, auditActions[route], "shopify", payload); err != nil {
			log.Error().Err(err).Msg("audit gdpr webhook failed")
		}
	}

	h.Metrics.Webhook(topic, "ok")
	writeSuccess(w)
}

func (h GDPRHandler) markRedacted(ctx context.Context, key string) error {
	s, err := h.Stores.FindByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := s.MergeExtra(map[string]any{"redacted_at": now.UTC().Format(time.RFC3339)}); err != nil {
		return err
	}
	return h.Stores.SaveExtra(ctx, s)
}

func writeSuccess(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("success"))
}
