package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"shopkit/internal/api"
	"shopkit/internal/store"
	"shopkit/pkg/config"
)

type StoreByID interface {
	FindByID(ctx context.Context, id int64) (*store.Store, error)
}

// Handlers serve the JSON endpoints the embedded admin UI calls with its session token.
type Handlers struct {
	Cfg       config.Config
	Stores    StoreByID
	Responder api.Responder
	Logger    zerolog.Logger
}

func (h Handlers) TestJWT(w http.ResponseWriter, r *http.Request) {
	h.Responder.Admin(w, r, 0, "success", nil)
}

// Check answers /admin/check/{action}: "reinstall" returns the install link,
// "status" compares granted scopes with the configured ones.
func (h Handlers) Check(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action != "reinstall" && action != "status" {
		h.Responder.Admin(w, r, 0, "success", nil)
		return
	}

	rc := api.FromContext(r.Context())
	s, err := h.Stores.FindByID(r.Context(), rc.StoreID)
	if errors.Is(err, store.ErrNotFound) {
		h.Responder.Admin(w, r, http.StatusBadRequest, fmt.Sprintf("Store[%d] does not exist!", rc.StoreID), nil)
		return
	}
	if err != nil {
		h.Logger.Error().Err(err).Int64("store_id", rc.StoreID).Msg("store lookup failed")
		h.Responder.Admin(w, r, http.StatusInternalServerError, "store lookup failed", nil)
		return
	}

	if action == "reinstall" {
		h.Responder.Admin(w, r, 0, "success", api.InstallURL(h.Cfg.PublicBaseURL, r, s.Key))
		return
	}
	h.Responder.Admin(w, r, 0, "success", store.DiffScopes(s.ScopeList(), store.SplitScopes(h.Cfg.Shopify.Scopes)))
}
