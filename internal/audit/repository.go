package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionInstalled       = "store.installed"
	ActionShopRedacted    = "gdpr.shop_redact"
	ActionCustomerRedact  = "gdpr.customers_redact"
	ActionCustomerRequest = "gdpr.customers_data_request"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record appends one row to audit_logs. metadata is stored as jsonb.
func (r *Repository) Record(ctx context.Context, storeKey, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("audit metadata: %w", err)
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (store_key, action, actor, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	if _, err := r.db.Exec(ctx, q, storeKey, action, actor, s); err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}
