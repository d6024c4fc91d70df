package store

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("store not found")

// Store is one installation of the app, keyed by the shop's myshopify domain.
type Store struct {
	ID        int64
	Key       string
	Domain    string
	Scopes    string
	Token     string
	Extra     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScopeList splits the comma separated scopes, lower-cased.
func (s *Store) ScopeList() []string {
	return SplitScopes(s.Scopes)
}

// ExtraMap decodes the extra blob; an empty or invalid blob yields an empty map.
func (s *Store) ExtraMap() map[string]any {
	out := map[string]any{}
	if len(s.Extra) > 0 {
		_ = json.Unmarshal(s.Extra, &out)
	}
	return out
}

// MergeExtra overlays data on the extra blob.
func (s *Store) MergeExtra(data map[string]any) error {
	extra := s.ExtraMap()
	for k, v := range data {
		extra[k] = v
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return err
	}
	s.Extra = b
	return nil
}

func SplitScopes(csv string) []string {
	var out []string
	for _, s := range strings.Split(strings.ToLower(csv), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ScopeDiff compares granted scopes with the configured ones.
type ScopeDiff struct {
	Removes []string `json:"removes"`
	Adds    []string `json:"adds"`
	Change  bool     `json:"change"`
}

func DiffScopes(granted, wanted []string) ScopeDiff {
	d := ScopeDiff{Removes: []string{}, Adds: []string{}}
	for _, g := range granted {
		if !contains(wanted, g) {
			d.Removes = append(d.Removes, g)
		}
	}
	for _, w := range wanted {
		if !contains(granted, w) {
			d.Adds = append(d.Adds, w)
		}
	}
	d.Change = len(d.Removes) != 0 || len(d.Adds) != 0
	return d
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
