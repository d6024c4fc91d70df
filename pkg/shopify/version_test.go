package shopify

import (
	"testing"
	"time"
)

func TestResolveAPIVersion(t *testing.T) {
	now := time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"":         "2025-07",
		"2025-04":  "2025-04",
		"2025-10":  "2025-07",
		"2024-07":  "2024-07",
		"2024-04":  "2025-07",
		"unstable": "unstable",
		"garbage":  "2025-07",
	}
	for in, want := range cases {
		if got := ResolveAPIVersion(in, now); got != want {
			t.Fatalf("ResolveAPIVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
