package shopify

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"time"
)

// Granularity selects how long an internal hash token stays valid.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

const (
	hashDigestLen = 64
	hashSuffixLen = 11
	hashTimeLen   = 10
	hashLayout    = "2006010215"
)

var (
	ErrHashTokenInvalid = errors.New("invalid hash token")
	ErrHashTokenExpired = errors.New("hash token expired")
)

// HashTokens mints and verifies {hex digest}{YYYYMMDDHH}{tag} tokens that authorize
// internal endpoints without server-side storage.
type HashTokens struct {
	Secret   string
	Location *time.Location
	Now      func() time.Time
}

func (h HashTokens) now() time.Time {
	t := time.Now()
	if h.Now != nil {
		t = h.Now()
	}
	if h.Location != nil {
		t = t.In(h.Location)
	}
	return t
}

func (h HashTokens) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

// ParseGranularity accepts hourly, daily or monthly.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Hourly, Daily, Monthly:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

func timeSuffix(t time.Time, g Granularity) (string, error) {
	switch g {
	case Hourly:
		return t.Format(hashLayout) + "H", nil
	case Daily:
		return t.Format("20060102") + "00D", nil
	case Monthly:
		return t.Format("200601") + "0100M", nil
	}
	return "", fmt.Errorf("unknown granularity %q", g)
}

// Mint returns a token bound to subject for the current time window.
func (h HashTokens) Mint(subject string, g Granularity) (string, error) {
	if h.Secret == "" {
		return "", fmt.Errorf("missing api secret")
	}
	suffix, err := timeSuffix(h.now(), g)
	if err != nil {
		return "", err
	}
	return hexHMAC(h.Secret, []byte(subject+suffix)) + suffix, nil
}

// Verify checks the signature against subject and that the embedded time is
// not in the future and still inside its granularity window.
func (h HashTokens) Verify(token, subject string) error {
	if len(token) != hashDigestLen+hashSuffixLen || h.Secret == "" {
		return ErrHashTokenInvalid
	}
	sig, suffix := token[:hashDigestLen], token[hashDigestLen:]
	expected := hexHMAC(h.Secret, []byte(subject+suffix))
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrHashTokenInvalid
	}

	issued, err := time.ParseInLocation(hashLayout, suffix[:hashTimeLen], h.location())
	if err != nil {
		return ErrHashTokenInvalid
	}
	elapsed := h.now().Sub(issued)
	if elapsed < 0 {
		return ErrHashTokenExpired
	}

	switch suffix[hashTimeLen] {
	case 'H':
		if elapsed >= time.Hour {
			return ErrHashTokenExpired
		}
	case 'D':
		if elapsed > 24*time.Hour {
			return ErrHashTokenExpired
		}
	case 'M':
		if elapsed > 30*24*time.Hour {
			return ErrHashTokenExpired
		}
	default:
		return ErrHashTokenInvalid
	}
	return nil
}
