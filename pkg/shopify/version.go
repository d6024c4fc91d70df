package shopify

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResolveAPIVersion clamps a YYYY-MM version to the latest quarterly release at now,
// and replaces versions more than a year old with that release. An empty version
// resolves to the latest release; "unstable" is passed through.
func ResolveAPIVersion(version string, now time.Time) string {
	if version == "unstable" {
		return version
	}

	month := int(now.Month())
	for _, m := range []int{10, 7, 4, 1} {
		if month >= m {
			month = m
			break
		}
	}
	latest := now.Year()*100 + month

	v, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(version), "-", ""))
	if err != nil || v > latest || latest-100 > v {
		v = latest
	}
	return fmt.Sprintf("%04d-%02d", v/100, v%100)
}
