package shopify

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalQuery builds the message Shopify signs for admin loads and OAuth callbacks.
// The hmac parameter is excluded; every other value is emitted as its own key=value pair.
func CanonicalQuery(params url.Values) string {
	var pairs []string
	for k, vs := range params {
		if k == "hmac" {
			continue
		}
		key := strings.ReplaceAll(strings.ReplaceAll(k, "%", "%25"), "=", "%3D")
		for _, v := range vs {
			pair := key + "=" + strings.ReplaceAll(v, "%", "%25")
			pairs = append(pairs, strings.ReplaceAll(pair, "&", "%26"))
		}
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// CanonicalProxyQuery builds the message Shopify signs for app proxy requests.
// Unlike CanonicalQuery nothing is escaped, repeated keys are joined with commas
// and pairs are concatenated without a separator.
func CanonicalProxyQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[k], ","))
	}
	return b.String()
}
