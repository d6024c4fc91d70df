package webhook

import "strings"

// NormalizeTopic turns an X-Shopify-Topic value such as "customers/data_request"
// into the metric and log form "customers_data_request".
func NormalizeTopic(topic string) string {
	t := strings.ToLower(strings.TrimSpace(topic))
	t = strings.NewReplacer("/", "_", ".", "_", "-", "_").Replace(t)
	for strings.Contains(t, "__") {
		t = strings.ReplaceAll(t, "__", "_")
	}
	return strings.Trim(t, "_")
}
