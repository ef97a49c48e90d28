// Package utm builds campaign-tracking URLs. Composition is purely additive:
// whatever query string the base URL already carries is left untouched.
package utm

import (
	"net/url"
	"strings"
)

// UTM parameter keys in their emission order. Analytics tools don't care
// about the order, humans reading the links do.
var paramKeys = []string{"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term"}

// Normalize applies the house tagging convention to a parameter value:
// lowercase, outer whitespace trimmed, interior spaces turned into hyphens.
// Normalize is idempotent.
func Normalize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), " ", "-")
}

// Compose attaches UTM parameters to baseURL. Empty values are skipped,
// non-empty values are normalized and query-escaped. An empty baseURL
// yields an empty result; if every value is empty the baseURL is returned
// unchanged. Compose never fails.
func Compose(baseURL, source, medium, campaign, content, term string) string {
	if baseURL == "" {
		return ""
	}

	values := []string{source, medium, campaign, content, term}

	var pairs []string
	for i, v := range values {
		if v == "" {
			continue
		}
		pairs = append(pairs, paramKeys[i]+"="+url.QueryEscape(Normalize(v)))
	}

	if len(pairs) == 0 {
		return baseURL
	}

	separator := "?"
	if strings.Contains(baseURL, "?") {
		separator = "&"
	}

	return baseURL + separator + strings.Join(pairs, "&")
}
