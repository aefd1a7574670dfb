package swishpay

import (
	"strings"
)

// NormalizePayerAlias strips non-digits from a shopper-entered Swish number
// and rewrites it to international form: a leading national zero becomes the
// 46 country prefix, and a doubled "460" prefix collapses to "46". The
// normalized number must be 8 to 15 digits.
func NormalizePayerAlias(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	alias := b.String()

	if alias == "" {
		return "", &ConfigurationError{Reason: "Swish number missing"}
	}
	if alias[0] == '0' {
		alias = "46" + alias[1:]
	}
	if strings.HasPrefix(alias, "460") {
		alias = "46" + alias[3:]
	}
	if len(alias) < 8 {
		return "", &ConfigurationError{Reason: "Swish number must be at least 8 digits long"}
	}
	if len(alias) > 15 {
		return "", &ConfigurationError{Reason: "Swish number can be at most 15 digits long"}
	}
	return alias, nil
}
