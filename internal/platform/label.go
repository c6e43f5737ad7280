package platform

import "strings"

// maxLabelLength matches the cloud provider's label value limit.
const maxLabelLength = 63

// SanitizeLabel lowercases a free-form value and strips everything except
// alphanumerics, '-' and '_', truncating to the provider's 63-char limit.
// Spaces become hyphens so "Acme Corp" stays readable as "acme-corp".
func SanitizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}

	s := b.String()
	if len(s) > maxLabelLength {
		s = s[:maxLabelLength]
	}
	return strings.Trim(s, "-_")
}

// SuggestSubdomain derives a DNS-safe subdomain from a client name.
// Underscores are not valid in hostnames, so they become hyphens.
func SuggestSubdomain(clientName string) string {
	return strings.ReplaceAll(SanitizeLabel(clientName), "_", "-")
}

// FullDomain joins a subdomain and base domain, e.g. ("acme", "example.com")
// -> "acme.example.com".
func FullDomain(subdomain, baseDomain string) string {
	return subdomain + "." + baseDomain
}
