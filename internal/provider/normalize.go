package provider

import "strings"

// NormalizeDNSPtr collapses the provider's ad-hoc reverse-DNS shapes
// (absent field, empty string, list of candidates) into a single optional
// value: the first non-empty entry, or nil when the machine has no PTR
// record at all. Nothing past the provider adapter ever sees the raw shape.
func NormalizeDNSPtr(candidates ...string) *string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" {
			return &c
		}
	}
	return nil
}

// NormalizeStatus maps provider status strings onto the fixed local
// lifecycle vocabulary. Anything unrecognized is "unknown" rather than an
// error; the next sync corrects it once the machine settles.
func NormalizeStatus(providerStatus string) string {
	switch providerStatus {
	case "running":
		return "running"
	case "off":
		return "stopped"
	case "initializing", "starting":
		return "starting"
	case "stopping":
		return "stopping"
	case "rebooting":
		return "rebooting"
	case "rebuilding":
		return "rebuilding"
	case "migrating":
		return "migrating"
	default:
		return "unknown"
	}
}
