package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDNSPtr_NoCandidates(t *testing.T) {
	assert.Nil(t, NormalizeDNSPtr())
}

func TestNormalizeDNSPtr_AllEmpty(t *testing.T) {
	assert.Nil(t, NormalizeDNSPtr("", "  ", ""))
}

func TestNormalizeDNSPtr_FirstNonEmptyWins(t *testing.T) {
	ptr := NormalizeDNSPtr("", "host.example.com", "other.example.com")
	require.NotNil(t, ptr)
	assert.Equal(t, "host.example.com", *ptr)
}

func TestNormalizeDNSPtr_TrimsWhitespace(t *testing.T) {
	ptr := NormalizeDNSPtr(" host.example.com ")
	require.NotNil(t, ptr)
	assert.Equal(t, "host.example.com", *ptr)
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"running":      "running",
		"off":          "stopped",
		"initializing": "starting",
		"starting":     "starting",
		"stopping":     "stopping",
		"rebooting":    "rebooting",
		"rebuilding":   "rebuilding",
		"migrating":    "migrating",
		"deleting":     "unknown",
		"":             "unknown",
		"weird":        "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeStatus(in), "status %q", in)
	}
}
