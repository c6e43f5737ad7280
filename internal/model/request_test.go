package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForUsage(t *testing.T) {
	assert.Equal(t, "cx11", TierForUsage(UsageMicro))
	assert.Equal(t, "cx21", TierForUsage(UsageLow))
	assert.Equal(t, "cx31", TierForUsage(UsageMedium))
	assert.Equal(t, "cx41", TierForUsage(UsageHigh))
}

func TestTierForUsage_UnknownDefaultsToLow(t *testing.T) {
	assert.Equal(t, "cx21", TierForUsage("colossal"))
}

func TestIsTerminalRequestStatus(t *testing.T) {
	assert.True(t, IsTerminalRequestStatus(RequestStatusDeployed))
	assert.True(t, IsTerminalRequestStatus(RequestStatusRejected))
	assert.False(t, IsTerminalRequestStatus(RequestStatusPending))
	assert.False(t, IsTerminalRequestStatus(RequestStatusApproved))
	assert.False(t, IsTerminalRequestStatus(RequestStatusDeploying))
	assert.False(t, IsTerminalRequestStatus(RequestStatusFailed))
}
