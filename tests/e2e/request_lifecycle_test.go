package e2e

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRequestLifecycle submits a request, approves it and waits for the
// server to come up. Needs a worker with a valid cloud token; the created
// server stays behind for manual inspection.
func TestRequestLifecycle(t *testing.T) {
	name := fmt.Sprintf("e2e-%d", time.Now().Unix())

	var created map[string]any
	code := doJSON(t, http.MethodPost, "/requests", map[string]any{
		"requester_id":    "e2e-user",
		"client_name":     "E2E Test Client",
		"server_name":     name,
		"estimated_usage": "micro",
		"justification":   "e2e lifecycle test",
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	requestID := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "cx11", created["server_type"])

	var approved map[string]any
	code = doJSON(t, http.MethodPost, "/requests/"+requestID+"/approve", map[string]any{
		"reviewer_id": "e2e-admin",
	}, &approved)
	require.Equal(t, http.StatusAccepted, code)

	status := waitForStatus(t, requestID, "deployed", 10*time.Minute)
	assert.EqualValues(t, 100, status["progress"])
	assert.NotEmpty(t, status["server_ip"])
}

func TestRequestReject(t *testing.T) {
	var created map[string]any
	code := doJSON(t, http.MethodPost, "/requests", map[string]any{
		"requester_id":    "e2e-user",
		"client_name":     "E2E Reject Client",
		"server_name":     fmt.Sprintf("e2e-rej-%d", time.Now().Unix()),
		"estimated_usage": "low",
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	requestID := created["id"].(string)

	var rejected map[string]any
	code = doJSON(t, http.MethodPost, "/requests/"+requestID+"/reject", map[string]any{
		"reviewer_id": "e2e-admin",
		"note":        "not needed",
	}, &rejected)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "rejected", rejected["status"])

	// A rejected request is terminal: approval must bounce.
	code = doJSON(t, http.MethodPost, "/requests/"+requestID+"/approve", map[string]any{
		"reviewer_id": "e2e-admin",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestHealthEndpoints(t *testing.T) {
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(apiURL[:len(apiURL)-len("/api/v1")] + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
