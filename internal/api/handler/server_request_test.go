package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServerRequestHandler() *ServerRequest {
	return NewServerRequest(nil)
}

// --- Submit ---

func TestServerRequestSubmit_InvalidJSON(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/requests", "{bad json")

	h.Submit(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestServerRequestSubmit_MissingRequiredFields(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/requests", map[string]any{})

	h.Submit(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestServerRequestSubmit_UnknownUsageClass(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/requests", map[string]any{
		"requester_id":    "user-1",
		"client_name":     "Acme GmbH",
		"server_name":     "acme-prod",
		"estimated_usage": "gigantic",
	})

	h.Submit(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestServerRequestSubmit_UnknownPriority(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/requests", map[string]any{
		"requester_id":    "user-1",
		"client_name":     "Acme GmbH",
		"server_name":     "acme-prod",
		"estimated_usage": "low",
		"priority":        "asap",
	})

	h.Submit(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestServerRequestSubmit_ValidBody(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/requests", map[string]any{
		"requester_id":    "user-1",
		"client_name":     "Acme GmbH",
		"server_name":     "acme-prod",
		"subdomain":       "acme",
		"estimated_usage": "medium",
		"justification":   "new client onboarding",
	})

	func() {
		defer func() { recover() }()
		h.Submit(rec, r)
	}()

	assert.NotEqual(t, http.StatusBadRequest, rec.Code)
}

// --- Get / Status ---

func TestServerRequestGet_EmptyID(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/requests/", nil)
	r = withChiURLParam(r, "id", "")

	h.Get(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

func TestServerRequestStatus_EmptyID(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/requests//status", nil)
	r = withChiURLParam(r, "id", "")

	h.Status(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Approve / Reject ---

func TestServerRequestApprove_EmptyID(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/requests//approve", map[string]any{
		"reviewer_id": "admin-1",
	})
	r = withChiURLParam(r, "id", "")

	h.Approve(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

func TestServerRequestApprove_MissingReviewer(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/requests/"+validID+"/approve", map[string]any{})
	r = withChiURLParam(r, "id", validID)

	h.Approve(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestServerRequestReject_InvalidJSON(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/requests/"+validID+"/reject", "{bad")
	r = withChiURLParam(r, "id", validID)

	h.Reject(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

// --- Error response format ---

func TestServerRequestSubmit_ErrorResponseFormat(t *testing.T) {
	h := newServerRequestHandler()
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/requests", "{bad")

	h.Submit(rec, r)

	var body map[string]any
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	_, hasError := body["error"]
	assert.True(t, hasError)
}
