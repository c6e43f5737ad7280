package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tarek/provision/internal/api/request"
	"github.com/tarek/provision/internal/api/response"
	"github.com/tarek/provision/internal/core"
)

type ServerRequest struct {
	svc *core.RequestService
}

func NewServerRequest(svc *core.RequestService) *ServerRequest {
	return &ServerRequest{svc: svc}
}

func (h *ServerRequest) List(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListParams(r, "requested_at")

	requests, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(requests) > 0 {
		nextCursor = requests[len(requests)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, requests, nextCursor, hasMore)
}

func (h *ServerRequest) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitServerRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sr, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, sr)
}

func (h *ServerRequest) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sr, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, sr)
}

// Status returns the deployment state of a request in a compact form suited
// to polling.
func (h *ServerRequest) Status(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sr, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	status := map[string]any{
		"id":       sr.ID,
		"status":   sr.Status,
		"progress": sr.DeploymentProgress,
	}
	if sr.ServerIP != nil {
		status["server_ip"] = *sr.ServerIP
	}
	if sr.DeploymentNotes != nil {
		status["deployment_notes"] = *sr.DeploymentNotes
	}
	response.WriteJSON(w, http.StatusOK, status)
}

func (h *ServerRequest) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.ReviewServerRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sr, err := h.svc.Approve(r.Context(), id, req)
	if err != nil {
		response.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusAccepted, sr)
}

func (h *ServerRequest) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.ReviewServerRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sr, err := h.svc.Reject(r.Context(), id, req)
	if err != nil {
		response.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, sr)
}
