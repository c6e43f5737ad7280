package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tarek/provision/internal/api/request"
	"github.com/tarek/provision/internal/api/response"
	"github.com/tarek/provision/internal/core"
)

type Server struct {
	svc *core.ServerService
	ops *core.OperationService
}

func NewServer(svc *core.ServerService, ops *core.OperationService) *Server {
	return &Server{svc: svc, ops: ops}
}

func (h *Server) List(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListParams(r, "created_at")

	servers, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(servers) > 0 {
		nextCursor = servers[len(servers)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, servers, nextCursor, hasMore)
}

func (h *Server) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	server, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, server)
}

// RegisterSelfHosted records a machine that was not provisioned through a
// cloud provider. It becomes visible to operations and connection tests but
// is skipped by reconciliation.
func (h *Server) RegisterSelfHosted(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterSelfHostedServer
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	server, err := h.svc.RegisterSelfHosted(r.Context(), req)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, server)
}

func (h *Server) Power(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.PowerAction
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.PowerAction(r.Context(), id, req.Action); err != nil {
		response.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "power action started"})
}

// TestConnection opens an SSH session to the server and reports the outcome
// inline. An unreachable server is a negative result, not an error.
func (h *Server) TestConnection(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.TestConnection(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}

func (h *Server) RunOperation(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.RunOperation
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.ops.Run(r.Context(), id, req)
	if err != nil {
		response.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusAccepted, op)
}

func (h *Server) ListOperations(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := request.ParseListParams(r, "started_at")

	ops, hasMore, err := h.ops.ListByServer(r.Context(), id, params)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(ops) > 0 {
		nextCursor = ops[len(ops)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, ops, nextCursor, hasMore)
}
