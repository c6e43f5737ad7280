package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tarek/provision/internal/api/request"
	"github.com/tarek/provision/internal/api/response"
	"github.com/tarek/provision/internal/core"
)

type Operation struct {
	svc *core.OperationService
}

func NewOperation(svc *core.OperationService) *Operation {
	return &Operation{svc: svc}
}

func (h *Operation) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, op)
}

// Log serves the captured stdout and stderr of an operation as plain text,
// suitable for saving from a browser.
func (h *Operation) Log(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", op.Kind+"_"+op.ID+".log"))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, op.StdoutLog)
	if op.ErrorLog != "" {
		io.WriteString(w, "\n--- stderr ---\n")
		io.WriteString(w, op.ErrorLog)
	}
}
