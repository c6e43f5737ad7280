package handler

import (
	"net/http"

	"github.com/tarek/provision/internal/api/response"
	"github.com/tarek/provision/internal/core"
)

// Catalog exposes the provider's offering lists so request forms and review
// screens can show live choices. An optional project_id query parameter
// selects which project's provider token is used.
type Catalog struct {
	svc *core.CatalogService
}

func NewCatalog(svc *core.CatalogService) *Catalog {
	return &Catalog{svc: svc}
}

func projectIDParam(r *http.Request) *string {
	if id := r.URL.Query().Get("project_id"); id != "" {
		return &id
	}
	return nil
}

func (h *Catalog) Images(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.Images(r.Context(), projectIDParam(r))
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, images)
}

func (h *Catalog) ServerTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ServerTypes(r.Context(), projectIDParam(r))
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, types)
}

func (h *Catalog) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.svc.Locations(r.Context(), projectIDParam(r))
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, locations)
}
