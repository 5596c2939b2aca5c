package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/stageplot/internal/models"
)

func (h *Handlers) handleListBands(w http.ResponseWriter, r *http.Request) {
	bands, err := h.Bands.ListBands(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, bands)
}

func (h *Handlers) handleCreateBand(w http.ResponseWriter, r *http.Request) {
	var req BandCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Bands.CreateBand(r.Context(), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleDeleteBand(w http.ResponseWriter, r *http.Request) {
	if err := h.Bands.DeleteBand(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Bands.ListPersons(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, persons)
}

func (h *Handlers) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var p models.Person
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, err)
		return
	}
	p.BandID = chi.URLParam(r, "id")

	id, err := h.Bands.CreatePerson(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, PersonIDResponse{ID: id})
}

func (h *Handlers) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Bands.DeletePerson(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}
