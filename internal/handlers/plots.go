package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/stageplot/internal/plot"
)

// editPlot applies fn to the plot in the URL and responds with its new state
func (h *Handlers) editPlot(w http.ResponseWriter, r *http.Request, fn func(d *plot.Document) error) {
	id := chi.URLParam(r, "id")
	if err := h.Plots.Edit(r.Context(), id, fn); err != nil {
		respondError(w, err)
		return
	}
	h.respondPlot(w, r, id)
}

func (h *Handlers) respondPlot(w http.ResponseWriter, r *http.Request, id string) {
	view, err := h.Plots.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, toPlotResponse(view))
}

func (h *Handlers) handleListPlots(w http.ResponseWriter, r *http.Request) {
	plots, err := h.Plots.List(r.Context(), r.URL.Query().Get("band_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, plots)
}

func (h *Handlers) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Plots.ListTemplates(r.Context(), r.URL.Query().Get("band_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, templates)
}

func (h *Handlers) handleCreatePlot(w http.ResponseWriter, r *http.Request) {
	var req PlotCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Plots.Create(r.Context(), req.BandID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleGetPlot(w http.ResponseWriter, r *http.Request) {
	h.respondPlot(w, r, chi.URLParam(r, "id"))
}

func (h *Handlers) handleUpdatePlot(w http.ResponseWriter, r *http.Request) {
	var req PlotUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if req.StageWidth != nil || req.StageDepth != nil {
			width, depth := d.StageWidth(), d.StageDepth()
			if req.StageWidth != nil {
				width = *req.StageWidth
			}
			if req.StageDepth != nil {
				depth = *req.StageDepth
			}
			if err := d.SetStage(width, depth); err != nil {
				return err
			}
		}
		if req.Name != nil {
			d.SetName(*req.Name)
		}
		if req.RevisionDate != nil {
			d.SetRevisionDate(*req.RevisionDate)
		}
		return nil
	})
}

func (h *Handlers) handleDeletePlot(w http.ResponseWriter, r *http.Request) {
	if err := h.Plots.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleDuplicatePlot(w http.ResponseWriter, r *http.Request) {
	var req PlotCopyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Plots.Duplicate(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleSaveAsTemplate(w http.ResponseWriter, r *http.Request) {
	var req PlotCopyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Plots.SaveAsTemplate(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleCreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req PlotCopyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Plots.CreateFromTemplate(r.Context(), chi.URLParam(r, "id"), req.BandID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleUndo(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Plots.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, HistoryResponse{Applied: ok})
}

func (h *Handlers) handleRedo(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Plots.Redo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, HistoryResponse{Applied: ok})
}

func (h *Handlers) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := h.Plots.Flush(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Plot saved")
}

func (h *Handlers) handleAddPlotPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := parseIntParam(r, "personID")
	if err != nil {
		respondError(w, err)
		return
	}
	h.editPlot(w, r, func(d *plot.Document) error {
		d.AddPerson(personID)
		return nil
	})
}

func (h *Handlers) handleRemovePlotPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := parseIntParam(r, "personID")
	if err != nil {
		respondError(w, err)
		return
	}
	h.editPlot(w, r, func(d *plot.Document) error {
		d.RemovePerson(personID)
		return nil
	})
}

func (h *Handlers) handleSceneExport(w http.ResponseWriter, r *http.Request) {
	file, err := h.Plots.ExportScene(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Write([]byte(file.Content))
}
