package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/plot"
)

func channelNotFound(ch int) error {
	return apperrors.NotFoundf("channel %d not found", ch)
}

func (h *Handlers) handleGetInputs(w http.ResponseWriter, r *http.Request) {
	chs, err := h.Plots.Channels(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, chs)
}

func (h *Handlers) handleAssignInput(w http.ResponseWriter, r *http.Request) {
	ch, err := parseIntParam(r, "ch")
	if err != nil {
		respondError(w, err)
		return
	}
	var req InputAssignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if _, ok := d.Item(req.ItemID); !ok {
			return itemNotFound(req.ItemID)
		}
		if !d.PatchItem(req.ItemID, ch) {
			return apperrors.Validationf("channel %d is not available", ch)
		}
		return nil
	})
}

func (h *Handlers) handleUnassignInput(w http.ResponseWriter, r *http.Request) {
	ch, err := parseIntParam(r, "ch")
	if err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if !d.UnpatchChannel(ch) {
			return channelNotFound(ch)
		}
		return nil
	})
}

func (h *Handlers) handleClearPatch(w http.ResponseWriter, r *http.Request) {
	h.editPlot(w, r, func(d *plot.Document) error {
		d.ClearAllPatch()
		return nil
	})
}

func (h *Handlers) handleUpdateInput(w http.ResponseWriter, r *http.Request) {
	ch, err := parseIntParam(r, "ch")
	if err != nil {
		respondError(w, err)
		return
	}
	var req InputUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if ch < 1 || ch > d.InputChannelMode() {
			return channelNotFound(ch)
		}
		if req.Name != nil {
			d.SetChannelName(ch, *req.Name)
		}
		if req.ShortName != nil {
			d.SetChannelShortName(ch, *req.ShortName)
		}
		if req.Color != nil {
			d.SetChannelColor(ch, *req.Color)
		}
		if req.Phantom != nil {
			d.SetPhantom(ch, *req.Phantom)
		}
		return nil
	})
}

func (h *Handlers) handleSetInputMode(w http.ResponseWriter, r *http.Request) {
	var req ChannelModeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	h.editPlot(w, r, func(d *plot.Document) error {
		return d.SetInputChannelMode(req.Channels)
	})
}

func (h *Handlers) handleSetOutputMode(w http.ResponseWriter, r *http.Request) {
	var req ChannelModeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	h.editPlot(w, r, func(d *plot.Document) error {
		return d.SetOutputChannelMode(req.Channels)
	})
}

func (h *Handlers) handleSetStereoLinks(w http.ResponseWriter, r *http.Request) {
	var req StereoLinksRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	h.editPlot(w, r, func(d *plot.Document) error {
		d.SetStereoLinks(req.Links)
		return nil
	})
}

func (h *Handlers) handleSetOutputStereoLinks(w http.ResponseWriter, r *http.Request) {
	var req StereoLinksRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	h.editPlot(w, r, func(d *plot.Document) error {
		d.SetOutputStereoLinks(req.Links)
		return nil
	})
}

func (h *Handlers) handleSetConsole(w http.ResponseWriter, r *http.Request) {
	var req ConsoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	h.editPlot(w, r, func(d *plot.Document) error {
		return d.SetConsoleType(req.ConsoleType)
	})
}

func (h *Handlers) handleAddOutput(w http.ResponseWriter, r *http.Request) {
	var req OutputCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Output.Name == "" {
		respondError(w, BadRequest("Output name is required"))
		return
	}

	var added models.Output
	err := h.Plots.Edit(r.Context(), chi.URLParam(r, "id"), func(d *plot.Document) error {
		ch := req.Channel
		if ch == 0 {
			var ok bool
			if ch, ok = d.NextAvailableOutput(); !ok {
				return apperrors.Conflictf("no free output channel")
			}
		}
		var err error
		added, err = d.AddOutput(req.Output, ch)
		return err
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, added)
}

func (h *Handlers) handleAddDefaultOutputs(w http.ResponseWriter, r *http.Request) {
	var req DefaultOutputsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ItemData == nil {
		respondError(w, BadRequest("itemData is required"))
		return
	}

	var added []models.Output
	err := h.Plots.Edit(r.Context(), chi.URLParam(r, "id"), func(d *plot.Document) error {
		added = d.AddDefaultOutputs(req.ItemData)
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	if added == nil {
		added = []models.Output{}
	}
	respondOK(w, added)
}

func (h *Handlers) handleAssignOutput(w http.ResponseWriter, r *http.Request) {
	ch, err := parseIntParam(r, "ch")
	if err != nil {
		respondError(w, err)
		return
	}
	var req OutputAssignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if !d.AssignOutput(req.OutputID, ch) {
			return apperrors.Validationf("cannot assign output %d to channel %d", req.OutputID, ch)
		}
		return nil
	})
}

func (h *Handlers) handleRemoveOutput(w http.ResponseWriter, r *http.Request) {
	ch, err := parseIntParam(r, "ch")
	if err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if !d.RemoveOutputChannel(ch) {
			return channelNotFound(ch)
		}
		return nil
	})
}
