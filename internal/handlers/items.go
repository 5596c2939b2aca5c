package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/plot"
)

func itemNotFound(id int) error {
	return apperrors.NotFoundf("item %d not found", id)
}

func (h *Handlers) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req ItemCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Type == "" {
		respondError(w, BadRequest("Item type is required"))
		return
	}

	var added models.Item
	err := h.Plots.Edit(r.Context(), chi.URLParam(r, "id"), func(d *plot.Document) error {
		if req.Channel > d.InputChannelMode() {
			return apperrors.Validationf("channel %d is out of range 1-%d", req.Channel, d.InputChannelMode())
		}
		added = d.AddItem(models.Item{
			Name:           req.Name,
			Type:           req.Type,
			Category:       req.Category,
			CurrentVariant: req.CurrentVariant,
			Position:       req.Position,
			PersonID:       req.PersonID,
			ItemData:       req.ItemData,
		})
		if req.Channel > 0 && !d.PatchItem(added.ID, req.Channel) {
			return apperrors.Validationf("channel %d is not available", req.Channel)
		}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, added)
}

func (h *Handlers) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIntParam(r, "itemID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ItemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		return d.UpdateItemProperty(itemID, req.Property, req.Value)
	})
}

func (h *Handlers) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIntParam(r, "itemID")
	if err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if !d.DeleteItem(itemID) {
			return itemNotFound(itemID)
		}
		return nil
	})
}

func (h *Handlers) handleDuplicateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIntParam(r, "itemID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ItemDuplicateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var dup models.Item
	err = h.Plots.Edit(r.Context(), chi.URLParam(r, "id"), func(d *plot.Document) error {
		var ok bool
		if dup, ok = d.DuplicateItem(itemID, req.DX, req.DY); !ok {
			return itemNotFound(itemID)
		}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, dup)
}

func (h *Handlers) handleNudgeItems(w http.ResponseWriter, r *http.Request) {
	var req NudgeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		d.NudgeItems(req.IDs, req.DX, req.DY)
		return nil
	})
}

func (h *Handlers) handleReorderItems(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if !d.ReorderItems(req.From, req.To) {
			return apperrors.Validationf("cannot move item from %d to %d", req.From, req.To)
		}
		return nil
	})
}

func (h *Handlers) handleMoveZ(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIntParam(r, "itemID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req MoveZRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	switch req.Direction {
	case plot.ZFront, plot.ZBack, plot.ZForward, plot.ZBackward:
	default:
		respondError(w, BadRequest("Invalid direction: "+req.Direction))
		return
	}

	// Already at the edge is not an error
	h.editPlot(w, r, func(d *plot.Document) error {
		if _, ok := d.Item(itemID); !ok {
			return itemNotFound(itemID)
		}
		d.MoveZ(itemID, req.Direction)
		return nil
	})
}

func (h *Handlers) handleSetVariant(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIntParam(r, "itemID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req VariantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	h.editPlot(w, r, func(d *plot.Document) error {
		if _, ok := d.Item(itemID); !ok {
			return itemNotFound(itemID)
		}
		if req.Key != "" {
			if !d.SetVariant(itemID, req.Key) {
				return apperrors.Validationf("item %d has no variant %q", itemID, req.Key)
			}
			return nil
		}
		step := req.Step
		if step == 0 {
			step = 1
		}
		d.RotateVariant(itemID, step)
		return nil
	})
}
