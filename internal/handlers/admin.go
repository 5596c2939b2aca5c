package handlers

import (
	"net/http"

	"github.com/abrezinsky/stageplot/internal/consoles"
	"github.com/abrezinsky/stageplot/internal/services"
)

// ==================== Reference Data ====================

func (h *Handlers) handleListConsoles(w http.ResponseWriter, r *http.Request) {
	list := make([]consoles.Console, 0)
	for _, id := range consoles.IDs() {
		c, _ := consoles.Get(id)
		list = append(list, c)
	}
	respondOK(w, list)
}

func (h *Handlers) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	entries, _, err := h.Share.Catalog(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, entries)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	baseURL, _ := h.Settings.GetShareBaseURL(ctx)
	console, _ := h.Settings.GetDefaultConsole(ctx)
	debounce, _ := h.Settings.GetWriteDebounce(ctx)

	respondOK(w, SettingsResponse{
		ShareBaseURL:    baseURL,
		DefaultConsole:  console,
		WriteDebounceMS: debounce.Milliseconds(),
	})
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	settings := services.Settings{
		ShareBaseURL:    req.ShareBaseURL,
		DefaultConsole:  req.DefaultConsole,
		WriteDebounceMS: req.WriteDebounceMS,
	}
	if err := h.Settings.UpdateSettings(r.Context(), settings); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Settings updated")
}

// ==================== Database Management ====================

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ResetResponse{Message: result.Message, Tables: result.Tables})
}
