package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.handleHealth)

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Auth (public)
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	// Shared plots (public, the payload never reaches the server in a link)
	r.Get("/s/{band}/{plot}", h.handleShareLink)
	r.Post("/api/share/decode", h.handleShareDecode)

	// Editor API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Middleware)

		// Plots
		r.Get("/api/plots", h.handleListPlots)
		r.Post("/api/plots", h.handleCreatePlot)
		r.Get("/api/templates", h.handleListTemplates)
		r.Post("/api/templates/{id}/plots", h.handleCreateFromTemplate)
		r.Post("/api/share/import", h.handleShareImport)

		r.Route("/api/plots/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetPlot)
			r.Patch("/", h.handleUpdatePlot)
			r.Delete("/", h.handleDeletePlot)
			r.Post("/duplicate", h.handleDuplicatePlot)
			r.Post("/template", h.handleSaveAsTemplate)
			r.Post("/undo", h.handleUndo)
			r.Post("/redo", h.handleRedo)
			r.Post("/flush", h.handleFlush)

			// Items
			r.Post("/items", h.handleAddItem)
			r.Post("/items/nudge", h.handleNudgeItems)
			r.Post("/items/reorder", h.handleReorderItems)
			r.Patch("/items/{itemID}", h.handleUpdateItem)
			r.Delete("/items/{itemID}", h.handleDeleteItem)
			r.Post("/items/{itemID}/duplicate", h.handleDuplicateItem)
			r.Post("/items/{itemID}/z", h.handleMoveZ)
			r.Post("/items/{itemID}/variant", h.handleSetVariant)

			// Input patch
			r.Get("/inputs", h.handleGetInputs)
			r.Put("/inputs/mode", h.handleSetInputMode)
			r.Put("/inputs/links", h.handleSetStereoLinks)
			r.Delete("/inputs", h.handleClearPatch)
			r.Put("/inputs/{ch}", h.handleAssignInput)
			r.Patch("/inputs/{ch}", h.handleUpdateInput)
			r.Delete("/inputs/{ch}", h.handleUnassignInput)

			// Outputs
			r.Put("/outputs/mode", h.handleSetOutputMode)
			r.Put("/outputs/links", h.handleSetOutputStereoLinks)
			r.Post("/outputs", h.handleAddOutput)
			r.Post("/outputs/defaults", h.handleAddDefaultOutputs)
			r.Put("/outputs/{ch}", h.handleAssignOutput)
			r.Delete("/outputs/{ch}", h.handleRemoveOutput)

			// Console
			r.Put("/console", h.handleSetConsole)

			// Persons
			r.Put("/persons/{personID}", h.handleAddPlotPerson)
			r.Delete("/persons/{personID}", h.handleRemovePlotPerson)

			// Export
			r.Get("/share", h.handleShareURL)
			r.Get("/share/qr", h.handleShareQR)
			r.Get("/scene", h.handleSceneExport)
		})

		// Bands and persons
		r.Get("/api/bands", h.handleListBands)
		r.Post("/api/bands", h.handleCreateBand)
		r.Delete("/api/bands/{id}", h.handleDeleteBand)
		r.Get("/api/bands/{id}/persons", h.handleListPersons)
		r.Post("/api/bands/{id}/persons", h.handleCreatePerson)
		r.Delete("/api/persons/{id}", h.handleDeletePerson)

		// Consoles and catalog
		r.Get("/api/consoles", h.handleListConsoles)
		r.Get("/api/catalog", h.handleGetCatalog)

		// Settings
		r.Get("/api/settings", h.handleGetSettings)
		r.Put("/api/settings", h.handleUpdateSettings)
		r.Post("/api/reset-database", h.handleResetDatabase)
	})

	return r
}
