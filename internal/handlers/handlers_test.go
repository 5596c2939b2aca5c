package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/abrezinsky/stageplot/internal/auth"
	"github.com/abrezinsky/stageplot/internal/handlers"
	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/websocket"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// getPlot fetches a plot through the API
func (ts *testSetup) getPlot(t *testing.T, id string) handlers.PlotResponse {
	t.Helper()
	rec := ts.do(t, http.MethodGet, "/api/plots/"+id, nil)
	expectStatus(t, rec, http.StatusOK)
	var response handlers.PlotResponse
	decodeBody(t, rec, &response)
	return response
}

// addItem places a microphone through the API and returns it
func (ts *testSetup) addItem(t *testing.T, plotID, name string, channel int) models.Item {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/plots/"+plotID+"/items", map[string]interface{}{
		"name":     name,
		"type":     models.ItemTypeMicrophone,
		"position": map[string]float64{"x": 10, "y": 4, "width": 1, "height": 1},
		"itemData": testCatalog[0].ItemData(),
		"channel":  channel,
	})
	expectStatus(t, rec, http.StatusCreated)
	var item models.Item
	decodeBody(t, rec, &item)
	return item
}

func TestNew_HubInjection(t *testing.T) {
	log := logger.New()
	hub := websocket.New(log, nil)
	editorAuth := auth.New("secret")

	h := handlers.New(nil, nil, nil, nil, editorAuth, hub, log)

	if h.Hub != hub {
		t.Error("expected hub to be injected")
	}
	if h.Auth != editorAuth {
		t.Error("expected auth to be injected")
	}
	if h.Log == nil {
		t.Error("expected HTTP logger to be set")
	}
}

func TestNewForTesting_NoHub(t *testing.T) {
	setup := newTestSetup(t)

	if setup.handlers.Hub != nil {
		t.Error("expected no hub")
	}
	if setup.handlers.Log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging disabled")
	}

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected /ws to be unrouted without a hub, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	setup := newTestSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	setup := newTestSetup(t)

	paths := []string{"/api/plots", "/api/bands", "/api/settings", "/api/consoles"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		setup.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

// ==================== Plot Tests ====================

func TestHandleCreatePlot_Success(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/plots", map[string]string{"band_id": "b1", "name": "Club Show"})
	expectStatus(t, rec, http.StatusCreated)

	var created handlers.IDResponse
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatal("expected plot id")
	}

	plot := setup.getPlot(t, created.ID)
	if plot.Name != "Club Show" || plot.BandID != "b1" {
		t.Errorf("unexpected plot %q in %q", plot.Name, plot.BandID)
	}
	if plot.InputChannelMode != 48 || plot.OutputChannelMode != 16 {
		t.Errorf("expected 48/16 channels, got %d/%d", plot.InputChannelMode, plot.OutputChannelMode)
	}
	if plot.CanUndo || plot.CanRedo {
		t.Error("expected empty history on a new plot")
	}

	rec = setup.do(t, http.MethodGet, "/api/plots?band_id=b1", nil)
	expectStatus(t, rec, http.StatusOK)
	var list []models.PlotSummary
	decodeBody(t, rec, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("expected the new plot listed, got %+v", list)
	}
}

func TestHandleCreatePlot_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"missing band", map[string]string{"name": "x"}, http.StatusBadRequest},
		{"unknown band", map[string]string{"band_id": "nope"}, http.StatusNotFound},
		{"empty body", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := newTestSetup(t)
			rec := setup.do(t, http.MethodPost, "/api/plots", tt.body)
			expectStatus(t, rec, tt.status)
		})
	}
}

func TestHandleGetPlot_NotFound(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/plots/missing", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHandleUpdatePlot(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodPatch, "/api/plots/"+id, map[string]interface{}{
		"name":          "Festival",
		"stage_width":   40,
		"revision_date": "2026-05-01",
	})
	expectStatus(t, rec, http.StatusOK)

	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if plot.Name != "Festival" || plot.RevisionDate != "2026-05-01" {
		t.Errorf("unexpected name/date %q %q", plot.Name, plot.RevisionDate)
	}
	if plot.StageWidth != 40 || plot.StageDepth != 16 {
		t.Errorf("expected stage 40x16, got %vx%v", plot.StageWidth, plot.StageDepth)
	}
	if !plot.Pending {
		t.Error("expected unsaved edit to be pending")
	}

	rec = setup.do(t, http.MethodPatch, "/api/plots/"+id, map[string]interface{}{"stage_depth": -1})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestHandleDeletePlot(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodDelete, "/api/plots/"+id, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = setup.do(t, http.MethodGet, "/api/plots/"+id, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = setup.do(t, http.MethodDelete, "/api/plots/"+id, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHandleFlush(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	setup.addItem(t, id, "Vox", 0)

	if !setup.getPlot(t, id).Pending {
		t.Fatal("expected pending write before flush")
	}

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/flush", nil)
	expectStatus(t, rec, http.StatusOK)

	if setup.getPlot(t, id).Pending {
		t.Error("expected no pending write after flush")
	}
	rec2, err := setup.repo.GetPlot(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPlot failed: %v", err)
	}
	if !strings.Contains(rec2.Metadata, "Vox") {
		t.Error("expected the item to be written")
	}
}

func TestHandleUndoRedo(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/undo", nil)
	expectStatus(t, rec, http.StatusOK)
	var history handlers.HistoryResponse
	decodeBody(t, rec, &history)
	if history.Applied {
		t.Error("expected nothing to undo")
	}

	setup.addItem(t, id, "Vox", 0)

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/undo", nil)
	decodeBody(t, rec, &history)
	if !history.Applied {
		t.Fatal("expected undo to apply")
	}
	plot := setup.getPlot(t, id)
	if len(plot.Items) != 0 || !plot.CanRedo {
		t.Errorf("expected item undone with redo available, got %d items", len(plot.Items))
	}

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/redo", nil)
	decodeBody(t, rec, &history)
	if !history.Applied {
		t.Fatal("expected redo to apply")
	}
	if len(setup.getPlot(t, id).Items) != 1 {
		t.Error("expected item restored")
	}
}

func TestHandleDuplicateAndTemplates(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	setup.addItem(t, id, "Vox", 1)

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/duplicate", map[string]string{"name": "Club Show 2"})
	expectStatus(t, rec, http.StatusCreated)
	var dup handlers.IDResponse
	decodeBody(t, rec, &dup)

	copied := setup.getPlot(t, dup.ID)
	if copied.Name != "Club Show 2" || copied.SourcePlotID != id || len(copied.Items) != 1 {
		t.Errorf("unexpected duplicate %+v", copied)
	}
	if copied.CanUndo {
		t.Error("expected duplicate without history")
	}

	rec = setup.do(t, http.MethodPost, "/api/templates/"+id+"/plots", map[string]string{"name": "x"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/template", map[string]string{"name": "Four Piece"})
	expectStatus(t, rec, http.StatusCreated)
	var tmpl handlers.IDResponse
	decodeBody(t, rec, &tmpl)

	rec = setup.do(t, http.MethodGet, "/api/templates?band_id=b1", nil)
	expectStatus(t, rec, http.StatusOK)
	var templates []models.PlotSummary
	decodeBody(t, rec, &templates)
	if len(templates) != 1 || templates[0].ID != tmpl.ID || !templates[0].IsTemplate {
		t.Errorf("expected one template, got %+v", templates)
	}

	rec = setup.do(t, http.MethodPost, "/api/templates/"+tmpl.ID+"/plots", map[string]string{"name": "Tonight"})
	expectStatus(t, rec, http.StatusCreated)
	var fromTmpl handlers.IDResponse
	decodeBody(t, rec, &fromTmpl)
	plot := setup.getPlot(t, fromTmpl.ID)
	if plot.IsTemplate || plot.Name != "Tonight" || len(plot.Items) != 1 {
		t.Errorf("unexpected plot from template %+v", plot)
	}

	rec = setup.do(t, http.MethodPost, "/api/templates/"+tmpl.ID+"/plots", map[string]string{"band_id": "nope"})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHandlePlotPersons(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	person := itoa(setup.persons[0])

	rec := setup.do(t, http.MethodPut, "/api/plots/"+id+"/persons/"+person, nil)
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if len(plot.PersonIDs) != 1 || plot.PersonIDs[0] != setup.persons[0] {
		t.Errorf("expected person linked, got %v", plot.PersonIDs)
	}

	rec = setup.do(t, http.MethodDelete, "/api/plots/"+id+"/persons/"+person, nil)
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &plot)
	if len(plot.PersonIDs) != 0 {
		t.Errorf("expected person unlinked, got %v", plot.PersonIDs)
	}

	rec = setup.do(t, http.MethodPut, "/api/plots/"+id+"/persons/abc", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestHandleSceneExport(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	setup.addItem(t, id, "Vox", 1)

	rec := setup.do(t, http.MethodGet, "/api/plots/"+id+"/scene", nil)
	expectStatus(t, rec, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".scn") {
		t.Errorf("expected .scn attachment, got %q", cd)
	}
	if !strings.Contains(rec.Body.String(), `/ch/01/config "Vox"`) {
		t.Errorf("expected channel 1 config in scene, got:\n%s", rec.Body.String())
	}
}

// ==================== Item Tests ====================

func TestHandleAddItem(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	item := setup.addItem(t, id, "Vox", 3)
	if item.ID != 1 || item.Name != "Vox" {
		t.Errorf("unexpected item %+v", item)
	}

	plot := setup.getPlot(t, id)
	ch := plot.InputChannels[2]
	if ch.ItemID == nil || *ch.ItemID != item.ID || ch.Name != "Vox" {
		t.Errorf("expected item on channel 3, got %+v", ch)
	}

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/items", map[string]string{"name": "x"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/items", map[string]interface{}{
		"name": "Gtr", "type": models.ItemTypeMicrophone, "channel": 99,
	})
	expectStatus(t, rec, http.StatusBadRequest)
	if len(setup.getPlot(t, id).Items) != 1 {
		t.Error("expected failed add to leave the plot unchanged")
	}
}

func TestHandleUpdateItem(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	item := setup.addItem(t, id, "Vox", 1)
	path := "/api/plots/" + id + "/items/" + itoa(item.ID)

	rec := setup.do(t, http.MethodPatch, path, map[string]string{"property": "name", "value": "Lead Vox"})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if plot.Items[0].Name != "Lead Vox" || plot.InputChannels[0].Name != "Lead Vox" {
		t.Errorf("expected rename to reach the patch, got %q / %q", plot.Items[0].Name, plot.InputChannels[0].Name)
	}

	rec = setup.do(t, http.MethodPatch, path, map[string]string{"property": "x", "value": "abc"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPatch, "/api/plots/"+id+"/items/99", map[string]string{"property": "name", "value": "x"})
	expectStatus(t, rec, http.StatusNotFound)

	rec = setup.do(t, http.MethodPatch, "/api/plots/"+id+"/items/abc", map[string]string{"property": "name", "value": "x"})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestHandleDeleteItem(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	item := setup.addItem(t, id, "Vox", 1)

	rec := setup.do(t, http.MethodDelete, "/api/plots/"+id+"/items/"+itoa(item.ID), nil)
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if len(plot.Items) != 0 || plot.InputChannels[0].ItemID != nil {
		t.Error("expected item and its patch removed")
	}

	rec = setup.do(t, http.MethodDelete, "/api/plots/"+id+"/items/"+itoa(item.ID), nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHandleDuplicateItem(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	item := setup.addItem(t, id, "Vox", 1)

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/items/"+itoa(item.ID)+"/duplicate", map[string]float64{"dx": 2, "dy": 1})
	expectStatus(t, rec, http.StatusCreated)
	var dup models.Item
	decodeBody(t, rec, &dup)
	if dup.ID == item.ID || dup.Position.X != 12 || dup.Position.Y != 5 {
		t.Errorf("unexpected duplicate %+v", dup)
	}

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/items/42/duplicate", map[string]float64{})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHandleNudgeAndReorder(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	a := setup.addItem(t, id, "A", 0)
	b := setup.addItem(t, id, "B", 0)

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/items/nudge", map[string]interface{}{
		"ids": []int{a.ID, b.ID}, "dx": -1, "dy": 0.5,
	})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	for _, it := range plot.Items {
		if it.Position.X != 9 || it.Position.Y != 4.5 {
			t.Errorf("item %d at %v,%v", it.ID, it.Position.X, it.Position.Y)
		}
	}

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/items/reorder", map[string]int{"from": 1, "to": 0})
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &plot)
	if plot.Items[0].ID != b.ID {
		t.Errorf("expected B first, got %d", plot.Items[0].ID)
	}

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/items/reorder", map[string]int{"from": 0, "to": 9})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestHandleMoveZ(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	a := setup.addItem(t, id, "A", 0)
	setup.addItem(t, id, "B", 0)
	path := "/api/plots/" + id + "/items/" + itoa(a.ID) + "/z"

	rec := setup.do(t, http.MethodPost, path, map[string]string{"direction": "front"})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if plot.Items[len(plot.Items)-1].ID != a.ID {
		t.Error("expected A drawn last")
	}

	// Already at the front
	rec = setup.do(t, http.MethodPost, path, map[string]string{"direction": "forward"})
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodPost, path, map[string]string{"direction": "sideways"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/items/77/z", map[string]string{"direction": "back"})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHandleSetVariant(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/items", map[string]interface{}{
		"name":     "Amp",
		"type":     "amp",
		"itemData": testCatalog[1].ItemData(),
	})
	expectStatus(t, rec, http.StatusCreated)
	var amp models.Item
	decodeBody(t, rec, &amp)
	path := "/api/plots/" + id + "/items/" + itoa(amp.ID) + "/variant"

	rec = setup.do(t, http.MethodPost, path, map[string]string{"key": "L"})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if plot.Items[0].CurrentVariant != "L" {
		t.Errorf("expected variant L, got %q", plot.Items[0].CurrentVariant)
	}

	rec = setup.do(t, http.MethodPost, path, map[string]string{})
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &plot)
	if plot.Items[0].CurrentVariant == "L" {
		t.Error("expected rotation to move off L")
	}

	rec = setup.do(t, http.MethodPost, path, map[string]string{"key": "upside-down"})
	expectStatus(t, rec, http.StatusBadRequest)
}

// ==================== Patch Tests ====================

func TestHandleInputPatch(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	item := setup.addItem(t, id, "Vox", 0)
	base := "/api/plots/" + id + "/inputs"

	rec := setup.do(t, http.MethodPut, base+"/5", map[string]int{"item_id": item.ID})
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodGet, base, nil)
	expectStatus(t, rec, http.StatusOK)
	var chs []models.InputChannel
	decodeBody(t, rec, &chs)
	if len(chs) != 48 || chs[4].ItemID == nil || *chs[4].ItemID != item.ID {
		t.Fatalf("expected item on channel 5, got %+v", chs[4])
	}

	phantom := true
	rec = setup.do(t, http.MethodPatch, base+"/5", map[string]interface{}{"shortName": "VOX", "phantom": phantom})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if plot.InputChannels[4].ShortName != "VOX" || !plot.InputChannels[4].Phantom {
		t.Errorf("unexpected channel %+v", plot.InputChannels[4])
	}

	rec = setup.do(t, http.MethodPatch, base+"/99", map[string]string{"name": "x"})
	expectStatus(t, rec, http.StatusNotFound)

	rec = setup.do(t, http.MethodPut, base+"/6", map[string]int{"item_id": 404})
	expectStatus(t, rec, http.StatusNotFound)

	rec = setup.do(t, http.MethodDelete, base+"/5", nil)
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &plot)
	if plot.InputChannels[4].ItemID != nil {
		t.Error("expected channel 5 cleared")
	}

	rec = setup.do(t, http.MethodDelete, base+"/5", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestHandleClearPatch(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	setup.addItem(t, id, "A", 1)
	setup.addItem(t, id, "B", 2)

	rec := setup.do(t, http.MethodDelete, "/api/plots/"+id+"/inputs", nil)
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	for _, ch := range plot.InputChannels {
		if ch.ItemID != nil {
			t.Errorf("expected channel %d cleared", ch.ChannelNum)
		}
	}
	if len(plot.Items) != 2 {
		t.Error("expected items kept")
	}
}

func TestHandleChannelModes(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodPut, "/api/plots/"+id+"/inputs/mode", map[string]int{"channels": 16})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if plot.InputChannelMode != 16 {
		t.Errorf("expected 16 inputs, got %d", plot.InputChannelMode)
	}

	rec = setup.do(t, http.MethodPut, "/api/plots/"+id+"/inputs/mode", map[string]int{"channels": 7})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPut, "/api/plots/"+id+"/outputs/mode", map[string]int{"channels": 8})
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &plot)
	if plot.OutputChannelMode != 8 {
		t.Errorf("expected 8 outputs, got %d", plot.OutputChannelMode)
	}
}

func TestHandleStereoLinks(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodPut, "/api/plots/"+id+"/inputs/links", map[string][]int{"links": {3, 7}})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if len(plot.StereoLinks) != 2 || plot.StereoLinks[0] != 3 || plot.StereoLinks[1] != 7 {
		t.Errorf("unexpected links %v", plot.StereoLinks)
	}

	rec = setup.do(t, http.MethodPut, "/api/plots/"+id+"/outputs/links", map[string][]int{"links": {1}})
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &plot)
	if len(plot.OutputStereoLinks) != 1 || plot.OutputStereoLinks[0] != 1 {
		t.Errorf("unexpected output links %v", plot.OutputStereoLinks)
	}
}

func TestHandleSetConsole(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodPut, "/api/plots/"+id+"/console", map[string]string{"console_type": "x32"})
	expectStatus(t, rec, http.StatusOK)
	var plot handlers.PlotResponse
	decodeBody(t, rec, &plot)
	if plot.ConsoleType != "x32" || plot.InputChannelMode != 32 {
		t.Errorf("expected x32 with 32 inputs, got %q/%d", plot.ConsoleType, plot.InputChannelMode)
	}
	if len(plot.CategoryColorDefaults) == 0 {
		t.Error("expected category colors seeded")
	}

	rec = setup.do(t, http.MethodPut, "/api/plots/"+id+"/console", map[string]string{"console_type": "mackie"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPut, "/api/plots/"+id+"/console", map[string]string{"console_type": ""})
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &plot)
	if plot.ConsoleType != "" {
		t.Errorf("expected console cleared, got %q", plot.ConsoleType)
	}
}

func TestHandleOutputs(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")
	base := "/api/plots/" + id + "/outputs"

	rec := setup.do(t, http.MethodPost, base, map[string]interface{}{
		"output": map[string]string{"name": "Wedge 1", "type": "monitor"},
	})
	expectStatus(t, rec, http.StatusCreated)
	var first models.Output
	decodeBody(t, rec, &first)
	if first.ID != 1 || first.LinkMode != models.LinkModeMono {
		t.Errorf("unexpected output %+v", first)
	}

	rec = setup.do(t, http.MethodPost, base, map[string]interface{}{
		"output":  map[string]string{"name": "Wedge 2"},
		"channel": 4,
	})
	expectStatus(t, rec, http.StatusCreated)
	var second models.Output
	decodeBody(t, rec, &second)

	plot := setup.getPlot(t, id)
	if plot.OutputChannels[0].OutputID == nil || *plot.OutputChannels[0].OutputID != first.ID {
		t.Errorf("expected first output on channel 1, got %+v", plot.OutputChannels[0])
	}
	if plot.OutputChannels[3].OutputID == nil || *plot.OutputChannels[3].OutputID != second.ID {
		t.Errorf("expected second output on channel 4, got %+v", plot.OutputChannels[3])
	}

	rec = setup.do(t, http.MethodPut, base+"/2", map[string]int{"output_id": second.ID})
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodPut, base+"/2", map[string]int{"output_id": 99})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodDelete, base+"/1", nil)
	expectStatus(t, rec, http.StatusOK)

	rec = setup.do(t, http.MethodPost, base, map[string]interface{}{"output": map[string]string{}})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPost, base, map[string]interface{}{
		"output":  map[string]string{"name": "Sub"},
		"channel": 40,
	})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestHandleAddDefaultOutputs(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	rec := setup.do(t, http.MethodPost, "/api/plots/"+id+"/outputs/defaults", map[string]interface{}{})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = setup.do(t, http.MethodPost, "/api/plots/"+id+"/outputs/defaults", map[string]interface{}{
		"itemData": testCatalog[0].ItemData(),
	})
	expectStatus(t, rec, http.StatusOK)
	var added []models.Output
	decodeBody(t, rec, &added)
	if added == nil {
		t.Error("expected an empty list rather than null")
	}
}

func TestHandlePlotEdits_BroadcastToHub(t *testing.T) {
	setup := newTestSetup(t)
	id := setup.createPlot(t, "Club Show")

	hub := websocket.New(logger.New(), setup.plots)
	hub.Start()
	setup.plots.SetBroadcaster(hub)
	setup.handlers.Hub = hub
	router := setup.handlers.Router()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected plain GET on /ws to fail the upgrade, got %d", rec.Code)
	}

	// No clients; edits must not block on the hub
	setup.addItem(t, id, "Vox", 1)
}
