package repository

import (
	"context"
	"reflect"
	"testing"

	"github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/models"
)

// newTestRepo creates a new in-memory repository for testing.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedBand(t *testing.T, repo *Repository, id string) {
	t.Helper()
	if err := repo.CreateBand(context.Background(), id, "Band "+id); err != nil {
		t.Fatalf("CreateBand failed: %v", err)
	}
}

func samplePlot(id, bandID string) *PlotRecord {
	return &PlotRecord{
		ID:                    id,
		BandID:                bandID,
		Name:                  "Main Stage",
		RevisionDate:          "2026-10-15",
		CanvasWidth:           1100,
		StageWidth:            24,
		StageDepth:            16,
		ConsoleType:           "x32",
		StereoLinks:           "[1]",
		OutputStereoLinks:     "[3]",
		CategoryColorDefaults: `{"vocals":"red"}`,
		InputChannelMode:      32,
		OutputChannelMode:     16,
		Metadata:              `{"coordVersion":2}`,
	}
}

// ==================== Plot Tests ====================

func TestSavePlot_InsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedBand(t, repo, "b1")

	rec := samplePlot("p1", "b1")
	if err := repo.SavePlot(ctx, rec); err != nil {
		t.Fatalf("SavePlot failed: %v", err)
	}

	got, err := repo.GetPlot(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPlot failed: %v", err)
	}
	if got.Name != "Main Stage" || got.BandID != "b1" || got.ConsoleType != "x32" {
		t.Errorf("unexpected plot %+v", got)
	}
	if got.InputChannelMode != 32 || got.OutputChannelMode != 16 {
		t.Errorf("expected channel modes 32/16, got %d/%d", got.InputChannelMode, got.OutputChannelMode)
	}
	if got.Metadata != `{"coordVersion":2}` || got.StereoLinks != "[1]" || got.OutputStereoLinks != "[3]" {
		t.Errorf("JSON columns not round-tripped: %+v", got)
	}
	if got.ChannelColors != "" || got.SourcePlotID != "" {
		t.Errorf("expected empty legacy columns, got %q %q", got.ChannelColors, got.SourcePlotID)
	}
	if len(got.PersonIDs) != 0 {
		t.Errorf("expected no persons, got %v", got.PersonIDs)
	}
}

func TestSavePlot_UpdatesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedBand(t, repo, "b1")

	rec := samplePlot("p1", "b1")
	repo.SavePlot(ctx, rec)

	rec.Name = "Festival"
	rec.StageWidth = 40
	rec.Metadata = `{"coordVersion":2,"items":[]}`
	if err := repo.SavePlot(ctx, rec); err != nil {
		t.Fatalf("second SavePlot failed: %v", err)
	}

	got, _ := repo.GetPlot(ctx, "p1")
	if got.Name != "Festival" || got.StageWidth != 40 || got.Metadata != rec.Metadata {
		t.Errorf("expected update, got %+v", got)
	}
	plots, _ := repo.ListPlots(ctx, "b1", false)
	if len(plots) != 1 {
		t.Errorf("expected one plot after upsert, got %d", len(plots))
	}
}

func TestSavePlot_ReplacesPersons(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedBand(t, repo, "b1")

	var ids []int
	for _, name := range []string{"Alex", "Sam", "Jo"} {
		id, err := repo.CreatePerson(ctx, models.Person{BandID: "b1", Name: name})
		if err != nil {
			t.Fatalf("CreatePerson failed: %v", err)
		}
		ids = append(ids, int(id))
	}

	rec := samplePlot("p1", "b1")
	rec.PersonIDs = []int{ids[0], ids[1]}
	repo.SavePlot(ctx, rec)

	rec.PersonIDs = []int{ids[2], ids[1]}
	if err := repo.SavePlot(ctx, rec); err != nil {
		t.Fatalf("SavePlot failed: %v", err)
	}

	got, err := repo.GetPlotPersons(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPlotPersons failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int{ids[1], ids[2]}) {
		t.Errorf("expected persons %v, got %v", []int{ids[1], ids[2]}, got)
	}

	// Deleting a person drops the link
	repo.DeletePerson(ctx, ids[1])
	got, _ = repo.GetPlotPersons(ctx, "p1")
	if !reflect.DeepEqual(got, []int{ids[2]}) {
		t.Errorf("expected link cascade, got %v", got)
	}
}

func TestGetPlot_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetPlot(context.Background(), "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeletePlot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	repo.SavePlot(ctx, samplePlot("p1", ""))

	if err := repo.DeletePlot(ctx, "p1"); err != nil {
		t.Fatalf("DeletePlot failed: %v", err)
	}
	if _, err := repo.GetPlot(ctx, "p1"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected plot gone, got %v", err)
	}
	if err := repo.DeletePlot(ctx, "p1"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestListPlots_FiltersBandAndTemplates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedBand(t, repo, "b1")
	seedBand(t, repo, "b2")

	repo.SavePlot(ctx, samplePlot("p1", "b1"))
	repo.SavePlot(ctx, samplePlot("p2", "b2"))
	tpl := samplePlot("t1", "b1")
	tpl.IsTemplate = true
	tpl.SourcePlotID = "p1"
	repo.SavePlot(ctx, tpl)

	tests := []struct {
		band      string
		templates bool
		want      []string
	}{
		{"b1", false, []string{"p1"}},
		{"b2", false, []string{"p2"}},
		{"", false, []string{"p1", "p2"}},
		{"b1", true, []string{"t1"}},
		{"b2", true, nil},
	}
	for _, tt := range tests {
		plots, err := repo.ListPlots(ctx, tt.band, tt.templates)
		if err != nil {
			t.Fatalf("ListPlots failed: %v", err)
		}
		got := map[string]bool{}
		for _, p := range plots {
			got[p.ID] = true
			if p.IsTemplate != tt.templates {
				t.Errorf("plot %s template=%v", p.ID, p.IsTemplate)
			}
		}
		if len(got) != len(tt.want) {
			t.Errorf("band %q templates=%v: got %v, want %v", tt.band, tt.templates, plots, tt.want)
			continue
		}
		for _, id := range tt.want {
			if !got[id] {
				t.Errorf("band %q templates=%v: missing %s", tt.band, tt.templates, id)
			}
		}
	}

	got, _ := repo.GetPlot(ctx, "t1")
	if got.SourcePlotID != "p1" {
		t.Errorf("expected source plot p1, got %q", got.SourcePlotID)
	}
}

func TestDeleteBand_CascadesPlots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedBand(t, repo, "b1")
	repo.SavePlot(ctx, samplePlot("p1", "b1"))

	if err := repo.DeleteBand(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBand failed: %v", err)
	}
	if _, err := repo.GetPlot(ctx, "p1"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected plot removed with band, got %v", err)
	}
}

func TestSavePlot_UnknownBand(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.SavePlot(context.Background(), samplePlot("p1", "nope"))
	if err == nil {
		t.Error("expected foreign key failure for unknown band")
	}
}

// ==================== Band Tests ====================

func TestBands(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateBand(ctx, "b2", "Zeta")
	repo.CreateBand(ctx, "b1", "Alpha")

	bands, err := repo.ListBands(ctx)
	if err != nil {
		t.Fatalf("ListBands failed: %v", err)
	}
	if len(bands) != 2 || bands[0].Name != "Alpha" {
		t.Errorf("expected bands ordered by name, got %+v", bands)
	}

	if err := repo.RenameBand(ctx, "b2", "Beta"); err != nil {
		t.Fatalf("RenameBand failed: %v", err)
	}
	b, err := repo.GetBand(ctx, "b2")
	if err != nil || b.Name != "Beta" {
		t.Errorf("expected renamed band, got %+v %v", b, err)
	}

	if _, err := repo.GetBand(ctx, "none"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := repo.CreateBand(ctx, "b1", "Dup"); err == nil {
		t.Error("expected duplicate band id to fail")
	}
}

// ==================== Person Tests ====================

func TestPersons_CRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedBand(t, repo, "b1")

	id, err := repo.CreatePerson(ctx, models.Person{BandID: "b1", Name: "Alex", Pronouns: "they/them"})
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}

	p, err := repo.GetPerson(ctx, int(id))
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	if p.MemberType != "performer" || p.Status != "permanent" {
		t.Errorf("expected defaults, got %+v", p)
	}

	p.Role = "Drums"
	p.Status = "inactive"
	if err := repo.UpdatePerson(ctx, *p); err != nil {
		t.Fatalf("UpdatePerson failed: %v", err)
	}
	persons, _ := repo.ListPersons(ctx, "b1")
	if len(persons) != 1 || persons[0].Role != "Drums" || persons[0].Status != "inactive" {
		t.Errorf("unexpected persons %+v", persons)
	}

	repo.DeletePerson(ctx, int(id))
	if _, err := repo.GetPerson(ctx, int(id)); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

// ==================== Settings Tests ====================

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v, err := repo.GetSetting(ctx, "write_debounce_ms")
	if err != nil || v != "300" {
		t.Errorf("expected default 300, got %q %v", v, err)
	}

	repo.SetSetting(ctx, "default_console", "wing")
	v, _ = repo.GetSetting(ctx, "default_console")
	if v != "wing" {
		t.Errorf("expected wing, got %q", v)
	}

	if _, err := repo.GetSetting(ctx, "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClearTable(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ClearTable(ctx, "sqlite_master"); err != ErrInvalidTable {
		t.Errorf("expected ErrInvalidTable, got %v", err)
	}
	if err := repo.ClearTable(ctx, "settings"); err != nil {
		t.Fatalf("ClearTable failed: %v", err)
	}
	if _, err := repo.GetSetting(ctx, "write_debounce_ms"); err != ErrNotFound {
		t.Errorf("expected settings cleared, got %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.migrate(); err != nil {
		t.Errorf("second migrate failed: %v", err)
	}
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
