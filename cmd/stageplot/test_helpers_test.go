package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/plot"
	"github.com/abrezinsky/stageplot/internal/repository"
	"github.com/abrezinsky/stageplot/internal/services"
	"github.com/abrezinsky/stageplot/internal/testutil"
	"github.com/abrezinsky/stageplot/pkg/catalog"
)

var testCatalog = []catalog.Entry{
	{Path: "mics/sm57_boom", Name: "SM57 Boom", ItemType: "microphone", Category: "Microphones", Variants: map[string]string{"default": "sm57.png"}},
	{Path: "outputs/wedge/wedge", Name: "Wedge", ItemType: "monitor", Category: "Outputs", Variants: map[string]string{"default": "wedge.png"}},
}

type cliTestEnv struct {
	baseDir    string
	configPath string
	dbPath     string
	plotID     string
}

// setupCLITestEnv writes a config, a catalog and a database holding one
// band with a single patched plot
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("STAGEPLOT_EDITOR_PASSWORD", "")

	catalogPath := filepath.Join(base, "items.json")
	data, err := json.Marshal(testCatalog)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if err := os.WriteFile(catalogPath, data, 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	dbPath := filepath.Join(base, "data", "stageplot.db")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[server]
base_url = "https://plots.example.com"

[storage]
db_path = %q

[catalog]
path = %q

[logging]
level = "error"
format = "text"
`, dbPath, catalogPath)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}
	plotID := seedPlot(t, dbPath)

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		dbPath:     dbPath,
		plotID:     plotID,
	}
}

func seedPlot(t *testing.T, dbPath string) string {
	t.Helper()
	repo, err := repository.New(dbPath)
	if err != nil {
		t.Fatalf("repository.New: %v", err)
	}
	defer repo.Close()

	persons := testutil.SeedBand(t, repo, "b1", "The Band")
	ctx := context.Background()
	plots := services.NewPlotService(logger.Nop{}, repo)
	id, err := plots.Create(ctx, "b1", "Club Show")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	err = plots.Edit(ctx, id, func(d *plot.Document) error {
		mic := d.AddItem(models.Item{
			Name:     "SM57 Boom",
			Type:     models.ItemTypeMicrophone,
			Position: models.Position{X: 11.5, Y: 3, Width: 1, Height: 1},
			PersonID: models.IntPtr(persons[0]),
			ItemData: testCatalog[0].ItemData(),
		})
		d.AddPerson(persons[0])
		d.PatchItem(mic.ID, 5)
		d.SetPhantom(5, true)
		return nil
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if err := plots.CloseAll(ctx); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	return id
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}
