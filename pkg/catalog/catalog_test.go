package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/pkg/catalog"
)

var sample = []catalog.Entry{
	{Path: "mics/sm58", Name: "SM58", ItemType: "microphone", Category: "Microphones", Variants: map[string]string{"default": "sm58.png"}},
	{Path: "amps/ac30", Name: "AC30", ItemType: "amp", Category: "Amplifiers", Variants: map[string]string{"default": "ac30.png", "R": "ac30r.png"}},
	{Path: "monitors/wedge", Name: "Wedge", ItemType: "monitor", Category: "Outputs"},
}

func TestBuildIndex(t *testing.T) {
	idx := catalog.BuildIndex(sample)

	if len(idx) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(idx))
	}
	if idx.Lookup("amps/ac30") != 1 {
		t.Errorf("expected amps/ac30 at 1, got %d", idx.Lookup("amps/ac30"))
	}
	if idx.Lookup("unknown") != -1 {
		t.Errorf("expected -1 for unknown path")
	}
	if idx.Lookup("") != -1 {
		t.Errorf("expected -1 for empty path")
	}
}

func TestBuildIndex_DuplicatePathLastWins(t *testing.T) {
	idx := catalog.BuildIndex([]catalog.Entry{{Path: "a"}, {Path: "b"}, {Path: "a"}})
	if idx.Lookup("a") != 2 {
		t.Errorf("expected last duplicate index 2, got %d", idx.Lookup("a"))
	}
}

func TestEntry_ItemData(t *testing.T) {
	d := sample[1].ItemData()

	if d.Path != "amps/ac30" || d.Name != "AC30" || d.ItemType != "amp" {
		t.Errorf("unexpected item data: %+v", d)
	}
	d.Variants["R"] = "changed.png"
	if sample[1].Variants["R"] != "ac30r.png" {
		t.Error("expected ItemData to copy the variant map")
	}

	empty := sample[2].ItemData()
	if empty.Variants == nil {
		t.Error("expected non-nil variants for entries without variants")
	}
}

func TestHTTPClient_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(sample)
	}))
	defer server.Close()

	client := catalog.NewHTTPClient(server.URL, 0, logger.Nop{})
	entries, err := client.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 3 || entries[0].Path != "mics/sm58" {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if client.Source() != server.URL {
		t.Errorf("expected source %s, got %s", server.URL, client.Source())
	}
}

func TestHTTPClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := catalog.NewHTTPClientWithHTTPClient(server.URL, server.Client(), logger.Nop{})
	if _, err := client.Load(context.Background()); err == nil {
		t.Fatal("expected error for server error response")
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := catalog.NewHTTPClient(server.URL, 0, logger.Nop{})
	if _, err := client.Load(context.Background()); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestFileClient_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	data, _ := json.Marshal(sample)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := catalog.NewFileClient(path, logger.Nop{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
}

func TestFileClient_Missing(t *testing.T) {
	client := catalog.NewFileClient(filepath.Join(t.TempDir(), "nope.json"), logger.Nop{})
	if _, err := client.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := catalog.NewFileClient("items.json", logger.Nop{})
	if _, err := client.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMockClient(t *testing.T) {
	m := catalog.NewMockClient(catalog.WithEntries(sample))
	entries, err := m.Load(context.Background())
	if err != nil || len(entries) != 3 {
		t.Fatalf("unexpected result: %v %v", entries, err)
	}

	boom := errors.New("boom")
	failing := catalog.NewMockClient(catalog.WithLoadError(boom))
	if _, err := failing.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if failing.Loads() != 1 {
		t.Errorf("expected 1 load, got %d", failing.Loads())
	}
}

func TestNew_PicksSource(t *testing.T) {
	if _, ok := catalog.New("items.json", "http://example.com/items.json", time.Second, logger.Nop{}).(*catalog.FileClient); !ok {
		t.Error("expected a file client when a path is set")
	}
	if _, ok := catalog.New("", "http://example.com/items.json", time.Second, logger.Nop{}).(*catalog.HTTPClient); !ok {
		t.Error("expected an HTTP client for a URL")
	}

	none := catalog.New("", "", time.Second, logger.Nop{})
	if none.Source() != "" {
		t.Errorf("expected empty source, got %q", none.Source())
	}
	if _, err := none.Load(context.Background()); !errors.Is(err, catalog.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
