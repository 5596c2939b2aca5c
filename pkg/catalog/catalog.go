// Package catalog loads the equipment catalog and indexes it for the share codec.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/models"
)

// Entry is one piece of equipment in the catalog
type Entry struct {
	Path           string                 `json:"path"`
	Name           string                 `json:"name"`
	ItemType       string                 `json:"item_type"`
	Category       string                 `json:"category,omitempty"`
	Variants       map[string]string      `json:"variants"`
	VariantOrder   []string               `json:"variant_order,omitempty"`
	DefaultOutputs []models.DefaultOutput `json:"default_outputs,omitempty"`
}

// ItemData returns the provenance payload a placed item carries for this entry
func (e Entry) ItemData() *models.ItemData {
	d := &models.ItemData{
		Name:           e.Name,
		Path:           e.Path,
		ItemType:       e.ItemType,
		Category:       e.Category,
		VariantOrder:   e.VariantOrder,
		DefaultOutputs: e.DefaultOutputs,
	}
	if e.Variants != nil {
		d.Variants = e.Variants
	} else {
		d.Variants = map[string]string{}
	}
	return d.Clone()
}

// Index maps catalog paths to their position in the catalog slice.
// Positions are part of the share wire format, so the catalog order must
// be stable between encoder and decoder.
type Index map[string]int

// BuildIndex indexes entries by path. On duplicate paths the last entry wins.
func BuildIndex(entries []Entry) Index {
	idx := make(Index, len(entries))
	for i, e := range entries {
		idx[e.Path] = i
	}
	return idx
}

// Lookup returns the index for path, or -1
func (idx Index) Lookup(path string) int {
	if path == "" {
		return -1
	}
	if i, ok := idx[path]; ok {
		return i
	}
	return -1
}

// Client defines how the catalog is fetched
type Client interface {
	// Load returns the full catalog in wire order
	Load(ctx context.Context) ([]Entry, error)
	// Source describes where the catalog comes from
	Source() string
}

// HTTPClient fetches the catalog JSON from a URL
type HTTPClient struct {
	url        string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a catalog client for url
func NewHTTPClient(url string, timeout time.Duration, log logger.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// NewHTTPClientWithHTTPClient creates a catalog client with a custom http.Client
func NewHTTPClientWithHTTPClient(url string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{url: url, httpClient: httpClient, log: log}
}

func (c *HTTPClient) Source() string {
	return c.url
}

// Load implements Client
func (c *HTTPClient) Load(ctx context.Context) ([]Entry, error) {
	c.log.Debug("Catalog request", "url", c.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog server returned status %d", resp.StatusCode)
	}

	entries, err := parse(body)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Catalog loaded", "url", c.url, "entries", len(entries))
	return entries, nil
}

// FileClient reads the catalog JSON from disk
type FileClient struct {
	path string
	log  logger.Logger
}

// NewFileClient creates a catalog client for a local items.json
func NewFileClient(path string, log logger.Logger) *FileClient {
	return &FileClient{path: path, log: log}
}

func (c *FileClient) Source() string {
	return c.path
}

// Load implements Client
func (c *FileClient) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	entries, err := parse(body)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Catalog loaded", "path", c.path, "entries", len(entries))
	return entries, nil
}

func parse(body []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return entries, nil
}

// ErrNotConfigured is returned by Load when no catalog source was set
var ErrNotConfigured = errors.New("no catalog configured")

type unconfiguredClient struct{}

func (unconfiguredClient) Source() string { return "" }

func (unconfiguredClient) Load(ctx context.Context) ([]Entry, error) {
	return nil, ErrNotConfigured
}

// New picks a client for the configured source. A file path wins over a
// URL; with neither, every Load fails with ErrNotConfigured.
func New(path, url string, timeout time.Duration, log logger.Logger) Client {
	switch {
	case path != "":
		return NewFileClient(path, log)
	case url != "":
		return NewHTTPClient(url, timeout, log)
	default:
		return unconfiguredClient{}
	}
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*FileClient)(nil)
	_ Client = unconfiguredClient{}
)
