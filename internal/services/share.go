package services

import (
	"context"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/repository"
	"github.com/abrezinsky/stageplot/internal/share"
	"github.com/abrezinsky/stageplot/pkg/catalog"
)

// ShareLink is an encoded plot
type ShareLink struct {
	Payload string
	URL     string
}

// ShareService builds and imports share links
type ShareService struct {
	log      logger.Logger
	repo     repository.FullRepository
	plots    *PlotService
	settings SettingsServicer
	catalog  catalog.Client

	mu      sync.Mutex
	entries []catalog.Entry
	index   catalog.Index
}

// NewShareService creates a new ShareService
func NewShareService(log logger.Logger, repo repository.FullRepository, plots *PlotService, settings SettingsServicer, client catalog.Client) *ShareService {
	return &ShareService{
		log:      log,
		repo:     repo,
		plots:    plots,
		settings: settings,
		catalog:  client,
	}
}

// Catalog returns the equipment catalog, loading it on first use. A
// failed load is retried on the next call.
func (s *ShareService) Catalog(ctx context.Context) ([]catalog.Entry, catalog.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries != nil {
		return s.entries, s.index, nil
	}
	if s.catalog == nil {
		return nil, nil, ErrCatalogUnavailable
	}
	entries, err := s.catalog.Load(ctx)
	if err != nil {
		s.log.Error("Failed to load catalog", "source", s.catalog.Source(), "error", err)
		return nil, nil, ErrCatalogUnavailable
	}
	s.entries = entries
	s.index = catalog.BuildIndex(entries)
	s.log.Info("Catalog loaded", "source", s.catalog.Source(), "entries", len(entries))
	return s.entries, s.index, nil
}

// Encode builds the share payload and URL for a plot. The URL is empty
// when no base URL is configured.
func (s *ShareService) Encode(ctx context.Context, plotID string) (*ShareLink, error) {
	_, idx, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.plots.Get(ctx, plotID)
	if err != nil {
		return nil, err
	}

	var musicians []models.Person
	for _, pid := range view.PersonIDs {
		p, err := s.repo.GetPerson(ctx, pid)
		if err != nil {
			s.log.Warn("Skipping missing plot person", "plot_id", plotID, "person_id", pid, "error", err)
			continue
		}
		musicians = append(musicians, *p)
	}
	var persons []models.Person
	bandName := ""
	if view.BandID != "" {
		if persons, err = s.repo.ListPersons(ctx, view.BandID); err != nil {
			return nil, err
		}
		if band, err := s.repo.GetBand(ctx, view.BandID); err == nil {
			bandName = band.Name
		}
	}

	snap := models.Snapshot{Items: view.Items, InputChannels: view.InputChannels}
	in := share.InputFromDocument(snap, share.Stage{Width: view.StageWidth, Depth: view.StageDepth}, musicians, persons)
	payload, err := share.Encode(in, idx)
	if err != nil {
		return nil, err
	}

	link := &ShareLink{Payload: payload}
	base, err := s.settings.GetShareBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	if base != "" {
		link.URL = share.BuildURL(base, bandName, view.Name, payload)
	}
	return link, nil
}

// QRCode renders the plot's share URL as a PNG
func (s *ShareService) QRCode(ctx context.Context, plotID string) ([]byte, error) {
	link, err := s.Encode(ctx, plotID)
	if err != nil {
		return nil, err
	}
	if link.URL == "" {
		return nil, ErrBaseURLNotConfigured
	}
	return qrcode.Encode(link.URL, qrcode.Medium, 256)
}

// Decode expands a payload or full share URL. Without a catalog the
// items decode with no catalog data.
func (s *ShareService) Decode(ctx context.Context, payloadOrURL string) (*share.DecodedPlot, error) {
	payload, err := share.PayloadOf(payloadOrURL)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	entries, _, err := s.Catalog(ctx)
	if err != nil {
		s.log.Warn("Decoding share without catalog", "error", err)
		entries = nil
	}
	return share.Decode(payload, entries)
}

// Import decodes a share and saves it as a new plot in a band. Contacts
// and musicians are matched to the band's persons by name and created
// when missing. An empty name falls back to the name in the URL.
func (s *ShareService) Import(ctx context.Context, bandID, payloadOrURL, name string) (string, error) {
	if bandID == "" {
		return "", ErrBandRequired
	}
	if _, err := s.repo.GetBand(ctx, bandID); err != nil {
		return "", err
	}
	decoded, err := s.Decode(ctx, payloadOrURL)
	if err != nil {
		return "", err
	}
	if name == "" {
		if link, err := share.ParseURL(payloadOrURL); err == nil && link.Plot != share.UntitledPlot {
			name = link.Plot
		}
	}

	existing, err := s.repo.ListPersons(ctx, bandID)
	if err != nil {
		return "", err
	}
	byName := make(map[string]int, len(existing))
	for _, p := range existing {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p.ID
		}
	}
	ensure := func(p models.Person) (int, error) {
		if id, ok := byName[p.Name]; ok {
			return id, nil
		}
		p.BandID = bandID
		id, err := s.repo.CreatePerson(ctx, p)
		if err != nil {
			return 0, err
		}
		byName[p.Name] = int(id)
		return int(id), nil
	}

	for _, c := range decoded.Persons {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		if _, err := ensure(models.Person{
			Name: c.Name, Role: c.Role, Pronouns: c.Pronouns, Phone: c.Phone, Email: c.Email,
			MemberType: c.MemberType, Status: c.Status,
		}); err != nil {
			return "", err
		}
	}
	personIDs := make([]int, len(decoded.Musicians))
	for i, m := range decoded.Musicians {
		if strings.TrimSpace(m.Name) == "" {
			continue
		}
		id, err := ensure(models.Person{Name: m.Name, Role: m.Instrument})
		if err != nil {
			return "", err
		}
		personIDs[i] = id
	}

	doc := decoded.ToDocument(s.plots.newID(), bandID, name, personIDs)
	if err := s.plots.importDocument(ctx, doc); err != nil {
		return "", err
	}
	s.log.Info("Share imported", "plot_id", doc.ID(), "band_id", bandID, "items", len(decoded.Items))
	return doc.ID(), nil
}
