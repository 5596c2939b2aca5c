package services

import (
	"context"
	"strings"

	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/repository"
)

// BandService handles bands and their persons
type BandService struct {
	log  logger.Logger
	repo repository.FullRepository
}

// NewBandService creates a new BandService
func NewBandService(log logger.Logger, repo repository.FullRepository) *BandService {
	return &BandService{log: log, repo: repo}
}

// ListBands returns all bands
func (s *BandService) ListBands(ctx context.Context) ([]models.Band, error) {
	return s.repo.ListBands(ctx)
}

// CreateBand creates a band and returns its id
func (s *BandService) CreateBand(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.Validation("band name is required")
	}
	id := NewPlotID()
	if err := s.repo.CreateBand(ctx, id, name); err != nil {
		return "", err
	}
	s.log.Info("Band created", "band_id", id, "name", name)
	return id, nil
}

// DeleteBand deletes a band with its plots and persons
func (s *BandService) DeleteBand(ctx context.Context, id string) error {
	if _, err := s.repo.GetBand(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteBand(ctx, id)
}

// ListPersons returns a band's persons
func (s *BandService) ListPersons(ctx context.Context, bandID string) ([]models.Person, error) {
	return s.repo.ListPersons(ctx, bandID)
}

// CreatePerson adds a person to a band
func (s *BandService) CreatePerson(ctx context.Context, p models.Person) (int64, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, apperrors.Validation("person name is required")
	}
	if p.BandID == "" {
		return 0, ErrBandRequired
	}
	if p.MemberType != "" && !contains(models.MemberTypes, p.MemberType) {
		return 0, apperrors.Validationf("invalid member type %q", p.MemberType)
	}
	if p.Status != "" && !contains(models.MemberStatuses, p.Status) {
		return 0, apperrors.Validationf("invalid status %q", p.Status)
	}
	return s.repo.CreatePerson(ctx, p)
}

// DeletePerson removes a person from its band and every plot
func (s *BandService) DeletePerson(ctx context.Context, id int) error {
	return s.repo.DeletePerson(ctx, id)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
