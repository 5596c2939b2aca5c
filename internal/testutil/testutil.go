package testutil

import (
	"context"
	"testing"

	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedBand creates a band with a performer and a crew member and returns
// the person ids
func SeedBand(t *testing.T, repo *repository.Repository, bandID, name string) []int {
	t.Helper()
	ctx := context.Background()

	if err := repo.CreateBand(ctx, bandID, name); err != nil {
		t.Fatalf("failed to create band: %v", err)
	}
	people := []models.Person{
		{BandID: bandID, Name: "Alex", Role: "Vocals", Pronouns: "they/them", MemberType: "performer"},
		{BandID: bandID, Name: "Sam", Role: "FOH", MemberType: "crew", Status: "occasional"},
	}
	ids := make([]int, 0, len(people))
	for _, p := range people {
		id, err := repo.CreatePerson(ctx, p)
		if err != nil {
			t.Fatalf("failed to create person: %v", err)
		}
		ids = append(ids, int(id))
	}
	return ids
}
