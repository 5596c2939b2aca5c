package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// TestListPlots_ScanError tests row scanning error
func TestListPlots_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "band_id", "name", "revision_date", "is_template"}).
		AddRow("p1", "b1", "Plot", "2026-01-01", "not-a-bool")

	mock.ExpectQuery("SELECT (.+) FROM stage_plots WHERE is_template").WillReturnRows(rows)

	_, err = repo.ListPlots(ctx, "", false)
	if err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListPlots_QueryError tests query failure
func TestListPlots_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	mock.ExpectQuery("SELECT (.+) FROM stage_plots").WillReturnError(errors.New("disk I/O error"))

	if _, err := repo.ListPlots(context.Background(), "b1", false); err == nil {
		t.Error("expected query error, got nil")
	}
}

// TestGetPlot_PersonsError tests failure loading person links
func TestGetPlot_PersonsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	rows := sqlmock.NewRows([]string{"id", "band_id", "name", "revision_date", "canvas_width", "canvas_height",
		"stage_width", "stage_depth", "console_type", "channel_colors", "stereo_links", "output_stereo_links",
		"category_color_defaults", "input_channel_mode", "output_channel_mode", "is_template", "source_plot_id",
		"metadata", "updated_at"}).
		AddRow("p1", "b1", "Plot", "2026-01-01", 1100.0, 733.0, 24.0, 16.0, "x32", nil, "[]", "[]",
			"{}", 48, 16, false, nil, "{}", nil)

	mock.ExpectQuery("SELECT (.+) FROM stage_plots WHERE id").WithArgs("p1").WillReturnRows(rows)
	mock.ExpectQuery("SELECT person_id FROM plot_persons").WillReturnError(errors.New("locked"))

	if _, err := repo.GetPlot(context.Background(), "p1"); err == nil {
		t.Error("expected person query error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestSavePlot_TransactionErrors tests every failure point in SavePlot
func TestSavePlot_TransactionErrors(t *testing.T) {
	rec := &PlotRecord{ID: "p1", Name: "Plot", PersonIDs: []int{1}}

	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "begin fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("begin failed"))
			},
		},
		{
			name: "upsert fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO stage_plots").WillReturnError(errors.New("constraint"))
				mock.ExpectRollback()
			},
		},
		{
			name: "person delete fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO stage_plots").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("DELETE FROM plot_persons").WillReturnError(errors.New("locked"))
				mock.ExpectRollback()
			},
		},
		{
			name: "person insert fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO stage_plots").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("DELETE FROM plot_persons").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT OR IGNORE INTO plot_persons").WillReturnError(errors.New("fk"))
				mock.ExpectRollback()
			},
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO stage_plots").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("DELETE FROM plot_persons").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT OR IGNORE INTO plot_persons").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(errors.New("commit failed"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.setup(mock)
			repo := &Repository{db: db}

			if err := repo.SavePlot(context.Background(), rec); err == nil {
				t.Error("expected error, got nil")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

// TestDeletePlot_RowsAffectedError tests result errors
func TestDeletePlot_RowsAffectedError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	mock.ExpectExec("DELETE FROM stage_plots").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no rows info")))

	if err := repo.DeletePlot(context.Background(), "p1"); err == nil {
		t.Error("expected error, got nil")
	}
}

// TestListPersons_ScanError tests row scanning error
func TestListPersons_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	rows := sqlmock.NewRows([]string{"id", "band_id", "name", "role", "pronouns", "phone", "email", "member_type", "status"}).
		AddRow("bad-id", "b1", "Alex", nil, nil, nil, nil, "performer", "permanent")

	mock.ExpectQuery("SELECT (.+) FROM persons WHERE band_id").WillReturnRows(rows)

	if _, err := repo.ListPersons(context.Background(), "b1"); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListBands_ScanError tests row scanning error
func TestListBands_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	rows := sqlmock.NewRows([]string{"id"}).AddRow("b1")
	mock.ExpectQuery("SELECT id, name FROM bands").WillReturnRows(rows)

	if _, err := repo.ListBands(context.Background()); err == nil {
		t.Error("expected column count mismatch error, got nil")
	}
}

// TestNew_InvalidPath tests opening a database in a missing directory
func TestNew_InvalidPath(t *testing.T) {
	if _, err := New("/nonexistent/dir/stageplot.db"); err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}
