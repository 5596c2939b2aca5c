package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// PlotRecord is one stage_plots row plus its person membership. The
// JSON columns are stored as text and decoded by the persistence layer.
type PlotRecord struct {
	ID                    string
	BandID                string
	Name                  string
	RevisionDate          string
	CanvasWidth           float64
	CanvasHeight          float64
	StageWidth            float64
	StageDepth            float64
	ConsoleType           string
	ChannelColors         string
	StereoLinks           string
	OutputStereoLinks     string
	CategoryColorDefaults string
	InputChannelMode      int
	OutputChannelMode     int
	IsTemplate            bool
	SourcePlotID          string
	Metadata              string
	PersonIDs             []int
	UpdatedAt             time.Time
}

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS bands (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS persons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			band_id TEXT,
			name TEXT NOT NULL,
			role TEXT,
			pronouns TEXT,
			phone TEXT,
			email TEXT,
			member_type TEXT DEFAULT 'performer',
			status TEXT DEFAULT 'permanent',
			FOREIGN KEY (band_id) REFERENCES bands(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS stage_plots (
			id TEXT PRIMARY KEY,
			band_id TEXT,
			name TEXT NOT NULL,
			revision_date TEXT,
			canvas_width REAL DEFAULT 1100,
			canvas_height REAL DEFAULT 0,
			stage_width REAL DEFAULT 24,
			stage_depth REAL DEFAULT 16,
			console_type TEXT,
			channel_colors TEXT,
			stereo_links TEXT,
			category_color_defaults TEXT,
			metadata TEXT,
			is_template BOOLEAN DEFAULT 0,
			source_plot_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (band_id) REFERENCES bands(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS plot_persons (
			plot_id TEXT NOT NULL,
			person_id INTEGER NOT NULL,
			PRIMARY KEY (plot_id, person_id),
			FOREIGN KEY (plot_id) REFERENCES stage_plots(id) ON DELETE CASCADE,
			FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plots_band ON stage_plots(band_id)`,
		`CREATE INDEX IF NOT EXISTS idx_persons_band ON persons(band_id)`,
	}

	additionalMigrations := []string{
		`ALTER TABLE stage_plots ADD COLUMN output_stereo_links TEXT`,
		`ALTER TABLE stage_plots ADD COLUMN input_channel_mode INTEGER DEFAULT 48`,
		`ALTER TABLE stage_plots ADD COLUMN output_channel_mode INTEGER DEFAULT 16`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	for _, migration := range additionalMigrations {
		r.db.Exec(migration) // Ignore errors - columns may already exist
	}

	// Insert default settings if not exists
	// Note: base_url is intentionally not set here - it's set by app.go
	// with the detected LAN IP address on startup
	defaultSettings := map[string]string{
		"default_console":     "",
		"share_base_url":      "",
		"write_debounce_ms":   "300",
		"default_stage_width": "24",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Plot Methods ====================

const plotColumns = `id, band_id, name, revision_date, canvas_width, canvas_height, stage_width, stage_depth,
	console_type, channel_colors, stereo_links, output_stereo_links, category_color_defaults,
	input_channel_mode, output_channel_mode, is_template, source_plot_id, metadata, updated_at`

// GetPlot loads a plot row and its person ids
func (r *Repository) GetPlot(ctx context.Context, id string) (*PlotRecord, error) {
	var rec PlotRecord
	var bandID, revisionDate, consoleType, channelColors, stereoLinks, outputStereoLinks sql.NullString
	var colorDefaults, sourcePlotID, metadata sql.NullString
	var inputMode, outputMode sql.NullInt64
	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT `+plotColumns+` FROM stage_plots WHERE id = ?`, id).Scan(
		&rec.ID, &bandID, &rec.Name, &revisionDate, &rec.CanvasWidth, &rec.CanvasHeight,
		&rec.StageWidth, &rec.StageDepth, &consoleType, &channelColors, &stereoLinks,
		&outputStereoLinks, &colorDefaults, &inputMode, &outputMode, &rec.IsTemplate,
		&sourcePlotID, &metadata, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("plot %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	rec.BandID = bandID.String
	rec.RevisionDate = revisionDate.String
	rec.ConsoleType = consoleType.String
	rec.ChannelColors = channelColors.String
	rec.StereoLinks = stereoLinks.String
	rec.OutputStereoLinks = outputStereoLinks.String
	rec.CategoryColorDefaults = colorDefaults.String
	rec.InputChannelMode = int(inputMode.Int64)
	rec.OutputChannelMode = int(outputMode.Int64)
	rec.SourcePlotID = sourcePlotID.String
	rec.Metadata = metadata.String
	rec.UpdatedAt = updatedAt.Time

	rec.PersonIDs, err = r.GetPlotPersons(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SavePlot inserts or updates a plot row and replaces its person set in
// one transaction
func (r *Repository) SavePlot(ctx context.Context, rec *PlotRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stage_plots (id, band_id, name, revision_date, canvas_width, canvas_height, stage_width, stage_depth,
			console_type, channel_colors, stereo_links, output_stereo_links, category_color_defaults,
			input_channel_mode, output_channel_mode, is_template, source_plot_id, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			band_id = excluded.band_id,
			name = excluded.name,
			revision_date = excluded.revision_date,
			canvas_width = excluded.canvas_width,
			canvas_height = excluded.canvas_height,
			stage_width = excluded.stage_width,
			stage_depth = excluded.stage_depth,
			console_type = excluded.console_type,
			channel_colors = excluded.channel_colors,
			stereo_links = excluded.stereo_links,
			output_stereo_links = excluded.output_stereo_links,
			category_color_defaults = excluded.category_color_defaults,
			input_channel_mode = excluded.input_channel_mode,
			output_channel_mode = excluded.output_channel_mode,
			is_template = excluded.is_template,
			source_plot_id = excluded.source_plot_id,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP`,
		rec.ID, nullString(rec.BandID), rec.Name, rec.RevisionDate, rec.CanvasWidth, rec.CanvasHeight,
		rec.StageWidth, rec.StageDepth, rec.ConsoleType, nullString(rec.ChannelColors), rec.StereoLinks,
		rec.OutputStereoLinks, rec.CategoryColorDefaults, rec.InputChannelMode, rec.OutputChannelMode,
		rec.IsTemplate, nullString(rec.SourcePlotID), rec.Metadata)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plot_persons WHERE plot_id = ?`, rec.ID); err != nil {
		return err
	}
	for _, personID := range rec.PersonIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO plot_persons (plot_id, person_id) VALUES (?, ?)`, rec.ID, personID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeletePlot removes a plot; person links cascade
func (r *Repository) DeletePlot(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stage_plots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFoundf("plot %s not found", id)
	}
	return nil
}

// ListPlots returns plot summaries, newest first. An empty bandID lists
// every band.
func (r *Repository) ListPlots(ctx context.Context, bandID string, templates bool) ([]models.PlotSummary, error) {
	query := `SELECT id, COALESCE(band_id, ''), name, COALESCE(revision_date, ''), is_template
		FROM stage_plots WHERE is_template = ?`
	args := []interface{}{templates}
	if bandID != "" {
		query += ` AND band_id = ?`
		args = append(args, bandID)
	}
	query += ` ORDER BY updated_at DESC, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plots := []models.PlotSummary{}
	for rows.Next() {
		var p models.PlotSummary
		if err := rows.Scan(&p.ID, &p.BandID, &p.Name, &p.RevisionDate, &p.IsTemplate); err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}

// GetPlotPersons returns the person ids linked to a plot
func (r *Repository) GetPlotPersons(ctx context.Context, plotID string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT person_id FROM plot_persons WHERE plot_id = ? ORDER BY person_id`, plotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==================== Band Methods ====================

// ListBands returns all bands by name
func (r *Repository) ListBands(ctx context.Context) ([]models.Band, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM bands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bands := []models.Band{}
	for rows.Next() {
		var b models.Band
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

// GetBand returns a band by ID
func (r *Repository) GetBand(ctx context.Context, id string) (*models.Band, error) {
	var b models.Band
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM bands WHERE id = ?`, id).Scan(&b.ID, &b.Name)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("band not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBand creates a band
func (r *Repository) CreateBand(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO bands (id, name) VALUES (?, ?)`, id, name)
	return err
}

// RenameBand updates a band's name
func (r *Repository) RenameBand(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bands SET name = ? WHERE id = ?`, name, id)
	return err
}

// DeleteBand deletes a band with its plots and persons
func (r *Repository) DeleteBand(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bands WHERE id = ?`, id)
	return err
}

// ==================== Person Methods ====================

// ListPersons returns a band's persons by name
func (r *Repository) ListPersons(ctx context.Context, bandID string) ([]models.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, band_id, name, role, pronouns, phone, email, member_type, status
		FROM persons WHERE band_id = ?
		ORDER BY name, id
	`, bandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	persons := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, *p)
	}
	return persons, rows.Err()
}

// GetPerson returns a person by ID
func (r *Repository) GetPerson(ctx context.Context, id int) (*models.Person, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, band_id, name, role, pronouns, phone, email, member_type, status
		FROM persons WHERE id = ?
	`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("person not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(s scanner) (*models.Person, error) {
	var p models.Person
	var bandID, role, pronouns, phone, email, memberType, status sql.NullString
	if err := s.Scan(&p.ID, &bandID, &p.Name, &role, &pronouns, &phone, &email, &memberType, &status); err != nil {
		return nil, err
	}
	p.BandID = bandID.String
	p.Role = role.String
	p.Pronouns = pronouns.String
	p.Phone = phone.String
	p.Email = email.String
	p.MemberType = memberType.String
	p.Status = status.String
	return &p, nil
}

// CreatePerson creates a person and returns its id
func (r *Repository) CreatePerson(ctx context.Context, p models.Person) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO persons (band_id, name, role, pronouns, phone, email, member_type, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, nullString(p.BandID), p.Name, p.Role, p.Pronouns, p.Phone, p.Email, defaultString(p.MemberType, "performer"), defaultString(p.Status, "permanent"))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdatePerson updates a person
func (r *Repository) UpdatePerson(ctx context.Context, p models.Person) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE persons SET name = ?, role = ?, pronouns = ?, phone = ?, email = ?, member_type = ?, status = ?
		WHERE id = ?
	`, p.Name, p.Role, p.Pronouns, p.Phone, p.Email, defaultString(p.MemberType, "performer"), defaultString(p.Status, "permanent"), p.ID)
	return err
}

// DeletePerson deletes a person; plot links cascade
func (r *Repository) DeletePerson(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, id)
	return err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"stage_plots": true, "plot_persons": true, "persons": true, "bands": true, "settings": true,
}

// ClearTable clears all data from a table
// Only allows clearing whitelisted tables to prevent SQL injection
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	// Validate table name against whitelist
	if !validTables[table] {
		return ErrInvalidTable
	}

	// Safe to use string concatenation now that we've validated the table name
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
