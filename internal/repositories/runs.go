// package repositories provides the persistence layer for generation run history.
//
// The remote catalog stays the system of record for playlists; this
// package only keeps an audit log of generation runs.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
)

// RunRepository persists [models.Run] entries in sqlite.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with a generated ID and timestamp, set back on
// the passed entity.
func (r *RunRepository) Create(run *models.Run) error {
	if run.PlaylistName == "" && !run.PreviewOnly {
		return fmt.Errorf("%w: playlist name", shared.ErrInvalidInput)
	}

	run.ID = shared.GenerateID()
	run.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO generation_runs (id, playlist_id, playlist_name, rule_summary, track_count, duration_ms, preview_only, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID, run.PlaylistID, run.PlaylistName, run.RuleSummary,
		run.TrackCount, run.DurationMS, run.PreviewOnly, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, playlist_id, playlist_name, rule_summary, track_count, duration_ms, preview_only, created_at
		FROM generation_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// List retrieves the most recent runs, newest first. A non-positive
// limit defaults to 20.
func (r *RunRepository) List(limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, playlist_id, playlist_name, rule_summary, track_count, duration_ms, preview_only, created_at
		FROM generation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run        models.Run
		playlistID sql.NullString
	)

	err := row.Scan(&run.ID, &playlistID, &run.PlaylistName, &run.RuleSummary,
		&run.TrackCount, &run.DurationMS, &run.PreviewOnly, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.PlaylistID = playlistID.String
	return &run, nil
}
