package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/BunLabs/MeasurementConverter/models"
)

// InsertRun records one conversion pass and its per-unit counts.
func (db *DB) InsertRun(run *models.Run) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (source, title, language, elements_scanned, matches, converted, ambiguous)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Source, run.Title, run.Language,
		run.Elements, run.Matches, run.Converted, run.Ambiguous)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for unit, count := range run.UnitCounts {
		if _, err := tx.Exec(
			"INSERT INTO run_units (run_id, unit, count) VALUES (?, ?, ?)",
			runID, unit, count); err != nil {
			return 0, fmt.Errorf("failed to insert unit count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// ListRuns returns the most recent runs, newest first, without unit
// breakdowns. limit <= 0 means no limit.
func (db *DB) ListRuns(limit int) ([]models.Run, error) {
	query := `
		SELECT run_id, source, title, language, elements_scanned, matches, converted, ambiguous, created_at
		FROM runs ORDER BY run_id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetRun returns one run with its unit breakdown.
func (db *DB) GetRun(runID int64) (*models.Run, error) {
	row := db.QueryRow(`
		SELECT run_id, source, title, language, elements_scanned, matches, converted, ambiguous, created_at
		FROM runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT unit, count FROM run_units WHERE run_id = ? ORDER BY count DESC", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit counts: %w", err)
	}
	defer rows.Close()

	run.UnitCounts = make(map[string]int)
	for rows.Next() {
		var unit string
		var count int
		if err := rows.Scan(&unit, &count); err != nil {
			return nil, fmt.Errorf("failed to scan unit count: %w", err)
		}
		run.UnitCounts[unit] = count
	}

	return run, rows.Err()
}

// LatestRunID returns the ID of the most recent run.
func (db *DB) LatestRunID() (int64, error) {
	var id int64
	err := db.QueryRow("SELECT run_id FROM runs ORDER BY run_id DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no runs recorded yet")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var title, language sql.NullString
	var created string

	err := row.Scan(&run.RunID, &run.Source, &title, &language,
		&run.Elements, &run.Matches, &run.Converted, &run.Ambiguous, &created)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Title = title.String
	run.Language = language.String
	if t, perr := time.Parse("2006-01-02 15:04:05", created); perr == nil {
		run.CreatedAt = t
	}

	return run, nil
}
