package database

import (
	"fmt"
	"time"
)

// TickRepository provides database operations for the tick and probe
// ledger tables.
type TickRepository struct {
	db *DB
}

// Insert records a tick and its probe results, linked by foreign key.
func (r *TickRepository) Insert(tick *Tick, probes []ProbeResult) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExec(`
		INSERT INTO tick_history (ts, active, idle_since, wakeup_at, suspended)
		VALUES (:ts, :active, :idle_since, :wakeup_at, :suspended)
	`, tick)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tick: %w", err)
	}
	tickID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted tick id: %w", err)
	}

	for i := range probes {
		probes[i].TickID = tickID
		if _, err := tx.NamedExec(`
			INSERT INTO probe_ledger (tick_id, kind, name, matched, reason, error)
			VALUES (:tick_id, :kind, :name, :matched, :reason, :error)
		`, probes[i]); err != nil {
			return 0, fmt.Errorf("failed to insert probe result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit tick: %w", err)
	}
	return tickID, nil
}

// Recent returns the most recent ticks, newest first.
func (r *TickRepository) Recent(limit int) ([]Tick, error) {
	var ticks []Tick
	err := r.db.Select(&ticks, `
		SELECT * FROM tick_history ORDER BY ts DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent ticks: %w", err)
	}
	return ticks, nil
}

// ProbeResultsForTick returns all recorded probe outcomes for a tick.
func (r *TickRepository) ProbeResultsForTick(tickID int64) ([]ProbeResult, error) {
	var results []ProbeResult
	err := r.db.Select(&results, `
		SELECT * FROM probe_ledger WHERE tick_id = ? ORDER BY id ASC
	`, tickID)
	if err != nil {
		return nil, fmt.Errorf("failed to query probe results: %w", err)
	}
	return results, nil
}

// DeleteOlderThan removes ticks (and cascades to their probe results) older
// than the given retention duration.
func (r *TickRepository) DeleteOlderThan(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	if _, err := r.db.Exec(`DELETE FROM probe_ledger WHERE tick_id IN (SELECT id FROM tick_history WHERE ts < ?)`, cutoff); err != nil {
		return fmt.Errorf("failed to delete old probe results: %w", err)
	}
	if _, err := r.db.Exec(`DELETE FROM tick_history WHERE ts < ?`, cutoff); err != nil {
		return fmt.Errorf("failed to delete old ticks: %w", err)
	}
	return nil
}
