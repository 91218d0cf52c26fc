package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/stoke/internal/model"
)

type EntryStore struct {
	db *sql.DB
}

func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

func scanEntry(scanner interface{ Scan(...any) error }) (*model.HabitEntry, error) {
	var e model.HabitEntry
	var kind, payload string

	err := scanner.Scan(&e.ID, &e.MonthlyGoalID, &e.UserID, &e.TargetDate, &e.Timestamp, &kind, &payload)
	if err != nil {
		return nil, err
	}

	e.Value = model.EntryValueFromStored(kind, payload)
	return &e, nil
}

const entryCols = `id, monthly_goal_id, user_id, target_date, timestamp, value_kind, value_payload`

// CreateTx inserts an entry as part of an award transaction. The unique
// (goal, target_date) index makes a concurrent duplicate fail the whole
// transaction rather than double-award.
func (s *EntryStore) CreateTx(tx *sql.Tx, e *model.HabitEntry) error {
	_, err := tx.Exec(
		`INSERT INTO habit_entries (id, monthly_goal_id, user_id, target_date, timestamp, value_kind, value_payload) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.MonthlyGoalID, e.UserID, e.TargetDate, e.Timestamp, string(e.Value.Kind), e.Value.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *EntryStore) GetByID(id string) (*model.HabitEntry, error) {
	row := s.db.QueryRow(`SELECT `+entryCols+` FROM habit_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

func (s *EntryStore) ListForGoal(goalID int64) ([]model.HabitEntry, error) {
	return s.list(s.db, `SELECT `+entryCols+` FROM habit_entries WHERE monthly_goal_id = ? ORDER BY target_date ASC`, goalID)
}

// ListForGoalSince returns entries on or after the given date, bounding the
// history read to the evaluation window.
func (s *EntryStore) ListForGoalSince(goalID int64, since string) ([]model.HabitEntry, error) {
	return s.list(s.db, `SELECT `+entryCols+` FROM habit_entries WHERE monthly_goal_id = ? AND target_date >= ? ORDER BY target_date ASC`, goalID, since)
}

func (s *EntryStore) ListForGoalSinceTx(tx *sql.Tx, goalID int64, since string) ([]model.HabitEntry, error) {
	return s.list(tx, `SELECT `+entryCols+` FROM habit_entries WHERE monthly_goal_id = ? AND target_date >= ? ORDER BY target_date ASC`, goalID, since)
}

func (s *EntryStore) list(q querier, query string, args ...any) ([]model.HabitEntry, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []model.HabitEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetForGoalDateTx reports whether an entry already exists for the logical day.
func (s *EntryStore) GetForGoalDateTx(tx *sql.Tx, goalID int64, targetDate string) (*model.HabitEntry, error) {
	row := tx.QueryRow(`SELECT `+entryCols+` FROM habit_entries WHERE monthly_goal_id = ? AND target_date = ?`, goalID, targetDate)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry for date: %w", err)
	}
	return e, nil
}

// Delete removes an entry (undo). Entries are never updated in place.
func (s *EntryStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM habit_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}
