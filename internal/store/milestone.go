package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/stoke/internal/model"
)

type MilestoneStore struct {
	db *sql.DB
}

func NewMilestoneStore(db *sql.DB) *MilestoneStore {
	return &MilestoneStore{db: db}
}

func scanMilestone(scanner interface{ Scan(...any) error }) (*model.Milestone, error) {
	var m model.Milestone
	var completed int
	var completedAt sql.NullTime

	err := scanner.Scan(&m.ID, &m.UserID, &m.Title, &m.Points, &completed, &completedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	m.Completed = completed != 0
	if completedAt.Valid {
		m.CompletedAt = &completedAt.Time
	}
	return &m, nil
}

const milestoneCols = `id, user_id, title, points, completed, completed_at, created_at`

func (s *MilestoneStore) Create(userID int64, title string, points int) (*model.Milestone, error) {
	result, err := s.db.Exec(
		`INSERT INTO milestones (user_id, title, points) VALUES (?, ?, ?)`,
		userID, title, points,
	)
	if err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MilestoneStore) GetByID(id int64) (*model.Milestone, error) {
	return s.get(s.db, id)
}

func (s *MilestoneStore) GetByIDTx(tx *sql.Tx, id int64) (*model.Milestone, error) {
	return s.get(tx, id)
}

func (s *MilestoneStore) get(q querier, id int64) (*model.Milestone, error) {
	row := q.QueryRow(`SELECT `+milestoneCols+` FROM milestones WHERE id = ?`, id)
	m, err := scanMilestone(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

func (s *MilestoneStore) ListByUser(userID int64) ([]model.Milestone, error) {
	rows, err := s.db.Query(`SELECT `+milestoneCols+` FROM milestones WHERE user_id = ? ORDER BY completed ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

// MarkCompletedTx flips the completion flag inside an award transaction.
func (s *MilestoneStore) MarkCompletedTx(tx *sql.Tx, id int64, at time.Time) error {
	_, err := tx.Exec(
		`UPDATE milestones SET completed = 1, completed_at = ? WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("mark milestone completed: %w", err)
	}
	return nil
}

func (s *MilestoneStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM milestones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	return nil
}
