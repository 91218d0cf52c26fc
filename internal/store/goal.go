package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/stoke/internal/model"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.MonthlyGoal, error) {
	var g model.MonthlyGoal
	var allowNextDay int

	err := scanner.Scan(
		&g.ID, &g.UserID, &g.TemplateID, &g.Month, &g.TargetCount,
		&allowNextDay, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.AllowNextDay = allowNextDay != 0
	return &g, nil
}

const goalCols = `id, user_id, template_id, month, target_count, allow_next_day, created_at, updated_at`

func (s *GoalStore) Create(userID, templateID int64, month string, targetCount int, allowNextDay bool) (*model.MonthlyGoal, error) {
	var a int
	if allowNextDay {
		a = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO monthly_goals (user_id, template_id, month, target_count, allow_next_day) VALUES (?, ?, ?, ?, ?)`,
		userID, templateID, month, targetCount, a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) GetByID(id int64) (*model.MonthlyGoal, error) {
	return s.get(s.db, id)
}

func (s *GoalStore) GetByIDTx(tx *sql.Tx, id int64) (*model.MonthlyGoal, error) {
	return s.get(tx, id)
}

func (s *GoalStore) get(q querier, id int64) (*model.MonthlyGoal, error) {
	row := q.QueryRow(`SELECT `+goalCols+` FROM monthly_goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) ListByUser(userID int64) ([]model.MonthlyGoal, error) {
	rows, err := s.db.Query(`SELECT `+goalCols+` FROM monthly_goals WHERE user_id = ? ORDER BY month DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.MonthlyGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// ListAll returns every goal; used by the reminder scheduler.
func (s *GoalStore) ListAll() ([]model.MonthlyGoal, error) {
	rows, err := s.db.Query(`SELECT ` + goalCols + ` FROM monthly_goals ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all goals: %w", err)
	}
	defer rows.Close()

	var goals []model.MonthlyGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *GoalStore) Update(id int64, month string, targetCount int, allowNextDay bool) (*model.MonthlyGoal, error) {
	var a int
	if allowNextDay {
		a = 1
	}

	_, err := s.db.Exec(
		`UPDATE monthly_goals SET month = ?, target_count = ?, allow_next_day = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		month, targetCount, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM monthly_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
