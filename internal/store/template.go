package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/stoke/internal/model"
)

type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.HabitTemplate, error) {
	var t model.HabitTemplate
	var allowShowUp int

	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Name, &t.BasePoints, &t.PartialPoints,
		&t.ShowUpPoints, &allowShowUp, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.AllowShowUp = allowShowUp != 0
	return &t, nil
}

const templateCols = `id, user_id, name, base_points, partial_points, show_up_points, allow_show_up, created_at, updated_at`

func (s *TemplateStore) Create(userID int64, name string, basePoints, partialPoints, showUpPoints int, allowShowUp bool) (*model.HabitTemplate, error) {
	if basePoints <= 0 {
		basePoints = model.DefaultBasePoints
	}
	if partialPoints <= 0 {
		partialPoints = model.DefaultPartialPoints
	}
	if showUpPoints <= 0 {
		showUpPoints = model.DefaultPartialPoints
	}
	var a int
	if allowShowUp {
		a = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO habit_templates (user_id, name, base_points, partial_points, show_up_points, allow_show_up) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, name, basePoints, partialPoints, showUpPoints, a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) GetByID(id int64) (*model.HabitTemplate, error) {
	return s.get(s.db, id)
}

func (s *TemplateStore) GetByIDTx(tx *sql.Tx, id int64) (*model.HabitTemplate, error) {
	return s.get(tx, id)
}

func (s *TemplateStore) get(q querier, id int64) (*model.HabitTemplate, error) {
	row := q.QueryRow(`SELECT `+templateCols+` FROM habit_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *TemplateStore) ListByUser(userID int64) ([]model.HabitTemplate, error) {
	rows, err := s.db.Query(`SELECT `+templateCols+` FROM habit_templates WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.HabitTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *TemplateStore) Update(id int64, name string, basePoints, partialPoints, showUpPoints int, allowShowUp bool) (*model.HabitTemplate, error) {
	var a int
	if allowShowUp {
		a = 1
	}

	_, err := s.db.Exec(
		`UPDATE habit_templates SET name = ?, base_points = ?, partial_points = ?, show_up_points = ?, allow_show_up = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, basePoints, partialPoints, showUpPoints, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM habit_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
