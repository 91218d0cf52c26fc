package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/stoke/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var redeemed int
	var redeemedAt sql.NullTime

	err := scanner.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.PointCost, &redeemed, &redeemedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.Redeemed = redeemed != 0
	if redeemedAt.Valid {
		r.RedeemedAt = &redeemedAt.Time
	}
	return &r, nil
}

const rewardCols = `id, user_id, title, description, point_cost, redeemed, redeemed_at, created_at`

func (s *RewardStore) Create(userID int64, title, description string, pointCost int) (*model.Reward, error) {
	result, err := s.db.Exec(
		`INSERT INTO rewards (user_id, title, description, point_cost) VALUES (?, ?, ?, ?)`,
		userID, title, description, pointCost,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	return s.get(s.db, id)
}

func (s *RewardStore) GetByIDTx(tx *sql.Tx, id int64) (*model.Reward, error) {
	return s.get(tx, id)
}

func (s *RewardStore) get(q querier, id int64) (*model.Reward, error) {
	row := q.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// List returns the user's rewards, unredeemed first, then by title.
func (s *RewardStore) ListByUser(userID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(`SELECT `+rewardCols+` FROM rewards WHERE user_id = ? ORDER BY redeemed ASC, title ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(id int64, title, description string, pointCost int) (*model.Reward, error) {
	_, err := s.db.Exec(
		`UPDATE rewards SET title = ?, description = ?, point_cost = ? WHERE id = ?`,
		title, description, pointCost, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}

// MarkRedeemedTx flips the redemption flag and writes the ledger row inside a
// redemption transaction.
func (s *RewardStore) MarkRedeemedTx(tx *sql.Tx, r *model.Reward, at time.Time) error {
	if _, err := tx.Exec(
		`UPDATE rewards SET redeemed = 1, redeemed_at = ? WHERE id = ?`,
		at, r.ID,
	); err != nil {
		return fmt.Errorf("mark reward redeemed: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO reward_redemptions (reward_id, user_id, points_spent, redeemed_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.UserID, r.PointCost, at,
	); err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

func (s *RewardStore) ListRedemptionsByUser(userID int64) ([]model.RewardRedemption, error) {
	rows, err := s.db.Query(
		`SELECT id, reward_id, user_id, points_spent, redeemed_at FROM reward_redemptions WHERE user_id = ? ORDER BY redeemed_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		var r model.RewardRedemption
		if err := rows.Scan(&r.ID, &r.RewardID, &r.UserID, &r.PointsSpent, &r.RedeemedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, r)
	}
	return redemptions, rows.Err()
}
