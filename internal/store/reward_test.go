package store

import (
	"testing"
	"time"
)

func TestRewardCRUD(t *testing.T) {
	db := setupTestDB(t)
	userID, _ := seedUserGoal(t, db)
	rs := NewRewardStore(db)

	reward, err := rs.Create(userID, "Ice cream", "Cone from the corner shop", 150)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if reward.PointCost != 150 {
		t.Errorf("point_cost = %d, want 150", reward.PointCost)
	}
	if reward.Redeemed {
		t.Error("new reward must not be redeemed")
	}

	updated, err := rs.Update(reward.ID, "Movie night", "Any film", 200)
	if err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if updated.Title != "Movie night" || updated.PointCost != 200 {
		t.Errorf("updated = %+v", updated)
	}

	if err := rs.Delete(reward.ID); err != nil {
		t.Fatalf("delete reward: %v", err)
	}
	got, err := rs.GetByID(reward.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestRewardMarkRedeemed(t *testing.T) {
	db := setupTestDB(t)
	userID, _ := seedUserGoal(t, db)
	rs := NewRewardStore(db)

	reward, err := rs.Create(userID, "Sleep in", "", 80)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := rs.MarkRedeemedTx(tx, reward, time.Now().UTC()); err != nil {
		tx.Rollback()
		t.Fatalf("mark redeemed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, _ := rs.GetByID(reward.ID)
	if !got.Redeemed {
		t.Error("expected redeemed flag set")
	}
	if got.RedeemedAt == nil {
		t.Error("expected redeemed_at set")
	}

	redemptions, err := rs.ListRedemptionsByUser(userID)
	if err != nil {
		t.Fatalf("list redemptions: %v", err)
	}
	if len(redemptions) != 1 {
		t.Fatalf("redemptions = %d, want 1", len(redemptions))
	}
	if redemptions[0].PointsSpent != 80 {
		t.Errorf("points_spent = %d, want 80", redemptions[0].PointsSpent)
	}
}

func TestRewardListOrdering(t *testing.T) {
	db := setupTestDB(t)
	userID, _ := seedUserGoal(t, db)
	rs := NewRewardStore(db)

	zebra, _ := rs.Create(userID, "Zebra", "", 10)
	rs.Create(userID, "Alpha", "", 20)

	tx, _ := db.Begin()
	rs.MarkRedeemedTx(tx, zebra, time.Now().UTC())
	tx.Commit()

	rewards, err := rs.ListByUser(userID)
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 2 {
		t.Fatalf("len = %d, want 2", len(rewards))
	}
	// Unredeemed first.
	if rewards[0].Title != "Alpha" || rewards[1].Title != "Zebra" {
		t.Errorf("order = %q, %q", rewards[0].Title, rewards[1].Title)
	}
}
