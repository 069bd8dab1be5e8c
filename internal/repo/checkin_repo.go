// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Checkin
// model.
//
// The one rule that matters here: at most one row per (contract, user, day).
// UpsertCheckin relies on the ux_checkin_day unique index and SQLite's
// ON CONFLICT support to overwrite the done flag instead of duplicating.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pactly/go-pact-backend/internal/domain"
)

// UpsertCheckin records (or overwrites) the completion flag for one user on
// one contract for one day key. The date key is trusted verbatim. The row
// after the call always carries the latest submitted value.
func UpsertCheckin(ctx context.Context, db *gorm.DB, contractID, userID, dateKey string, done bool) (*domain.Checkin, error) {
	now := time.Now().UTC()
	ck := &domain.Checkin{
		ID:         uuid.NewString(),
		ContractID: contractID,
		UserID:     userID,
		DateKey:    dateKey,
		Done:       done,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_id"}, {Name: "user_id"}, {Name: "date_key"}},
			DoUpdates: clause.Assignments(map[string]any{"done": done, "updated_at": now}),
		}).
		Create(ck).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row (the original id when the
	// insert hit the conflict path).
	var got domain.Checkin
	err = db.WithContext(ctx).
		Where("contract_id = ? AND user_id = ? AND date_key = ?", contractID, userID, dateKey).
		First(&got).Error
	if err != nil {
		return nil, err
	}
	return &got, nil
}

// ListCheckins returns all check-ins for a contract ordered by day ascending.
func ListCheckins(ctx context.Context, db *gorm.DB, contractID string) ([]domain.Checkin, error) {
	var out []domain.Checkin
	err := db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("date_key asc").
		Find(&out).Error
	return out, err
}

// ListCheckinsForUser returns one user's check-ins on a contract, day
// ascending. Used by the streak derivation.
func ListCheckinsForUser(ctx context.Context, db *gorm.DB, contractID, userID string) ([]domain.Checkin, error) {
	var out []domain.Checkin
	err := db.WithContext(ctx).
		Where("contract_id = ? AND user_id = ?", contractID, userID).
		Order("date_key asc").
		Find(&out).Error
	return out, err
}
