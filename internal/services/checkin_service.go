// Package services – CheckinService
//
// This file implements the check-in ledger: idempotent per-day completion
// records and the pure streak derivation. A streak is never stored; it is
// recomputed from the ledger on demand by walking backward from today while
// consecutive days are present and marked done.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
)

// CheckinService records and lists daily completion flags per contract.
type CheckinService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewCheckinService constructs a CheckinService backed by db.
func NewCheckinService(db *gorm.DB) *CheckinService {
	return &CheckinService{DB: db}
}

// Record upserts the (contract, user, day) completion flag. Only the
// contract's participants may write. An empty dateKey defaults to the current
// date; caller-supplied date strings are trusted verbatim with no timezone
// normalization. Resubmitting the same day overwrites the done flag rather
// than duplicating the row.
func (s *CheckinService) Record(ctx context.Context, userID, contractID, dateKey string, done bool) (*domain.Checkin, error) {
	if err := s.requireParticipant(ctx, contractID, userID); err != nil {
		return nil, err
	}
	if dateKey == "" {
		dateKey = dayKey(time.Now().UTC())
	}
	return repo.UpsertCheckin(ctx, s.DB, contractID, userID, dateKey, done)
}

// List returns all check-ins for a contract ordered by day ascending, after
// checking that userID participates in it.
func (s *CheckinService) List(ctx context.Context, userID, contractID string) ([]domain.Checkin, error) {
	if err := s.requireParticipant(ctx, contractID, userID); err != nil {
		return nil, err
	}
	return repo.ListCheckins(ctx, s.DB, contractID)
}

// Streak derives the current streak for userID on a contract as of today:
// the count of consecutive days ending today that are present and marked
// done. A missing or not-done entry for today yields 0 regardless of prior
// history.
func (s *CheckinService) Streak(ctx context.Context, userID, contractID string, today time.Time) (int, error) {
	if err := s.requireParticipant(ctx, contractID, userID); err != nil {
		return 0, err
	}
	rows, err := repo.ListCheckinsForUser(ctx, s.DB, contractID, userID)
	if err != nil {
		return 0, err
	}
	return ComputeStreak(rows, today), nil
}

// ComputeStreak is the pure derivation behind Streak: starting from today it
// counts backward while each day key is present and done, stopping at the
// first gap.
func ComputeStreak(rows []domain.Checkin, today time.Time) int {
	done := make(map[string]bool, len(rows))
	for _, r := range rows {
		done[r.DateKey] = r.Done
	}
	streak := 0
	for day := today; done[dayKey(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// requireParticipant maps a missing contract to ErrContractNotFound and a
// caller outside the contract to ErrNotParticipant.
func (s *CheckinService) requireParticipant(ctx context.Context, contractID, userID string) error {
	c, err := repo.GetContract(ctx, s.DB, contractID)
	if err != nil {
		return ErrContractNotFound
	}
	if !c.IsParticipant(userID) {
		return ErrNotParticipant
	}
	return nil
}
