// Package services – MatchService
//
// This file implements the matching engine: given a freshly persisted open
// contract whose owner asked for random pairing, it finds the oldest eligible
// counterpart in the same topic category and transitions both contracts to
// matched as a unit.
//
// The dual-row update and the two welcome messages are wrapped in a single
// GORM transaction so that a fault between the writes can never leave one
// contract matched and its counterpart still open.
//
// Observability: TryMatchRandom is OpenTelemetry-instrumented; spans include
// contract and topic identifiers.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// welcomeMatched is the identical text inserted into both contracts' chat
// histories when a random match lands.
const welcomeMatched = "You've been matched! Say hello to your accountability partner."

// MatchResult carries the counterpart found by the matching engine so the
// caller can notify the initiating user synchronously. There is no
// asynchronous notification channel.
type MatchResult struct {
	// Contract is the counterpart contract that was matched.
	Contract *domain.Contract `json:"contract"`
	// Partner is the counterpart contract's owner.
	Partner *domain.User `json:"partner"`
}

// MatchService pairs open contracts by topic category.
type MatchService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewMatchService constructs a MatchService.
func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

// TryMatchRandom attempts to pair newContract with the oldest open contract
// in the same topic category owned by a different user. newContract must
// already be persisted with status open and no partner.
//
// On a match, both contracts gain each other's owner as partner and move to
// matched, and one identical welcome message is inserted into each contract's
// history with an identical timestamp, all inside one transaction. The
// counterpart contract and its owner are returned.
//
// When no candidate exists, nothing is written and (nil, nil) is returned.
func (s *MatchService) TryMatchRandom(ctx context.Context, newContract *domain.Contract) (*MatchResult, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "TryMatchRandom",
		trace.WithAttributes(
			attribute.String("contract.id", newContract.ID),
			attribute.String("contract.topic", newContract.TopicCategory),
		),
	)
	defer span.End()

	var result *MatchResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate, err := repo.FindOldestOpenMatch(ctx, tx, newContract.TopicCategory, newContract.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // no candidate: leave the new contract open
			}
			return err
		}

		// Both-or-neither: each owner becomes the other's partner.
		if err := repo.MarkMatched(ctx, tx, newContract.ID, candidate.OwnerID); err != nil {
			return err
		}
		if err := repo.MarkMatched(ctx, tx, candidate.ID, newContract.OwnerID); err != nil {
			return err
		}

		// One identical welcome message per contract, timestamped identically.
		now := time.Now().UTC()
		if _, err := repo.CreateMessage(ctx, tx, newContract.ID, candidate.OwnerID, welcomeMatched, now); err != nil {
			return err
		}
		if _, err := repo.CreateMessage(ctx, tx, candidate.ID, newContract.OwnerID, welcomeMatched, now); err != nil {
			return err
		}

		partner, err := repo.GetUser(ctx, tx, candidate.OwnerID)
		if err != nil {
			return err
		}

		candidate.PartnerID = &newContract.OwnerID
		candidate.Status = domain.StatusMatched
		result = &MatchResult{Contract: candidate, Partner: partner}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result != nil {
		// Reflect the transition on the caller's copy.
		newContract.PartnerID = &result.Partner.ID
		newContract.Status = domain.StatusMatched
		span.SetAttributes(attribute.String("match.partner_id", result.Partner.ID))
	}
	return result, nil
}
