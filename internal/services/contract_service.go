// Package services – ContractService
//
// This file implements the contract lifecycle: create (with optional random
// matching or invite-code issuance), fetch, per-user and public listings,
// direct join, invite acceptance, and cascading deletion.
//
// State machine per contract: open → matched → (terminal: deleted). No other
// transitions exist; a contract remains matched indefinitely until a
// participant deletes it.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
	"github.com/pactly/go-pact-backend/internal/utils"
)

// Match modes accepted on contract creation.
const (
	MatchRandom = "random"
	MatchFriend = "friend"
	MatchOpen   = "open"
)

// Welcome texts for the direct-join transition. Two messages, one attributed
// to each participant, with distinct text. The invite-accept path inserts no
// welcome message at all; that asymmetry with Join is deliberate product
// behavior, not an oversight.
const (
	welcomeJoinOwner   = "A partner joined your contract. Time to get to work!"
	welcomeJoinPartner = "You joined this contract. Introduce yourself!"
)

// exploreLimit caps the public explore listing.
const exploreLimit = 50

// dayKey formats t as the "YYYY-MM-DD" key used for start dates and check-ins.
func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// CreateContractInput carries the goal definition for a new contract.
type CreateContractInput struct {
	Title            string
	TopicCategory    string
	Description      string
	FrequencyPerWeek int
	DurationDays     int
	StakesLevel      string
	// MatchType is one of "random", "friend", or "open" (default).
	MatchType string
}

// ContractService provides contract lifecycle operations and enforces
// ownership/participant rules.
type ContractService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Matcher runs the random-pairing transition for new contracts.
	Matcher *MatchService
}

// NewContractService constructs a ContractService backed by db.
func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{DB: db, Matcher: NewMatchService(db)}
}

// Create validates the goal fields, persists a new open contract with its
// start date derived as today, and applies the requested match mode: friend
// matching issues an invite code, random matching triggers the matching
// engine. The created contract and any synchronous match result are returned.
func (s *ContractService) Create(ctx context.Context, ownerID string, in CreateContractInput) (*domain.Contract, *MatchResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.TopicCategory = strings.TrimSpace(in.TopicCategory)
	in.StakesLevel = strings.TrimSpace(in.StakesLevel)
	if in.Title == "" || in.TopicCategory == "" || in.StakesLevel == "" ||
		in.FrequencyPerWeek <= 0 || in.DurationDays <= 0 {
		return nil, nil, ErrMissingFields
	}

	start := dayKey(time.Now().UTC())
	c := &domain.Contract{
		OwnerID:          ownerID,
		Title:            in.Title,
		TopicCategory:    in.TopicCategory,
		Description:      strings.TrimSpace(in.Description),
		FrequencyPerWeek: in.FrequencyPerWeek,
		DurationDays:     in.DurationDays,
		StakesLevel:      in.StakesLevel,
		StartDate:        &start,
	}

	if in.MatchType == MatchFriend {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return nil, nil, err
		}
		c.InviteCode = &code
	}

	created, err := repo.CreateContract(ctx, s.DB, c)
	if err != nil {
		return nil, nil, err
	}

	var match *MatchResult
	if in.MatchType == MatchRandom {
		match, err = s.Matcher.TryMatchRandom(ctx, created)
		if err != nil {
			return nil, nil, err
		}
	}
	return created, match, nil
}

// Get fetches a single contract by id.
func (s *ContractService) Get(ctx context.Context, id string) (*domain.Contract, error) {
	c, err := repo.GetContract(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListForUser returns all contracts the user owns or partners on, with both
// participant names resolved at query time.
func (s *ContractService) ListForUser(ctx context.Context, userID string) ([]repo.ContractWithNames, error) {
	return repo.ListContractsForUser(ctx, s.DB, userID)
}

// Explore returns the public listing of open, unmatched contracts, newest
// first, capped at 50 results. Deliberately unauthenticated.
func (s *ContractService) Explore(ctx context.Context) ([]repo.ContractWithNames, error) {
	return repo.ListOpenContracts(ctx, s.DB, exploreLimit)
}

// Join attaches userID as partner to a browsed open contract. The owner
// cannot join their own contract and a matched contract cannot be joined
// again. The transition and two distinct welcome messages (one attributed to
// each participant) are applied in one transaction.
func (s *ContractService) Join(ctx context.Context, userID, contractID string) (*domain.Contract, error) {
	c, err := s.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID == userID {
		return nil, ErrSelfJoin
	}
	if c.Matched() {
		return nil, ErrAlreadyMatched
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.MarkMatched(ctx, tx, c.ID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadyMatched // raced by another joiner
			}
			return err
		}
		now := time.Now().UTC()
		if _, err := repo.CreateMessage(ctx, tx, c.ID, userID, welcomeJoinOwner, now); err != nil {
			return err
		}
		if _, err := repo.CreateMessage(ctx, tx, c.ID, c.OwnerID, welcomeJoinPartner, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.PartnerID = &userID
	c.Status = domain.StatusMatched
	return c, nil
}

// GetByInvite looks up a contract by its invite code.
func (s *ContractService) GetByInvite(ctx context.Context, code string) (*domain.Contract, error) {
	c, err := repo.GetContractByInvite(ctx, s.DB, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return c, nil
}

// AcceptInvite sets userID as partner on the contract carrying code and
// transitions it to matched. Unlike Join, no welcome message is inserted on
// this path. Accepting your own invite is rejected.
func (s *ContractService) AcceptInvite(ctx context.Context, userID, code string) (*domain.Contract, error) {
	c, err := s.GetByInvite(ctx, code)
	if err != nil {
		return nil, err
	}
	if c.OwnerID == userID {
		return nil, ErrSelfJoin
	}
	if c.Matched() {
		return nil, ErrAlreadyMatched
	}

	if err := repo.MarkMatched(ctx, s.DB, c.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlreadyMatched
		}
		return nil, err
	}
	c.PartnerID = &userID
	c.Status = domain.StatusMatched
	return c, nil
}

// Delete removes a contract and everything hanging off it. Only the owner or
// the matched partner may delete; check-ins and messages are removed before
// the contract row inside one transaction.
func (s *ContractService) Delete(ctx context.Context, userID, contractID string) error {
	c, err := s.Get(ctx, contractID)
	if err != nil {
		return err
	}
	if !c.IsParticipant(userID) {
		return ErrNotParticipant
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteContractCascade(ctx, tx, c.ID)
	})
}
