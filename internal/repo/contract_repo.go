// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contract
// model, including the candidate query and dual-row transition used by the
// matching engine.
//
// Error semantics:
//   - When a contract is not found, functions return gorm.ErrRecordNotFound
//     (exported as ErrNotFound).
//   - MarkMatched guards on status = 'open' so an already-matched row can
//     never transition a second time; a raced row surfaces as ErrNotFound.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/domain"
)

// ContractWithNames is a read-model row for per-user listings: the contract
// plus both participant display names resolved by join at query time. Names
// are never stored denormalized so a rename is reflected immediately.
type ContractWithNames struct {
	domain.Contract
	OwnerName   string  `json:"owner_name"`
	PartnerName *string `json:"partner_name"`
}

// CreateContract inserts a new Contract row. The ID, open status, and UTC
// creation timestamp are assigned here; all goal fields come from the caller.
// Returns ErrDuplicate on an invite-code collision.
func CreateContract(ctx context.Context, db *gorm.DB, c *domain.Contract) (*domain.Contract, error) {
	c.ID = uuid.NewString()
	c.Status = domain.StatusOpen
	c.PartnerID = nil
	c.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetContract fetches a single contract by id, or ErrNotFound if missing.
func GetContract(ctx context.Context, db *gorm.DB, id string) (*domain.Contract, error) {
	var c domain.Contract
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetContractByInvite fetches a contract by its invite code, or ErrNotFound.
func GetContractByInvite(ctx context.Context, db *gorm.DB, code string) (*domain.Contract, error) {
	var c domain.Contract
	if err := db.WithContext(ctx).Where("invite_code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListContractsForUser returns all contracts where userID is owner or partner,
// most recent first, with both participant names resolved by join.
func ListContractsForUser(ctx context.Context, db *gorm.DB, userID string) ([]ContractWithNames, error) {
	var out []ContractWithNames
	err := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Select("contracts.*, owners.name AS owner_name, partners.name AS partner_name").
		Joins("JOIN users owners ON owners.id = contracts.owner_id").
		Joins("LEFT JOIN users partners ON partners.id = contracts.partner_id").
		Where("contracts.owner_id = ? OR contracts.partner_id = ?", userID, userID).
		Order("contracts.created_at desc").
		Find(&out).Error
	return out, err
}

// ListOpenContracts returns up to limit open, unmatched contracts, newest
// first, with the owner name resolved. This backs the public explore list.
func ListOpenContracts(ctx context.Context, db *gorm.DB, limit int) ([]ContractWithNames, error) {
	var out []ContractWithNames
	err := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Select("contracts.*, owners.name AS owner_name, NULL AS partner_name").
		Joins("JOIN users owners ON owners.id = contracts.owner_id").
		Where("contracts.status = ? AND contracts.partner_id IS NULL", domain.StatusOpen).
		Order("contracts.created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FindOldestOpenMatch returns the oldest open, unmatched contract in topic
// whose owner differs from excludeOwnerID, or ErrNotFound when no candidate
// exists. Oldest-first is the fairness rule of the matching engine; ties fall
// back to the store's stable ordering.
func FindOldestOpenMatch(ctx context.Context, db *gorm.DB, topic, excludeOwnerID string) (*domain.Contract, error) {
	var c domain.Contract
	err := db.WithContext(ctx).
		Where("status = ? AND partner_id IS NULL AND topic_category = ? AND owner_id <> ?",
			domain.StatusOpen, topic, excludeOwnerID).
		Order("created_at asc").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkMatched attaches partnerID to the contract and flips its status to
// matched in a single UPDATE. The WHERE clause requires the row to still be
// open, so a contract can never be matched twice; if the row is missing or
// already matched, ErrNotFound is returned and nothing is written.
func MarkMatched(ctx context.Context, db *gorm.DB, contractID, partnerID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("id = ? AND status = ? AND partner_id IS NULL", contractID, domain.StatusOpen).
		Updates(map[string]any{
			"partner_id": partnerID,
			"status":     domain.StatusMatched,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteContractCascade removes all check-ins and messages for the contract
// before removing the contract row itself (referential-integrity ordering).
// Callers are expected to run it inside a transaction.
func DeleteContractCascade(ctx context.Context, db *gorm.DB, id string) error {
	if err := db.WithContext(ctx).Where("contract_id = ?", id).Delete(&domain.Checkin{}).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Where("contract_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
		return err
	}
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Contract{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
