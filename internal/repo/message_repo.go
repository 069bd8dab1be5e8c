// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model.
//
// Messages are immutable once created. Sender display names are resolved by
// join at read time rather than stored denormalized, so user renames are
// reflected in history immediately.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/domain"
)

// MessageWithSender is a read-model row: the message plus the sender's
// current display name.
type MessageWithSender struct {
	domain.Message
	SenderName string `json:"sender_name"`
}

// CreateMessage inserts a chat message into a contract's history. The
// timestamp may be supplied by the caller so that paired welcome messages can
// share one instant; a zero value defaults to now (UTC).
func CreateMessage(ctx context.Context, db *gorm.DB, contractID, senderID, text string, at time.Time) (*domain.Message, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	m := &domain.Message{
		ID:         uuid.NewString(),
		ContractID: contractID,
		SenderID:   senderID,
		Text:       text,
		CreatedAt:  at,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns a contract's full history in ascending creation order
// with sender names resolved.
func ListMessages(ctx context.Context, db *gorm.DB, contractID string) ([]MessageWithSender, error) {
	var out []MessageWithSender
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("messages.*, users.name AS sender_name").
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("messages.contract_id = ?", contractID).
		Order("messages.created_at asc").
		Find(&out).Error
	return out, err
}

// CountMessages returns the number of messages in a contract's history.
func CountMessages(ctx context.Context, db *gorm.DB, contractID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("contract_id = ?", contractID).
		Count(&total).Error
	return total, err
}
