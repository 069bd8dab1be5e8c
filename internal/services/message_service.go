// Package services – MessageService
//
// This file implements the messaging relay: it persists chat messages and
// rebroadcasts them to every socket currently subscribed to the contract's
// room. Store-then-broadcast is the only ordering guarantee; disconnected
// clients re-fetch full history on reconnect.
//
// Observability: Send is OpenTelemetry-instrumented; spans include the
// contract and sender identifiers.
package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Broadcaster delivers an event to every connection subscribed to a
// contract's room. The websocket hub implements it; a nil broadcaster turns
// Send into persist-only (useful in tests).
type Broadcaster interface {
	// Broadcast fans payload out to the room keyed by contractID.
	// Fire-and-forget: no acknowledgment, no retry.
	Broadcast(contractID string, payload any)
}

// NewMessageEvent is the realtime payload pushed to a contract's room after
// a message is persisted. The sender name is resolved at broadcast time, not
// stored denormalized.
type NewMessageEvent struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	ContractID string    `json:"contractId"`
	SenderID   string    `json:"senderId"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	SenderName string    `json:"senderName"`
}

// MessageService persists chat messages and relays them to subscribed rooms.
type MessageService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hub receives the broadcast after a successful store. May be nil.
	Hub Broadcaster
}

// NewMessageService constructs a MessageService backed by db, relaying
// through hub.
func NewMessageService(db *gorm.DB, hub Broadcaster) *MessageService {
	return &MessageService{DB: db, Hub: hub}
}

// Send validates that the sender participates in the contract and that the
// text is non-empty, persists the message, and broadcasts it to the
// contract's room with the sender name resolved at broadcast time.
func (s *MessageService) Send(ctx context.Context, senderID, contractID, text string) (*NewMessageEvent, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("contract.id", contractID),
			attribute.String("sender.id", senderID),
		),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c, err := repo.GetContract(ctx, s.DB, contractID)
	if err != nil {
		return nil, ErrContractNotFound
	}
	if !c.IsParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	m, err := repo.CreateMessage(ctx, s.DB, contractID, senderID, text, time.Time{})
	if err != nil {
		return nil, err
	}

	sender, err := repo.GetUser(ctx, s.DB, senderID)
	if err != nil {
		return nil, err
	}

	ev := &NewMessageEvent{
		Type:       "new_message",
		ID:         m.ID,
		ContractID: m.ContractID,
		SenderID:   m.SenderID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
		SenderName: sender.Name,
	}
	if s.Hub != nil {
		s.Hub.Broadcast(contractID, ev)
	}
	return ev, nil
}

// List returns a contract's full history ascending, with sender names
// resolved by join, after checking that userID participates in it.
func (s *MessageService) List(ctx context.Context, userID, contractID string) ([]repo.MessageWithSender, error) {
	c, err := repo.GetContract(ctx, s.DB, contractID)
	if err != nil {
		return nil, ErrContractNotFound
	}
	if !c.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return repo.ListMessages(ctx, s.DB, contractID)
}
