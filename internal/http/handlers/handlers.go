// Handler wiring.
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. Service dependencies
// are declared here as interfaces so transport concerns stay separate from
// business logic; implementations must be safe for concurrent use and honor
// the provided context for cancellation and timeouts.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/http/middleware"
	"github.com/pactly/go-pact-backend/internal/repo"
	"github.com/pactly/go-pact-backend/internal/services"
)

// AuthService defines account operations consumed by HTTP handlers.
type AuthService interface {
	// Register creates an account and returns it with a signed token.
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	// Login verifies credentials and returns the account with a fresh token.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// GetUser returns a public profile by id.
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// ContractService defines contract lifecycle operations consumed by HTTP
// handlers.
type ContractService interface {
	// Create persists a new contract and applies the requested match mode.
	Create(ctx context.Context, ownerID string, in services.CreateContractInput) (*domain.Contract, *services.MatchResult, error)
	// Get fetches a single contract by id.
	Get(ctx context.Context, id string) (*domain.Contract, error)
	// ListForUser returns contracts the user owns or partners on.
	ListForUser(ctx context.Context, userID string) ([]repo.ContractWithNames, error)
	// Explore returns the public open-contract listing.
	Explore(ctx context.Context) ([]repo.ContractWithNames, error)
	// Join attaches userID as partner to a browsed open contract.
	Join(ctx context.Context, userID, contractID string) (*domain.Contract, error)
	// GetByInvite looks up a contract by its invite code.
	GetByInvite(ctx context.Context, code string) (*domain.Contract, error)
	// AcceptInvite sets userID as partner via invite code.
	AcceptInvite(ctx context.Context, userID, code string) (*domain.Contract, error)
	// Delete removes a contract and its messages/check-ins.
	Delete(ctx context.Context, userID, contractID string) error
}

// CheckinService defines check-in ledger operations consumed by HTTP handlers.
type CheckinService interface {
	// Record upserts the (contract, user, day) completion flag.
	Record(ctx context.Context, userID, contractID, dateKey string, done bool) (*domain.Checkin, error)
	// List returns all check-ins for a contract, day ascending.
	List(ctx context.Context, userID, contractID string) ([]domain.Checkin, error)
	// Streak derives the user's current streak as of today.
	Streak(ctx context.Context, userID, contractID string, today time.Time) (int, error)
}

// MessageService defines chat operations consumed by HTTP handlers.
type MessageService interface {
	// Send persists a message and broadcasts it to the contract's room.
	Send(ctx context.Context, senderID, contractID, text string) (*services.NewMessageEvent, error)
	// List returns a contract's history with sender names resolved.
	List(ctx context.Context, userID, contractID string) ([]repo.MessageWithSender, error)
}

// Handlers groups the HTTP endpoints for auth, users, contracts, check-ins,
// and messages.
type Handlers struct {
	authSvc     AuthService
	contractSvc ContractService
	checkinSvc  CheckinService
	msgSvc      MessageService

	// db backs idempotency records and ETag stats directly; both are
	// transport-level concerns that never reach the service layer.
	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(db *gorm.DB, idemTTL time.Duration, authSvc AuthService, contractSvc ContractService, checkinSvc CheckinService, msgSvc MessageService) *Handlers {
	return &Handlers{
		authSvc:     authSvc,
		contractSvc: contractSvc,
		checkinSvc:  checkinSvc,
		msgSvc:      msgSvc,
		db:          db,
		idemTTL:     idemTTL,
	}
}

// userID extracts the authenticated user id set by the auth middleware.
func userID(c *gin.Context) string { return middleware.UserID(c) }

// failService translates service-layer sentinel errors into the standard
// HTTP error envelope. Unknown errors become 500s.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrContractNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrInviteNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrAlreadyMatched):
		fail(c, http.StatusBadRequest, ErrCodeAlreadyMatched, err.Error())
	case errors.Is(err, services.ErrSelfJoin):
		fail(c, http.StatusBadRequest, ErrCodeSelfJoin, err.Error())
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusBadRequest, ErrCodeEmailTaken, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, services.ErrNotParticipant):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
