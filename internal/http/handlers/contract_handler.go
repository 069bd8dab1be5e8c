// Contract HTTP handlers.
//
// This file exposes REST endpoints for contract resources:
//   - POST   /contracts                (create, optional matching, idempotent)
//   - GET    /contracts                (public explore list)
//   - GET    /contracts/:id            (fetch)
//   - POST   /contracts/:id/join       (direct join)
//   - GET    /invites/:code            (public invite lookup)
//   - POST   /invites/:code/accept     (invite acceptance)
//   - DELETE /contracts/:id            (cascading delete)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/http/middleware"
	"github.com/pactly/go-pact-backend/internal/repo"
	"github.com/pactly/go-pact-backend/internal/services"
)

// CreateContractRequest is the JSON payload for creating a contract.
type CreateContractRequest struct {
	Title            string `json:"title" binding:"required" example:"Run three times a week"`
	TopicCategory    string `json:"topic_category" binding:"required" example:"fitness"`
	Description      string `json:"description" example:"Couch to 5k"`
	FrequencyPerWeek int    `json:"frequency_per_week" binding:"required,min=1" example:"3"`
	DurationDays     int    `json:"duration_days" binding:"required,min=1" example:"30"`
	StakesLevel      string `json:"stakes_level" binding:"required" example:"social"`
	// MatchType selects pairing: "random", "friend" (invite code), or "open".
	MatchType string `json:"match_type" binding:"omitempty,oneof=random friend open" example:"random"`
}

// CreateContractResponse wraps the created contract and, when random matching
// landed synchronously, the counterpart found for it.
type CreateContractResponse struct {
	Contract *domain.Contract      `json:"contract"`
	Match    *services.MatchResult `json:"match,omitempty"`
}

// CreateContract godoc
// @ID          createContract
// @Summary     Create a contract
// @Description Creates a goal contract. Friend matching issues an invite code; random matching may pair immediately. Supports Idempotency-Key replays.
// @Tags        Contracts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false  "Safe-retry key"
// @Param       body             body    handlers.CreateContractRequest  true  "Goal definition"
//
// @Success     201  {object}  handlers.CreateContractResponse
// @Success     200  {object}  handlers.CreateContractResponse  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contracts [post]
func (h *Handlers) CreateContract(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// Serve a stored result when this key was already processed.
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey {
		rec, err := repo.GetIdempotency(ctx, h.db, uid, key, time.Now().UTC())
		if err == nil && rec != nil {
			prior, err := h.contractSvc.Get(ctx, rec.ContractID)
			if err == nil {
				ok(c, rec.Status, CreateContractResponse{Contract: prior})
				return
			}
		}
	}

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title, topic_category, frequency_per_week, duration_days and stakes_level are required")
		return
	}

	contract, match, err := h.contractSvc.Create(ctx, uid, services.CreateContractInput{
		Title:            req.Title,
		TopicCategory:    req.TopicCategory,
		Description:      req.Description,
		FrequencyPerWeek: req.FrequencyPerWeek,
		DurationDays:     req.DurationDays,
		StakesLevel:      req.StakesLevel,
		MatchType:        req.MatchType,
	})
	if err != nil {
		failService(c, err)
		return
	}

	// Record the outcome for replays; best effort, the contract is already
	// committed.
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey {
		if _, err := repo.CreateIdempotency(ctx, h.db, uid, key, contract.ID, http.StatusOK, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency record")
		}
	}

	ok(c, http.StatusCreated, CreateContractResponse{Contract: contract, Match: match})
}

// ExploreContracts godoc
// @ID          exploreContracts
// @Summary     Browse open contracts
// @Description Public listing of open, unmatched contracts, newest first, capped at 50.
// @Tags        Contracts
// @Produce     json
//
// @Success     200  {array}   repo.ContractWithNames
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /contracts [get]
func (h *Handlers) ExploreContracts(c *gin.Context) {
	items, err := h.contractSvc.Explore(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetContract godoc
// @ID          getContract
// @Summary     Fetch a contract
// @Tags        Contracts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contract ID (UUID)"
//
// @Success     200  {object}  domain.Contract
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id} [get]
func (h *Handlers) GetContract(c *gin.Context) {
	contract, err := h.contractSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, contract)
}

// JoinContract godoc
// @ID          joinContract
// @Summary     Join a browsed open contract
// @Description Attaches the caller as partner. Owners cannot join their own contract; matched contracts cannot be joined again.
// @Tags        Contracts
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contract ID (UUID)"
//
// @Success     200  {object}  domain.Contract
// @Failure     400  {object}  handlers.ErrorResponse  "Self-join or already matched"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id}/join [post]
func (h *Handlers) JoinContract(c *gin.Context) {
	contract, err := h.contractSvc.Join(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, contract)
}

// GetInvite godoc
// @ID          getInvite
// @Summary     Look up an invite
// @Description Public lookup of the contract behind an invite code.
// @Tags        Invites
// @Produce     json
//
// @Param       code  path  string  true  "Invite code"
//
// @Success     200  {object}  domain.Contract
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown code"
// @Router      /invites/{code} [get]
func (h *Handlers) GetInvite(c *gin.Context) {
	contract, err := h.contractSvc.GetByInvite(c.Request.Context(), c.Param("code"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, contract)
}

// AcceptInvite godoc
// @ID          acceptInvite
// @Summary     Accept an invite
// @Description Sets the caller as partner on the invited contract. No welcome message is inserted on this path.
// @Tags        Invites
// @Produce     json
// @Security    BearerAuth
//
// @Param       code  path  string  true  "Invite code"
//
// @Success     200  {object}  domain.Contract
// @Failure     400  {object}  handlers.ErrorResponse  "Already matched"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown code"
// @Router      /invites/{code}/accept [post]
func (h *Handlers) AcceptInvite(c *gin.Context) {
	contract, err := h.contractSvc.AcceptInvite(c.Request.Context(), userID(c), c.Param("code"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, contract)
}

// DeleteContract godoc
// @ID          deleteContract
// @Summary     Delete a contract
// @Description Owner or partner only. Removes the contract's messages and check-ins before the contract itself.
// @Tags        Contracts
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contract ID (UUID)"
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id} [delete]
func (h *Handlers) DeleteContract(c *gin.Context) {
	if err := h.contractSvc.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
