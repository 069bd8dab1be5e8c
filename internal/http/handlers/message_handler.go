// Message HTTP handlers.
//
// Endpoints:
//   - GET  /contracts/:id/messages  (history, ETag support)
//   - POST /contracts/:id/messages  (persist + broadcast)
//
// The POST path is the REST twin of the websocket send: both funnel through
// the message service so persistence and broadcast behave identically.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pactly/go-pact-backend/internal/repo"
	"github.com/pactly/go-pact-backend/internal/services"
)

// PostMessageRequest is the JSON payload for sending a chat message.
type PostMessageRequest struct {
	Text string `json:"text" binding:"required" example:"Did my run, your turn!"`
}

// ListMessages godoc
// @ID          listMessages
// @Summary     Contract chat history
// @Description Returns the contract's messages oldest first with sender names resolved. Supports weak ETag via If-None-Match.
// @Tags        Messages
// @Produce     json
// @Security    BearerAuth
//
// @Param       id             path    string  true   "Contract ID (UUID)"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {array}   repo.MessageWithSender
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	contractID := c.Param("id")

	// The participant gate runs before the ETag block: outsiders learn
	// nothing about the room, not even its message count or last activity.
	contract, err := h.contractSvc.Get(ctx, contractID)
	if err != nil {
		failService(c, err)
		return
	}
	if !contract.IsParticipant(userID(c)) {
		failService(c, services.ErrNotParticipant)
		return
	}

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.MessagesStats(ctx, h.db, contractID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, contractID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.msgSvc.List(ctx, userID(c), contractID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a chat message
// @Description Persists a message on the contract and broadcasts it to connected sockets.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Contract ID (UUID)"
// @Param       body  body  handlers.PostMessageRequest  true  "Message text"
//
// @Success     201  {object}  services.NewMessageEvent
// @Failure     400  {object}  handlers.ErrorResponse  "Empty text"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text is required")
		return
	}

	event, err := h.msgSvc.Send(c.Request.Context(), userID(c), c.Param("id"), req.Text)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, event)
}
