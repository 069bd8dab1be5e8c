// User HTTP handlers.
//
// This file exposes the user-facing read endpoints:
//   - GET /users/:id            (public profile)
//   - GET /users/:id/contracts  (own contracts only; 403 for anyone else)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pactly/go-pact-backend/internal/repo"
)

// GetUser godoc
// @ID          getUser
// @Summary     Public profile
// @Description Returns the public profile for a user id.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "User ID (UUID)"
//
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.authSvc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

// ListUserContracts godoc
// @ID          listUserContracts
// @Summary     List a user's contracts
// @Description Returns every contract the user owns or partners on, names resolved. Callers may only list their own.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "User ID (UUID)"
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {array}   repo.ContractWithNames
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not your listing"
// @Router      /users/{id}/contracts [get]
func (h *Handlers) ListUserContracts(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if id != userID(c) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot list another user's contracts")
		return
	}

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.ContractsStats(ctx, h.db, id)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"contracts:%s:%d:%d"`, id, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.contractSvc.ListForUser(ctx, id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}
