// Check-in HTTP handlers.
//
// Endpoints:
//   - POST /contracts/:id/checkins  (record/overwrite a day)
//   - GET  /contracts/:id/checkins  (full ledger)
//   - GET  /contracts/:id/streak    (current streak for the caller)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RecordCheckinRequest is the JSON payload for writing a daily check-in.
type RecordCheckinRequest struct {
	// Date selects the day in YYYY-MM-DD form; empty means today (UTC).
	Date string `json:"date" example:"2026-09-01"`
	Done bool   `json:"done" example:"true"`
}

// StreakResponse reports the caller's current consecutive-day run.
type StreakResponse struct {
	Streak int `json:"streak" example:"4"`
}

// RecordCheckin godoc
// @ID          recordCheckin
// @Summary     Record a daily check-in
// @Description Upserts the caller's completion flag for one day. Re-posting the same day overwrites the flag.
// @Tags        Checkins
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Contract ID (UUID)"
// @Param       body  body  handlers.RecordCheckinRequest  true  "Day and completion flag"
//
// @Success     200  {object}  domain.Checkin
// @Failure     400  {object}  handlers.ErrorResponse  "Bad date"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id}/checkins [post]
func (h *Handlers) RecordCheckin(c *gin.Context) {
	var req RecordCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid check-in payload")
		return
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	checkin, err := h.checkinSvc.Record(c.Request.Context(), userID(c), c.Param("id"), req.Date, req.Done)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, checkin)
}

// ListCheckins godoc
// @ID          listCheckins
// @Summary     List a contract's check-ins
// @Description Returns every check-in on the contract, both participants, day ascending.
// @Tags        Checkins
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Contract ID (UUID)"
//
// @Success     200  {array}   domain.Checkin
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id}/checkins [get]
func (h *Handlers) ListCheckins(c *gin.Context) {
	items, err := h.checkinSvc.List(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetStreak godoc
// @ID          getStreak
// @Summary     Current streak
// @Description Counts the caller's consecutive done days ending today. An optional `as_of` query pin makes the result reproducible.
// @Tags        Checkins
// @Produce     json
// @Security    BearerAuth
//
// @Param       id     path   string  true   "Contract ID (UUID)"
// @Param       as_of  query  string  false  "Reference day, YYYY-MM-DD (defaults to today UTC)"
//
// @Success     200  {object}  handlers.StreakResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad as_of"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Contract not found"
// @Router      /contracts/{id}/streak [get]
func (h *Handlers) GetStreak(c *gin.Context) {
	today := time.Now().UTC()
	if asOf := c.Query("as_of"); asOf != "" {
		parsed, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "as_of must be YYYY-MM-DD")
			return
		}
		today = parsed
	}

	streak, err := h.checkinSvc.Streak(c.Request.Context(), userID(c), c.Param("id"), today)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, StreakResponse{Streak: streak})
}
