package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/edvin/branchbox/internal/api/request"
	"github.com/edvin/branchbox/internal/api/response"
	"github.com/edvin/branchbox/internal/core"
)

// Sweeper applies the stop and start schedules for an hour.
type Sweeper interface {
	Sweep(ctx context.Context, hour int) (*core.SweepResult, error)
}

type Sweep struct {
	sweeper   Sweeper
	utcOffset int
	now       func() time.Time
}

// NewSweep creates the handler. Sweeps without an explicit hour use the
// current hour at utcOffset.
func NewSweep(sweeper Sweeper, utcOffset int) *Sweep {
	return &Sweep{sweeper: sweeper, utcOffset: utcOffset, now: time.Now}
}

// Run godoc
//
//	@Summary		Run a schedule sweep
//	@Tags			Schedule
//	@Security		ApiKeyAuth
//	@Param			body body request.Sweep false "Hour to sweep for; defaults to the current hour"
//	@Success		200 {object} core.SweepResult
//	@Failure		400 {object} response.ErrorResponse
//	@Router			/sweep [post]
func (h *Sweep) Run(w http.ResponseWriter, r *http.Request) {
	var req request.Sweep
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	hour := core.CurrentHour(h.now(), h.utcOffset)
	if req.Hour != nil {
		hour = *req.Hour
	}

	result, err := h.sweeper.Sweep(r.Context(), hour)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, result)
}
