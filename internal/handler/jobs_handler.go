package handler

import (
	"context"
	"net/http"
	"ticket-waitlist/internal/jobs"
	"time"

	"github.com/gin-gonic/gin"
)

// JobRunner is a single idempotent batch entry point for an external
// scheduler.
type JobRunner interface {
	Run(ctx context.Context, now time.Time, limit int) (jobs.Summary, error)
}

// JobsHandler exposes the sweeper and promoter to whatever cron-like
// mechanism triggers them.
type JobsHandler struct {
	sweeper      JobRunner
	promoter     JobRunner
	sweepBatch   int
	promoteBatch int
}

func NewJobsHandler(sweeper, promoter JobRunner, sweepBatch, promoteBatch int) *JobsHandler {
	return &JobsHandler{
		sweeper:      sweeper,
		promoter:     promoter,
		sweepBatch:   sweepBatch,
		promoteBatch: promoteBatch,
	}
}

func (h *JobsHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("jobs/sweep", h.RunSweep)
		router.POST("jobs/promote", h.RunPromote)
	}
}

func (h *JobsHandler) RunSweep(c *gin.Context) {
	summary, err := h.sweeper.Run(c, time.Now(), h.sweepBatch)
	if err != nil {
		handleError(c, err, "RunSweep")
		return
	}

	handleSuccess(c, summary, http.StatusOK)
}

func (h *JobsHandler) RunPromote(c *gin.Context) {
	summary, err := h.promoter.Run(c, time.Now(), h.promoteBatch)
	if err != nil {
		handleError(c, err, "RunPromote")
		return
	}

	handleSuccess(c, summary, http.StatusOK)
}
