package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kidani/kidani-backend/internal/services"
	"github.com/kidani/kidani-backend/internal/sse"
	"github.com/kidani/kidani-backend/internal/types"
)

type LessonHandler struct {
	svc           services.LessonGenService
	hub           *sse.Hub
	apiConfigured bool
}

func NewLessonHandler(svc services.LessonGenService, hub *sse.Hub, apiConfigured bool) *LessonHandler {
	return &LessonHandler{svc: svc, hub: hub, apiConfigured: apiConfigured}
}

// POST /api/lessons
//
// Creates the job record and returns immediately; the pipeline runs in the
// background and is observed via the status endpoint.
func (h *LessonHandler) Generate(c *gin.Context) {
	if !h.apiConfigured {
		RespondError(c, http.StatusInternalServerError, "api_not_configured", errors.New("upstream API keys are not configured"))
		return
	}

	var req types.GenerateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	job := h.svc.StartGeneration(req)
	RespondOK(c, gin.H{
		"status": "queued",
		"job_id": job.ID,
	})
}

// GET /api/lessons/:id
//
// Unknown IDs are signaled in the body, not the status code; clients poll
// this until the job is terminal.
func (h *LessonHandler) Status(c *gin.Context) {
	job, ok := h.svc.GetJob(c.Param("id"))
	if !ok {
		RespondOK(c, gin.H{"status": types.JobStatusNotFound})
		return
	}
	RespondOK(c, job)
}

// GET /api/lessons/:id/events
//
// Push-style mirror of the status endpoint: streams progress events until
// the job is terminal or the client disconnects.
func (h *LessonHandler) Events(c *gin.Context) {
	jobID := c.Param("id")
	job, ok := h.svc.GetJob(jobID)
	if !ok {
		RespondOK(c, gin.H{"status": types.JobStatusNotFound})
		return
	}

	client := h.hub.Subscribe(sse.JobChannel(jobID))
	defer h.hub.Unsubscribe(client)

	// Already-terminal jobs get their final state replayed once.
	if job.Status.Terminal() {
		event := sse.EventJobCompleted
		if job.Status == types.JobStatusError {
			event = sse.EventJobFailed
		}
		client.Outbound <- sse.Message{
			Channel: sse.JobChannel(jobID),
			Event:   event,
			Data:    job,
		}
	}

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
