package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/maintenance-planner/internal/http/response"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/services"
)

type ExecutionHandler struct {
	executions services.ExecutionService
}

func NewExecutionHandler(executions services.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{executions: executions}
}

// GET /api/executions
func (h *ExecutionHandler) ListExecutions(c *gin.Context) {
	index, err := h.executions.List(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, index)
}

// GET /api/executions/:id
func (h *ExecutionHandler) GetExecution(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	detail, err := h.executions.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// POST /api/executions/:id/complete
func (h *ExecutionHandler) CompleteExecution(c *gin.Context) {
	h.transition(c, h.executions.Complete)
}

// POST /api/executions/:id/reopen
func (h *ExecutionHandler) ReopenExecution(c *gin.Context) {
	h.transition(c, h.executions.Reopen)
}

// DELETE /api/executions/:id
func (h *ExecutionHandler) DeleteExecution(c *gin.Context) {
	h.transition(c, h.executions.Delete)
}

func (h *ExecutionHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, idResponse{ID: id})
}

type setItemRequest struct {
	Finished *bool `json:"finished"`
}

// POST /api/execution-items/:id
func (h *ExecutionHandler) SetItemFinished(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	var req setItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Finished == nil {
		response.RespondAppError(c, apperr.Validation("bad_body", "Body must be {\"finished\": true|false}."))
		return
	}
	at, err := h.executions.SetItemFinished(c.Request.Context(), id, *req.Finished)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"id": id, "finished_at": at})
}
