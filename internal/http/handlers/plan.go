package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/http/response"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/services"
)

type PlanHandler struct {
	plans      services.PlanService
	executions services.ExecutionService
}

func NewPlanHandler(plans services.PlanService, executions services.ExecutionService) *PlanHandler {
	return &PlanHandler{plans: plans, executions: executions}
}

type planRequest struct {
	Name        string     `json:"name"`
	Items       []string   `json:"items"`
	ExecutionID *uuid.UUID `json:"execution_id,omitempty"`
}

type idResponse struct {
	ID uuid.UUID `json:"id"`
}

// GET /api/plans?sort=name|recent&deleted=active|deleted|all
func (h *PlanHandler) ListPlans(c *gin.Context) {
	sort, ok := services.ParsePlanSort(c.Query("sort"))
	if !ok {
		response.RespondAppError(c, apperr.Validation("bad_sort", "Unknown sort %q.", c.Query("sort")))
		return
	}
	deleted, ok := domain.ParseDeletedFilter(c.Query("deleted"))
	if !ok {
		response.RespondAppError(c, apperr.Validation("bad_filter", "Unknown deleted filter %q.", c.Query("deleted")))
		return
	}
	rows, err := h.plans.List(c.Request.Context(), services.ListPlansParams{Sort: sort, Deleted: deleted})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plans": rows})
}

// POST /api/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apperr.Validation("bad_body", "Malformed request body."))
		return
	}
	id, err := h.plans.Create(c.Request.Context(), req.Name, req.Items)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, idResponse{ID: id})
}

// GET /api/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	detail, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// PUT /api/plans/:id
func (h *PlanHandler) EditPlan(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apperr.Validation("bad_body", "Malformed request body."))
		return
	}
	err = h.plans.Edit(c.Request.Context(), services.EditPlanInput{
		ID:          id,
		Name:        req.Name,
		ItemNames:   req.Items,
		ExecutionID: req.ExecutionID,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, idResponse{ID: id})
}

// DELETE /api/plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if err := h.plans.SoftDelete(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, idResponse{ID: id})
}

// POST /api/plans/:id/undelete
func (h *PlanHandler) UndeletePlan(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if err := h.plans.Undelete(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, idResponse{ID: id})
}

// POST /api/plans/:id/executions
func (h *PlanHandler) StartExecution(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	execID, err := h.executions.Create(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, idResponse{ID: execID})
}
