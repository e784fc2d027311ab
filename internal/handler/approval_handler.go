package handler

import (
	"context"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	steps := router.Group("/api/steps", middleware.RequireAuth())
	{
		steps.PUT("/:id/approve", h.ApproveStep)
		steps.PUT("/:id/reject", h.RejectStep)
		steps.GET("/:id/permission", h.CheckPermission)
	}

	approvals := router.Group("/api/approvals", middleware.RequireAuth())
	{
		approvals.GET("/pending", h.ListPending)
		approvals.GET("/:type/:id/steps", h.GetSteps)
		approvals.GET("/:type/:id/current-step", h.GetCurrentStep)
	}
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

// ApproveStep approves one pending step as the authenticated user
// @Summary  Approve a step
// @Tags     approvals
// @Accept   json
// @Produce  json
// @Param    id path string true "Step ID"
// @Success  200 {object} response.Response
// @Router   /api/steps/{id}/approve [put]
func (h *ApprovalHandler) ApproveStep(c *gin.Context) {
	h.decide(c, h.approvalService.ApproveStep)
}

// RejectStep rejects one pending step; the comment is mandatory and vetoes
// the whole request
func (h *ApprovalHandler) RejectStep(c *gin.Context) {
	h.decide(c, h.approvalService.RejectStep)
}

func (h *ApprovalHandler) decide(c *gin.Context, fn func(ctx context.Context, stepID, approverID uuid.UUID, comment string) (*service.StepDecisionResult, error)) {
	stepID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	approverID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := fn(c.Request.Context(), stepID, approverID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CheckPermission reports whether the authenticated user could act on the
// step, and in which capacity
func (h *ApprovalHandler) CheckPermission(c *gin.Context) {
	stepID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	result, err := h.approvalService.CheckStepPermission(c.Request.Context(), stepID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListPending returns the pending steps targeting areas where the
// authenticated user is a designated approver
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}
	params := pagination.Parse(c)

	steps, total, err := h.approvalService.ListPendingForUser(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, steps, total, params.Page, params.Limit))
}

// GetSteps returns the full step chain of a request
func (h *ApprovalHandler) GetSteps(c *gin.Context) {
	requestType, requestID, ok := pathRequestRef(c)
	if !ok {
		return
	}

	steps, err := h.approvalService.GetApprovalSteps(c.Request.Context(), requestType, requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, steps))
}

// GetCurrentStep returns the lowest-numbered pending step of a request
func (h *ApprovalHandler) GetCurrentStep(c *gin.Context) {
	requestType, requestID, ok := pathRequestRef(c)
	if !ok {
		return
	}

	step, err := h.approvalService.GetCurrentPendingStep(c.Request.Context(), requestType, requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, step))
}

// pathRequestRef parses the :type/:id pair shared by the request-scoped
// approval reads.
func pathRequestRef(c *gin.Context) (model.RequestType, uuid.UUID, bool) {
	requestType := model.RequestType(c.Param("type"))
	if !requestType.Valid() {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid request type"))
		return "", uuid.Nil, false
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return "", uuid.Nil, false
	}
	return requestType, id, true
}
