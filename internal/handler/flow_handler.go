package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type FlowHandler struct {
	flowService service.FlowService
}

func NewFlowHandler(flowService service.FlowService) *FlowHandler {
	return &FlowHandler{flowService: flowService}
}

func (h *FlowHandler) RegisterRoutes(router *gin.RouterGroup) {
	flows := router.Group("/api/flows")
	{
		flows.GET("", middleware.RequireAuth(), h.GetFlows)
		flows.PUT("", middleware.RequireAdmin(), h.ReplaceFlows)
		flows.POST("/reset", middleware.RequireAdmin(), h.ResetFlows)
	}
}

// GetFlows returns the current approval flow configuration. Falls back to the
// built-in defaults (version 0) when nothing was ever saved.
// @Summary  Get approval flows
// @Tags     flows
// @Produce  json
// @Success  200 {object} response.Response
// @Router   /api/flows [get]
func (h *FlowHandler) GetFlows(c *gin.Context) {
	flows, err := h.flowService.GetFlows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, flows))
}

type replaceFlowsRequest struct {
	Flows []model.FlowDefinition `json:"flows" binding:"required"`
}

// ReplaceFlows replaces the whole configuration atomically (admin only).
// Partial updates are not accepted; the payload must carry all five routes.
func (h *FlowHandler) ReplaceFlows(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req replaceFlowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	flows, err := h.flowService.ReplaceFlows(c.Request.Context(), actorID, req.Flows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, flows))
}

// ResetFlows restores the built-in default routes (admin only). In-flight
// requests keep the steps created under the previous configuration.
func (h *FlowHandler) ResetFlows(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	flows, err := h.flowService.ResetFlows(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, flows))
}
