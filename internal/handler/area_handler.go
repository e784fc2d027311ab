package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AreaHandler struct {
	areaService       service.AreaService
	permissionService service.PermissionService
}

func NewAreaHandler(areaService service.AreaService, permissionService service.PermissionService) *AreaHandler {
	return &AreaHandler{areaService: areaService, permissionService: permissionService}
}

func (h *AreaHandler) RegisterRoutes(router *gin.RouterGroup) {
	areas := router.Group("/api/areas")
	{
		areas.GET("", middleware.RequireAuth(), h.ListAreas)
		areas.GET("/:id", middleware.RequireAuth(), h.GetArea)
		areas.GET("/:id/approvers", middleware.RequireAuth(), h.GetPotentialApprovers)
		areas.POST("", middleware.RequireAdmin(), h.CreateArea)
		areas.PUT("/:id", middleware.RequireAdmin(), h.UpdateArea)
		areas.DELETE("/:id", middleware.RequireAdmin(), h.DeleteArea)
	}
}

// CreateArea creates a new organizational area (admin only)
func (h *AreaHandler) CreateArea(c *gin.Context) {
	var req service.CreateAreaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	area, err := h.areaService.CreateArea(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, area))
}

// ListAreas returns areas with their designated approvers
func (h *AreaHandler) ListAreas(c *gin.Context) {
	params := pagination.Parse(c)

	areas, total, err := h.areaService.ListAreas(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, areas, total, params.Page, params.Limit))
}

// GetArea returns one area by id
func (h *AreaHandler) GetArea(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	area, err := h.areaService.GetArea(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, area))
}

// GetPotentialApprovers returns who can act on steps targeting this area
// (director and c-level, deduplicated); informational, grants nothing
func (h *AreaHandler) GetPotentialApprovers(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	approvers, err := h.permissionService.GetPotentialApprovers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvers))
}

// UpdateArea updates an area's name or approver designations (admin only)
func (h *AreaHandler) UpdateArea(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateAreaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	area, err := h.areaService.UpdateArea(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, area))
}

// DeleteArea removes an area (admin only). Approval steps pinned to it keep
// the dangling id and become admin-only.
func (h *AreaHandler) DeleteArea(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.areaService.DeleteArea(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
