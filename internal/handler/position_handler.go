package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PositionHandler struct {
	positionService service.PositionService
}

func NewPositionHandler(positionService service.PositionService) *PositionHandler {
	return &PositionHandler{positionService: positionService}
}

func (h *PositionHandler) RegisterRoutes(router *gin.RouterGroup) {
	positions := router.Group("/api/positions")
	{
		positions.GET("", middleware.RequireAuth(), h.ListPositions)
		positions.POST("", middleware.RequireAdmin(), h.CreatePosition)
		positions.DELETE("/:id", middleware.RequireAdmin(), h.DeletePosition)
	}
	levels := router.Group("/api/hierarchy-levels")
	{
		levels.GET("", middleware.RequireAuth(), h.ListLevels)
		levels.POST("", middleware.RequireAdmin(), h.CreateLevel)
		levels.DELETE("/:id", middleware.RequireAdmin(), h.DeleteLevel)
	}
}

func (h *PositionHandler) CreatePosition(c *gin.Context) {
	var req service.CreatePositionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	position, err := h.positionService.CreatePosition(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, position))
}

func (h *PositionHandler) ListPositions(c *gin.Context) {
	positions, err := h.positionService.ListPositions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, positions))
}

func (h *PositionHandler) DeletePosition(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.positionService.DeletePosition(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}

func (h *PositionHandler) CreateLevel(c *gin.Context) {
	var req service.CreateLevelDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	level, err := h.positionService.CreateLevel(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, level))
}

func (h *PositionHandler) ListLevels(c *gin.Context) {
	levels, err := h.positionService.ListLevels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, levels))
}

func (h *PositionHandler) DeleteLevel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.positionService.DeleteLevel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
