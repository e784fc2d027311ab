package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProviderHandler struct {
	providerService service.ProviderService
}

func NewProviderHandler(providerService service.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerService: providerService}
}

func (h *ProviderHandler) RegisterRoutes(router *gin.RouterGroup) {
	providers := router.Group("/api/providers")
	{
		providers.GET("", middleware.RequireAuth(), h.ListProviders)
		providers.GET("/:id", middleware.RequireAuth(), h.GetProvider)
		providers.POST("", middleware.RequireAdmin(), h.CreateProvider)
		providers.PUT("/:id", middleware.RequireAdmin(), h.UpdateProvider)
	}
}

// CreateProvider registers a provider directly, outside the hiring flow
// (admin only)
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req service.CreateProviderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	provider, err := h.providerService.CreateProvider(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, provider))
}

// ListProviders returns providers, optionally filtered by area and active
// status
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	params := pagination.Parse(c)

	var areaID *uuid.UUID
	if raw := c.Query("area_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid area_id"))
			return
		}
		areaID = &parsed
	}
	activeOnly := c.Query("active") == "true"

	providers, total, err := h.providerService.ListProviders(c.Request.Context(), areaID, activeOnly, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, providers, total, params.Page, params.Limit))
}

// GetProvider returns one provider with its area, position and level
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	provider, err := h.providerService.GetProvider(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, provider))
}

// UpdateProvider updates a provider's profile (admin only). Salary and the
// active flag are changed only through the approval workflow.
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateProviderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	provider, err := h.providerService.UpdateProvider(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, provider))
}
