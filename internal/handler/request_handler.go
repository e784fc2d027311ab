package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
	hiringService  service.HiringService
}

func NewRequestHandler(requestService service.RequestService, hiringService service.HiringService) *RequestHandler {
	return &RequestHandler{requestService: requestService, hiringService: hiringService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests", middleware.RequireAuth())
	{
		recess := requests.Group("/recess")
		{
			recess.POST("", h.CreateRecess)
			recess.GET("", h.ListRecess)
			recess.GET("/:id", h.detail(model.RequestTypeRecess))
		}
		termination := requests.Group("/termination")
		{
			termination.POST("", h.CreateTermination)
			termination.GET("", h.ListTermination)
			termination.GET("/:id", h.detail(model.RequestTypeTermination))
		}
		hiring := requests.Group("/hiring")
		{
			hiring.POST("", h.CreateHiring)
			hiring.GET("", h.ListHiring)
			hiring.GET("/:id", h.detail(model.RequestTypeHiring))
			hiring.PUT("/:id/start-progress", h.StartHiringProgress)
			hiring.PUT("/:id/complete", h.CompleteHiring)
		}
		purchase := requests.Group("/purchase")
		{
			purchase.POST("", h.CreatePurchase)
			purchase.GET("", h.ListPurchase)
			purchase.GET("/:id", h.detail(model.RequestTypePurchase))
		}
		remuneration := requests.Group("/remuneration")
		{
			remuneration.POST("", h.CreateRemuneration)
			remuneration.GET("", h.ListRemuneration)
			remuneration.GET("/:id", h.detail(model.RequestTypeRemuneration))
		}
	}
}

// CreateRecess opens a recess request for an active provider
// @Summary  Create recess request
// @Tags     requests
// @Accept   json
// @Produce  json
// @Param    request body service.CreateRecessDTO true "Recess request"
// @Success  201 {object} response.Response
// @Router   /api/requests/recess [post]
func (h *RequestHandler) CreateRecess(c *gin.Context) {
	creatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req service.CreateRecessDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := h.requestService.CreateRecess(c.Request.Context(), creatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// CreateTermination opens a termination request for an active provider
func (h *RequestHandler) CreateTermination(c *gin.Context) {
	creatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req service.CreateTerminationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := h.requestService.CreateTermination(c.Request.Context(), creatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// CreateHiring opens a hiring request for an area
func (h *RequestHandler) CreateHiring(c *gin.Context) {
	creatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req service.CreateHiringDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := h.requestService.CreateHiring(c.Request.Context(), creatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// CreatePurchase opens a purchase request in the creator's own area
func (h *RequestHandler) CreatePurchase(c *gin.Context) {
	creatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req service.CreatePurchaseDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := h.requestService.CreatePurchase(c.Request.Context(), creatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// CreateRemuneration opens a salary change request for an active provider
func (h *RequestHandler) CreateRemuneration(c *gin.Context) {
	creatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req service.CreateRemunerationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := h.requestService.CreateRemuneration(c.Request.Context(), creatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// detail returns a handler serving the request plus its step chain for one
// request type.
func (h *RequestHandler) detail(requestType model.RequestType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		detail, err := h.requestService.GetDetail(c.Request.Context(), requestType, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
	}
}

func (h *RequestHandler) ListRecess(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.requestService.ListRecess(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, items, total, params)
}

func (h *RequestHandler) ListTermination(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.requestService.ListTermination(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, items, total, params)
}

func (h *RequestHandler) ListHiring(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.requestService.ListHiring(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, items, total, params)
}

func (h *RequestHandler) ListPurchase(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.requestService.ListPurchase(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, items, total, params)
}

func (h *RequestHandler) ListRemuneration(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.requestService.ListRemuneration(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, items, total, params)
}

// StartHiringProgress moves an approved hiring from WAITING to IN_PROGRESS
func (h *RequestHandler) StartHiringProgress(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	updated, err := h.hiringService.StartProgress(c.Request.Context(), id, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// CompleteHiring closes an in-progress hiring and creates the provider
func (h *RequestHandler) CompleteHiring(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "not authenticated"))
		return
	}

	var req service.CompleteHiringDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	updated, err := h.hiringService.CompleteHiring(c.Request.Context(), id, actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

func listResponse[T any](c *gin.Context, items []T, total int64, params pagination.Params) {
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, params.Page, params.Limit))
}
