package handler

import (
	"net/http"

	"backend/pkg/apperrors"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps the service error taxonomy onto HTTP status codes. The
// engine surfaces errors verbatim; translation to transport lives here only.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsAlreadyProcessed(err):
		status = http.StatusConflict
	case apperrors.IsPermission(err):
		status = http.StatusForbidden
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	}
	c.JSON(status, response.Error(status, err.Error()))
}

// currentUserID extracts the authenticated user's id injected by the auth
// middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get("userID")
	if !ok {
		return uuid.Nil, false
	}
	str, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a uuid path parameter, writing a 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
