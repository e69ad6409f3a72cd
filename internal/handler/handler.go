// Package handler holds the helpers shared by the per-resource HTTP
// handlers.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// ParseID reads a uuid path parameter. On failure it writes a 400 and
// returns false.
func ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid %s", param))
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUID reads an optional uuid query parameter. A missing value yields
// uuid.Nil; a malformed one writes a 400 and returns false.
func QueryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON decodes the body into obj, writing a 400 with per-field messages
// when it does not validate.
func BindJSON(c *gin.Context, obj interface{}) bool {
	return bindWith(c, c.ShouldBindJSON(obj))
}

// BindQuery is BindJSON for query strings.
func BindQuery(c *gin.Context, obj interface{}) bool {
	return bindWith(c, c.ShouldBindQuery(obj))
}

func bindWith(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if fields := middleware.FieldErrors(err); fields != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, httputil.Response{
			Status:  "error",
			Message: "validation failed",
			Data:    fields,
		})
		return false
	}
	httputil.RespondWithError(c, errors.BadRequest("malformed request", err))
	return false
}
