package rbac

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	ListRoles(ctx context.Context) ([]*model.Role, error)
	Grants(ctx context.Context, role model.RoleID) ([]model.RolePermission, error)
	ReplaceGrants(ctx context.Context, role model.RoleID, grants []model.RolePermission) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes exposes roles to user administrators. Rewriting a role's
// grants changes what everyone in it can do, so it needs {manage, all}.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	roles := r.Group("/roles")
	{
		roles.GET("", authz.Require(ability.ActionRead, ability.SubjectUser), h.ListRoles)
		roles.GET("/:id/grants", authz.Require(ability.ActionRead, ability.SubjectUser), h.ListGrants)
		roles.PUT("/:id/grants", authz.Require(ability.ActionManage, ability.SubjectAll), h.ReplaceGrants)
	}
}

func parseRole(c *gin.Context) (model.RoleID, bool) {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil || !model.RoleID(n).Valid() {
		httputil.RespondWithError(c, errors.Validation("invalid role id"))
		return 0, false
	}
	return model.RoleID(n), true
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, roles)
}

func (h *Handler) ListGrants(c *gin.Context) {
	role, ok := parseRole(c)
	if !ok {
		return
	}

	grants, err := h.service.Grants(c.Request.Context(), role)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, grants)
}

func (h *Handler) ReplaceGrants(c *gin.Context) {
	role, ok := parseRole(c)
	if !ok {
		return
	}
	var req model.ReplaceGrantsRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.service.ReplaceGrants(c.Request.Context(), role, req.Grants); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
