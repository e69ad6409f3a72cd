package audit

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	r.GET("/audit/logs", authz.Require(ability.ActionManage, ability.SubjectUser), h.ListLogs)
}

func (h *Handler) ListLogs(c *gin.Context) {
	var filters model.AuditFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	userID, ok := handler.QueryUUID(c, "user_id")
	if !ok {
		return
	}
	if userID != uuid.Nil {
		filters.UserID = &userID
	}

	logs, total, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, logs, filters.Limit, filters.Offset, total)
}
