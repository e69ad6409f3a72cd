package invoice

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, req *model.UpdateInvoiceRequest) (*model.Invoice, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	ListInvoices(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, int64, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	invoices := r.Group("/invoices")
	{
		invoices.POST("", authz.Require(ability.ActionCreate, ability.SubjectInvoices), h.CreateInvoice)
		invoices.GET("", authz.Require(ability.ActionRead, ability.SubjectInvoices), h.ListInvoices)
		invoices.GET("/:id", authz.Require(ability.ActionRead, ability.SubjectInvoices), h.GetInvoice)
		invoices.PUT("/:id", authz.Require(ability.ActionUpdate, ability.SubjectInvoices), h.UpdateInvoice)
		invoices.PUT("/:id/payment", authz.Require(ability.ActionUpdate, ability.SubjectInvoices), h.UpdatePayment)
		invoices.DELETE("/:id", authz.Require(ability.ActionDelete, ability.SubjectInvoices), h.DeleteInvoice)
	}
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req model.CreateInvoiceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, inv)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, inv)
}

func (h *Handler) UpdateInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateInvoiceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.UpdateInvoice(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, inv)
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.PaymentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.UpdatePayment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, inv)
}

func (h *Handler) DeleteInvoice(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteInvoice(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	var filters model.InvoiceFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	var ok bool
	if filters.PatientID, ok = handler.QueryUUID(c, "patient_id"); !ok {
		return
	}

	items, total, err := h.service.ListInvoices(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, items, filters.Limit, filters.Offset, total)
}
