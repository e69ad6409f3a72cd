package patient

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
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error)
}

// RecordService stores medical records, which hang off a patient.
type RecordService interface {
	CreateMedicalRecord(ctx context.Context, patientID uuid.UUID, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error)
	ListMedicalRecords(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
}

type Handler struct {
	service Service
	records RecordService
}

func NewHandler(service Service, records RecordService) *Handler {
	return &Handler{service: service, records: records}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	patients := r.Group("/patients")
	{
		patients.POST("", authz.Require(ability.ActionCreate, ability.SubjectPatient), h.CreatePatient)
		patients.GET("", authz.Require(ability.ActionRead, ability.SubjectPatient), h.ListPatients)
		patients.GET("/:id", authz.Require(ability.ActionRead, ability.SubjectPatient), h.GetPatient)
		patients.PUT("/:id", authz.Require(ability.ActionUpdate, ability.SubjectPatient), h.UpdatePatient)
		patients.DELETE("/:id", authz.Require(ability.ActionDelete, ability.SubjectPatient), h.DeletePatient)

		patients.POST("/:id/records", authz.Require(ability.ActionUpdate, ability.SubjectPatient), h.AddMedicalRecord)
		patients.GET("/:id/records", authz.Require(ability.ActionRead, ability.SubjectPatient), h.ListMedicalRecords)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.PatientFilters
	if !handler.BindQuery(c, &filters) {
		return
	}

	items, total, err := h.service.ListPatients(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, items, filters.Limit, filters.Offset, total)
}

func (h *Handler) AddMedicalRecord(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.CreateMedicalRecordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.records.CreateMedicalRecord(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, record)
}

func (h *Handler) ListMedicalRecords(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	records, err := h.records.ListMedicalRecords(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, records)
}
