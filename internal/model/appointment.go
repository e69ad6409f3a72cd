package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	Base
	Charge
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date      string            `db:"appointment_date" json:"date"`
	Time      string            `db:"appointment_time" json:"time"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID   uuid.UUID       `json:"patient_id" binding:"required"`
	DoctorID    uuid.UUID       `json:"doctor_id" binding:"required"`
	Date        string          `json:"date" binding:"required"`
	Time        string          `json:"time" binding:"required"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Date        *string            `json:"date"`
	Time        *string            `json:"time"`
	Status      *AppointmentStatus `json:"status" binding:"omitempty,appointment_status"`
	Notes       *string            `json:"notes" binding:"omitempty,max=1000"`
	TotalAmount *decimal.Decimal   `json:"total_amount"`
}

type AppointmentFilters struct {
	PatientID     uuid.UUID         `form:"-"`
	DoctorID      uuid.UUID         `form:"-"`
	Status        AppointmentStatus `form:"status" binding:"omitempty,appointment_status"`
	PaymentStatus PaymentStatus     `form:"payment_status" binding:"omitempty,payment_status"`
	Date          string            `form:"date"`
	Pagination
}
