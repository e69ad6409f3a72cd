package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	Base
	PatientID     uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID      *uuid.UUID      `db:"doctor_id" json:"doctor_id,omitempty"`
	AppointmentID *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	Diagnosis     string          `db:"diagnosis" json:"diagnosis"`
	Treatment     string          `db:"treatment" json:"treatment,omitempty"`
	Prescription  json.RawMessage `db:"prescription" json:"prescription,omitempty"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	CreatedBy     uuid.UUID       `db:"created_by" json:"created_by"`
}

type Medication struct {
	Name     string `json:"name" binding:"required"`
	Dosage   string `json:"dosage"`
	Schedule string `json:"schedule"`
}

type CreateMedicalRecordRequest struct {
	DoctorID      *uuid.UUID   `json:"doctor_id"`
	AppointmentID *uuid.UUID   `json:"appointment_id"`
	Diagnosis     string       `json:"diagnosis" binding:"required"`
	Treatment     string       `json:"treatment"`
	Medications   []Medication `json:"medications" binding:"dive"`
	Notes         string       `json:"notes" binding:"max=4000"`
}
