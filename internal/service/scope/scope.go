// Package scope resolves which patient and doctor rows a caller is limited to.
package scope

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// Scope is the slice of clinic data a caller may see. Patient and doctor
// role callers are restricted to their own linked record; everyone else is
// not restricted.
type Scope struct {
	Role      model.RoleID
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
}

// AsPatient is true when the caller only sees their own patient record.
func (s Scope) AsPatient() bool { return s.Role == model.RolePatient }

// AsDoctor is true when the caller only sees their own appointments.
func (s Scope) AsDoctor() bool { return s.Role == model.RoleDoctor }

// Empty reports a restricted caller with no linked record, who sees nothing.
func (s Scope) Empty() bool {
	return (s.AsPatient() && s.PatientID == nil) || (s.AsDoctor() && s.DoctorID == nil)
}

// OwnsPatient reports whether the caller may see rows for patientID.
func (s Scope) OwnsPatient(patientID uuid.UUID) bool {
	if !s.AsPatient() {
		return true
	}
	return s.PatientID != nil && *s.PatientID == patientID
}

// OwnsDoctor reports whether the caller may see rows for doctorID.
func (s Scope) OwnsDoctor(doctorID uuid.UUID) bool {
	if !s.AsDoctor() {
		return true
	}
	return s.DoctorID != nil && *s.DoctorID == doctorID
}

type Resolver struct {
	users repository.UserRepository
}

func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve looks up the caller's links. Only patient and doctor roles hit the
// database.
func (r *Resolver) Resolve(ctx context.Context, p *ability.Principal) (Scope, error) {
	s := Scope{Role: p.RoleID}
	if !s.AsPatient() && !s.AsDoctor() {
		return s, nil
	}
	if p.UserID == uuid.Nil {
		return s, nil
	}

	links, err := r.users.GetLinks(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return s, nil
		}
		return s, fmt.Errorf("failed to resolve caller scope: %w", err)
	}
	s.PatientID = links.PatientID
	s.DoctorID = links.DoctorID
	return s, nil
}
