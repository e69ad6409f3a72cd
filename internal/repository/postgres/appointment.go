package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

const appointmentColumns = `
	id, patient_id, doctor_id,
	to_char(appointment_date, 'YYYY-MM-DD') AS appointment_date,
	to_char(appointment_time, 'HH24:MI') AS appointment_time,
	status, notes, total_amount, paid_amount, payment_status, payment_date,
	created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, appointment_date, appointment_time,
			status, notes, total_amount, paid_amount, payment_status, payment_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	now := time.Now()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			apt.ID,
			apt.PatientID,
			apt.DoctorID,
			apt.Date,
			apt.Time,
			apt.Status,
			apt.Notes,
			apt.TotalAmount,
			apt.PaidAmount,
			apt.PaymentStatus,
			apt.PaymentDate,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", translate(err, "appointment"))
		}
		if event != nil {
			return insertOutbox(ctx, tx, event)
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translate(err, "appointment"))
	}
	return &apt, nil
}

func lockAppointment(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`

	var apt model.Appointment
	if err := tx.GetContext(ctx, &apt, query, id); err != nil {
		return nil, translate(err, "appointment")
	}
	return &apt, nil
}

// Update runs fn against the row under FOR UPDATE and writes the result back.
// A stored payment date is kept even if fn clears it.
func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, fn repository.AppointmentMutation) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET appointment_date = $1, appointment_time = $2, status = $3, notes = $4,
			total_amount = $5, paid_amount = $6, payment_status = $7,
			payment_date = COALESCE(payment_date, $8), updated_at = $9
		WHERE id = $10
		RETURNING payment_date
	`

	var apt *model.Appointment
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if apt, err = lockAppointment(ctx, tx, id); err != nil {
			return err
		}

		event, err := fn(apt)
		if err != nil {
			return err
		}
		apt.UpdatedAt = time.Now()

		err = tx.GetContext(ctx, &apt.PaymentDate, query,
			apt.Date,
			apt.Time,
			apt.Status,
			apt.Notes,
			apt.TotalAmount,
			apt.PaidAmount,
			apt.PaymentStatus,
			apt.PaymentDate,
			apt.UpdatedAt,
			apt.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", translate(err, "appointment"))
		}

		if event != nil {
			return insertOutbox(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID, guard func(*model.Appointment) error) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		apt, err := lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(apt); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete appointment: %w", translateDelete(err, "appointment"))
		}
		return expectOne(result, "appointment")
	})
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	var w where
	if filters.PatientID != uuid.Nil {
		w.add("patient_id = $%d", filters.PatientID)
	}
	if filters.DoctorID != uuid.Nil {
		w.add("doctor_id = $%d", filters.DoctorID)
	}
	if filters.Status != "" {
		w.add("status = $%d", filters.Status)
	}
	if filters.PaymentStatus != "" {
		w.add("payment_status = $%d", filters.PaymentStatus)
	}
	if filters.Date != "" {
		w.add("appointment_date = $%d", filters.Date)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointments`+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	limit, args := w.page(filters.Limit, filters.Offset)
	query := `SELECT ` + appointmentColumns + ` FROM appointments` + w.String() +
		` ORDER BY appointment_date DESC, appointment_time DESC` + limit

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}
