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

const invoiceColumns = `
	id, number, patient_id, appointment_id, due_date, description,
	total_amount, paid_amount, payment_status, payment_date,
	created_at, updated_at
`

func (r *invoiceRepository) Create(ctx context.Context, inv *model.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, number, patient_id, appointment_id, due_date, description,
			total_amount, paid_amount, payment_status, payment_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.Number,
		inv.PatientID,
		inv.AppointmentID,
		inv.DueDate,
		inv.Description,
		inv.TotalAmount,
		inv.PaidAmount,
		inv.PaymentStatus,
		inv.PaymentDate,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", translate(err, "invoice"))
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv model.Invoice
	if err := r.db.GetContext(ctx, &inv, query, id); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", translate(err, "invoice"))
	}
	return &inv, nil
}

// Update runs fn against the row under FOR UPDATE and writes the result back.
// A stored payment date is kept even if fn clears it.
func (r *invoiceRepository) Update(ctx context.Context, id uuid.UUID, fn repository.InvoiceMutation) (*model.Invoice, error) {
	query := `
		UPDATE invoices
		SET due_date = $1, description = $2, total_amount = $3, paid_amount = $4,
			payment_status = $5, payment_date = COALESCE(payment_date, $6), updated_at = $7
		WHERE id = $8
		RETURNING payment_date
	`

	var inv model.Invoice
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		lock := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &inv, lock, id); err != nil {
			return translate(err, "invoice")
		}

		event, err := fn(&inv)
		if err != nil {
			return err
		}
		inv.UpdatedAt = time.Now()

		err = tx.GetContext(ctx, &inv.PaymentDate, query,
			inv.DueDate,
			inv.Description,
			inv.TotalAmount,
			inv.PaidAmount,
			inv.PaymentStatus,
			inv.PaymentDate,
			inv.UpdatedAt,
			inv.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", translate(err, "invoice"))
		}

		if event != nil {
			return insertOutbox(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", translateDelete(err, "invoice"))
	}
	return expectOne(result, "invoice")
}

func (r *invoiceRepository) List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, int64, error) {
	var w where
	if filters.PatientID != uuid.Nil {
		w.add("patient_id = $%d", filters.PatientID)
	}
	if filters.PaymentStatus != "" {
		w.add("payment_status = $%d", filters.PaymentStatus)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM invoices`+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	limit, args := w.page(filters.Limit, filters.Offset)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.String() + ` ORDER BY created_at DESC` + limit

	invoices := []*model.Invoice{}
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, total, nil
}
