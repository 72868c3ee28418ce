package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

type vendorPaymentRepository struct {
	db *DB
}

func NewVendorPaymentRepository(db *DB) *vendorPaymentRepository {
	return &vendorPaymentRepository{db: db}
}

func (r *vendorPaymentRepository) ListVendorPayments(ctx context.Context, userID int64) ([]domain.VendorPayment, error) {
	query := `
		SELECT id, user_id, vendor, amount, due_date, paid_date, on_time
		FROM vendor_payments
		WHERE user_id = $1
		ORDER BY due_date
	`

	var payments []domain.VendorPayment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list vendor payments: %w", err)
	}
	return payments, nil
}

func (r *vendorPaymentRepository) CreateVendorPayment(ctx context.Context, p *domain.VendorPayment) error {
	query := `
		INSERT INTO vendor_payments (user_id, vendor, amount, due_date, paid_date, on_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, p.UserID, p.Vendor, p.Amount, p.DueDate, p.PaidDate, p.OnTime).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to insert vendor payment: %w", err)
	}
	return nil
}
