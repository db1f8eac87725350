package vendors

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository provides PostgreSQL backed persistence for vendor purchases.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const purchaseColumns = `id, vendor_name, invoice_ref, purchase_date, amount,
	paid, notes, created_at, updated_at`

// CreatePurchase inserts a new supplier invoice.
func (r *Repository) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*Purchase, error) {
	query := `
		INSERT INTO vendor_purchases (
			vendor_name, invoice_ref, purchase_date, amount, paid, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, FALSE, $5, NOW(), NOW())
		RETURNING ` + purchaseColumns

	return scanPurchase(r.pool.QueryRow(ctx, query,
		input.VendorName, input.InvoiceRef, input.PurchaseDate, input.Amount, input.Notes,
	))
}

// GetPurchase retrieves a purchase by ID.
func (r *Repository) GetPurchase(ctx context.Context, id int64) (*Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM vendor_purchases WHERE id = $1`
	p, err := scanPurchase(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// ListPurchases returns purchases, newest first.
func (r *Repository) ListPurchases(ctx context.Context, vendor string, limit, offset int) ([]Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM vendor_purchases WHERE 1=1`
	args := []any{}
	argNum := 1

	if vendor != "" {
		query += fmt.Sprintf(" AND vendor_name ILIKE $%d", argNum)
		args = append(args, "%"+vendor+"%")
		argNum++
	}
	query += " ORDER BY purchase_date DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

// SetPaid updates the paid flag.
func (r *Repository) SetPaid(ctx context.Context, id int64, paid bool) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE vendor_purchases SET paid = $2, updated_at = NOW() WHERE id = $1",
		id, paid,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePayment inserts a remittance.
func (r *Repository) CreatePayment(ctx context.Context, input RecordPaymentInput) (*Payment, error) {
	query := `
		INSERT INTO vendor_payments (purchase_id, amount, paid_at, method, note, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`

	p := Payment{
		PurchaseID: input.PurchaseID,
		Amount:     input.Amount,
		PaidAt:     input.PaidAt,
		Method:     input.Method,
		Note:       input.Note,
	}
	err := r.pool.QueryRow(ctx, query,
		input.PurchaseID, input.Amount, input.PaidAt, input.Method, input.Note,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SumPayments totals the remittances recorded against a purchase.
func (r *Repository) SumPayments(ctx context.Context, purchaseID int64) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM vendor_payments WHERE purchase_id = $1",
		purchaseID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(total), nil
}

// ListPayments returns remittances for a purchase, oldest first.
func (r *Repository) ListPayments(ctx context.Context, purchaseID int64) ([]Payment, error) {
	query := `
		SELECT id, purchase_id, amount, paid_at, method, note, created_at
		FROM vendor_payments
		WHERE purchase_id = $1
		ORDER BY paid_at, id`

	rows, err := r.pool.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var amount pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.PurchaseID, &amount, &p.PaidAt, &p.Method, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Amount = numericToDecimal(amount)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// OutstandingByVendor aggregates unpaid purchases net of payments.
func (r *Repository) OutstandingByVendor(ctx context.Context) ([]Balance, error) {
	query := `
		SELECT p.vendor_name,
			SUM(p.amount) AS total_purchased,
			COALESCE(SUM(pay.paid), 0) AS total_paid,
			SUM(p.amount) - COALESCE(SUM(pay.paid), 0) AS outstanding
		FROM vendor_purchases p
		LEFT JOIN (
			SELECT purchase_id, SUM(amount) AS paid
			FROM vendor_payments
			GROUP BY purchase_id
		) pay ON pay.purchase_id = p.id
		WHERE NOT p.paid
		GROUP BY p.vendor_name
		HAVING SUM(p.amount) - COALESCE(SUM(pay.paid), 0) > 0
		ORDER BY outstanding DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		var purchased, paid, outstanding pgtype.Numeric
		if err := rows.Scan(&b.VendorName, &purchased, &paid, &outstanding); err != nil {
			return nil, err
		}
		b.TotalPurchased = numericToDecimal(purchased)
		b.TotalPaid = numericToDecimal(paid)
		b.Outstanding = numericToDecimal(outstanding)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (*Purchase, error) {
	var p Purchase
	var amount pgtype.Numeric

	err := row.Scan(
		&p.ID, &p.VendorName, &p.InvoiceRef, &p.PurchaseDate, &amount,
		&p.Paid, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Amount = numericToDecimal(amount)
	return &p, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
