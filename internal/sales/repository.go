package sales

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `id, sale_date, buyer_name, document_number, sale_amount,
	cost_amount, shipping_cost, gst_amount, notes, created_at, updated_at`

// Create inserts a new sale.
func (r *Repository) Create(ctx context.Context, input CreateSaleInput) (*Sale, error) {
	query := `
		INSERT INTO sales (
			sale_date, buyer_name, document_number, sale_amount,
			cost_amount, shipping_cost, gst_amount, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + saleColumns

	return scanSale(r.pool.QueryRow(ctx, query,
		input.SaleDate, input.BuyerName, input.DocumentNumber,
		input.SaleAmount, input.CostAmount, input.ShippingCost,
		input.GSTAmount, input.Notes,
	))
}

// Get retrieves a sale by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	s, err := scanSale(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

// List returns sales in the half-open range [From, To), newest first.
func (r *Repository) List(ctx context.Context, req ListSalesRequest) ([]Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []any{}
	argNum := 1

	if !req.From.IsZero() {
		query += fmt.Sprintf(" AND sale_date >= $%d", argNum)
		args = append(args, req.From)
		argNum++
	}
	if !req.To.IsZero() {
		query += fmt.Sprintf(" AND sale_date < $%d", argNum)
		args = append(args, req.To)
		argNum++
	}
	query += " ORDER BY sale_date DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}
	return sales, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*Sale, error) {
	var s Sale
	var saleAmount, cost, shipping, gst pgtype.Numeric

	err := row.Scan(
		&s.ID, &s.SaleDate, &s.BuyerName, &s.DocumentNumber,
		&saleAmount, &cost, &shipping, &gst, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.SaleAmount = numericToDecimal(saleAmount)
	s.CostAmount = numericToDecimal(cost)
	s.ShippingCost = numericToDecimal(shipping)
	s.GSTAmount = numericToDecimal(gst)
	return &s, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
