package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository provides PostgreSQL backed persistence for the stock.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const diamondColumns = `id, stock_ref, shape, carat, color, clarity, cut, lab,
	report_no, price_per_carat, status, location, created_at, updated_at`

// Create inserts a new stone with AVAILABLE status.
func (r *Repository) Create(ctx context.Context, input CreateDiamondInput) (*Diamond, error) {
	query := `
		INSERT INTO diamonds (
			stock_ref, shape, carat, color, clarity, cut, lab, report_no,
			price_per_carat, status, location, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'AVAILABLE', $10, NOW(), NOW())
		RETURNING ` + diamondColumns

	return scanDiamond(r.pool.QueryRow(ctx, query,
		input.StockRef, input.Shape, input.Carat, input.Color, input.Clarity,
		input.Cut, input.Lab, input.ReportNo, input.PricePerCarat, input.Location,
	))
}

// Get retrieves a stone by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Diamond, error) {
	query := `SELECT ` + diamondColumns + ` FROM diamonds WHERE id = $1`
	d, err := scanDiamond(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

// UpdateStatus moves a stone through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE diamonds SET status = $2, updated_at = NOW() WHERE id = $1",
		id, string(status),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns stones matching the filter ordered by carat descending.
func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]Diamond, error) {
	query := `SELECT ` + diamondColumns + ` FROM diamonds WHERE 1=1`
	args := []any{}
	argNum := 1

	addEq := func(column, value string) {
		if value == "" {
			return
		}
		query += fmt.Sprintf(" AND %s = $%d", column, argNum)
		args = append(args, value)
		argNum++
	}
	addEq("shape", filter.Shape)
	addEq("color", filter.Color)
	addEq("clarity", filter.Clarity)
	addEq("lab", filter.Lab)
	addEq("status", string(filter.Status))

	addRange := func(column, op string, value decimal.Decimal) {
		if value.IsZero() {
			return
		}
		query += fmt.Sprintf(" AND %s %s $%d", column, op, argNum)
		args = append(args, value)
		argNum++
	}
	addRange("carat", ">=", filter.MinCarat)
	addRange("carat", "<=", filter.MaxCarat)
	addRange("price_per_carat", ">=", filter.MinPrice)
	addRange("price_per_carat", "<=", filter.MaxPrice)

	query += " ORDER BY carat DESC, id"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stones []Diamond
	for rows.Next() {
		d, err := scanDiamond(rows)
		if err != nil {
			return nil, err
		}
		stones = append(stones, *d)
	}
	return stones, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiamond(row rowScanner) (*Diamond, error) {
	var d Diamond
	var status string
	var carat, price pgtype.Numeric

	err := row.Scan(
		&d.ID, &d.StockRef, &d.Shape, &carat, &d.Color, &d.Clarity, &d.Cut,
		&d.Lab, &d.ReportNo, &price, &status, &d.Location,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = Status(status)
	d.Carat = numericToDecimal(carat)
	d.PricePerCarat = numericToDecimal(price)
	return &d, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
