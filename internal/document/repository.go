package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/facet-erp/facet-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for documents.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

// CreateDocument inserts the header and its line items in one transaction.
// The unique index on (kind, number) turns a lost number race into
// ErrNumberConflict so the service can retry.
func (r *Repository) CreateDocument(ctx context.Context, rec Record) (*Record, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO documents (
				kind, number, issued_at, due_at, payment_terms_days, recipient_id,
				description, shipment_cost, discount, collected_payment, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING id, created_at, updated_at`

		var dueAt pgtype.Timestamptz
		if !rec.Snapshot.Header.DueDate.IsZero() {
			dueAt = pgtype.Timestamptz{Time: rec.Snapshot.Header.DueDate, Valid: true}
		}

		err := tx.QueryRow(ctx, query,
			string(rec.Snapshot.Kind),
			rec.Snapshot.Header.Number,
			rec.Snapshot.Header.Date,
			dueAt,
			rec.Snapshot.Header.PaymentTermsDays,
			rec.RecipientID,
			rec.Snapshot.Header.Description,
			rec.Snapshot.Header.ShipmentCost,
			rec.Snapshot.Header.Discount,
			rec.Snapshot.Header.CollectedPayment,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return err
		}

		lineQuery := `
			INSERT INTO document_items (
				document_id, position, description, carat, color, clarity, lab,
				report_no, price_per_carat, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`

		for i, item := range rec.Snapshot.Items {
			_, err := tx.Exec(ctx, lineQuery,
				rec.ID, i,
				item.Description, item.Carat, item.Color, item.Clarity,
				item.Lab, item.ReportNo, item.PricePerCarat,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrNumberConflict
		}
		return nil, err
	}
	return &rec, nil
}

// GetDocument retrieves a document and its items by ID.
func (r *Repository) GetDocument(ctx context.Context, id int64) (*Record, error) {
	query := `
		SELECT id, kind, number, issued_at, due_at, payment_terms_days, recipient_id,
			description, shipment_cost, discount, collected_payment, created_at, updated_at
		FROM documents
		WHERE id = $1`

	rec, err := scanDocument(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Snapshot.Items = items
	return rec, nil
}

// ListDocuments returns documents matching the request, newest first.
// Items are not loaded for listings.
func (r *Repository) ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]Record, error) {
	query := `
		SELECT id, kind, number, issued_at, due_at, payment_terms_days, recipient_id,
			description, shipment_cost, discount, collected_payment, created_at, updated_at
		FROM documents
		WHERE 1=1`

	args := []any{}
	argNum := 1

	if req.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, string(req.Kind))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// LastNumber returns the most recently issued number for a kind, or "" when
// none has been issued yet.
func (r *Repository) LastNumber(ctx context.Context, kind Kind) (string, error) {
	var number string
	err := r.pool.QueryRow(ctx,
		"SELECT number FROM documents WHERE kind = $1 ORDER BY id DESC LIMIT 1",
		string(kind),
	).Scan(&number)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return number, err
}

func (r *Repository) listItems(ctx context.Context, documentID int64) ([]LineItem, error) {
	query := `
		SELECT description, carat, color, clarity, lab, report_no, price_per_carat
		FROM document_items
		WHERE document_id = $1
		ORDER BY position`

	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var item LineItem
		var carat, price pgtype.Numeric
		err := rows.Scan(
			&item.Description, &carat, &item.Color, &item.Clarity,
			&item.Lab, &item.ReportNo, &price,
		)
		if err != nil {
			return nil, err
		}
		item.Carat = numericToDecimal(carat)
		item.PricePerCarat = numericToDecimal(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Record, error) {
	var rec Record
	var kind string
	var dueAt pgtype.Timestamptz
	var shipment, discount, collected pgtype.Numeric

	err := row.Scan(
		&rec.ID, &kind, &rec.Snapshot.Header.Number, &rec.Snapshot.Header.Date,
		&dueAt, &rec.Snapshot.Header.PaymentTermsDays, &rec.RecipientID,
		&rec.Snapshot.Header.Description, &shipment, &discount, &collected,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Snapshot.Kind = Kind(kind)
	if dueAt.Valid {
		rec.Snapshot.Header.DueDate = dueAt.Time
	}
	rec.Snapshot.Header.ShipmentCost = numericToDecimal(shipment)
	rec.Snapshot.Header.Discount = numericToDecimal(discount)
	rec.Snapshot.Header.CollectedPayment = numericToDecimal(collected)
	return &rec, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
