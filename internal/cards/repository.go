package cards

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository provides PostgreSQL backed persistence for card transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new transaction.
func (r *Repository) Create(ctx context.Context, input CreateTransactionInput) (*Transaction, error) {
	query := `
		INSERT INTO card_transactions (card_label, tx_date, merchant, amount, category, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`

	tx := Transaction{
		CardLabel: input.CardLabel,
		TxDate:    input.TxDate,
		Merchant:  input.Merchant,
		Amount:    input.Amount,
		Category:  input.Category,
		Notes:     input.Notes,
	}
	err := r.pool.QueryRow(ctx, query,
		input.CardLabel, input.TxDate, input.Merchant, input.Amount, input.Category, input.Notes,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns transactions matching the request, newest first.
func (r *Repository) List(ctx context.Context, req ListTransactionsRequest) ([]Transaction, error) {
	query := `
		SELECT id, card_label, tx_date, merchant, amount, category, notes, created_at
		FROM card_transactions
		WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.CardLabel != "" {
		query += fmt.Sprintf(" AND card_label = $%d", argNum)
		args = append(args, req.CardLabel)
		argNum++
	}
	if !req.From.IsZero() {
		query += fmt.Sprintf(" AND tx_date >= $%d", argNum)
		args = append(args, req.From)
		argNum++
	}
	if !req.To.IsZero() {
		query += fmt.Sprintf(" AND tx_date < $%d", argNum)
		args = append(args, req.To)
		argNum++
	}
	query += " ORDER BY tx_date DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		var amount pgtype.Numeric
		err := rows.Scan(&tx.ID, &tx.CardLabel, &tx.TxDate, &tx.Merchant, &amount, &tx.Category, &tx.Notes, &tx.CreatedAt)
		if err != nil {
			return nil, err
		}
		if amount.Valid && amount.Int != nil {
			tx.Amount = decimal.NewFromBigInt(amount.Int, amount.Exp)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
