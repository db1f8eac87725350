package recipients

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for recipient profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, company_name, contact_name, email, phone,
	address_line1, address_line2, city, state, country, postal_code,
	created_at, updated_at`

// Create inserts a new profile.
func (r *Repository) Create(ctx context.Context, input CreateProfileInput) (*Profile, error) {
	query := `
		INSERT INTO recipients (
			company_name, contact_name, email, phone,
			address_line1, address_line2, city, state, country, postal_code,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + profileColumns

	return scanProfile(r.pool.QueryRow(ctx, query,
		input.CompanyName, input.ContactName, input.Email, input.Phone,
		input.AddressLine1, input.AddressLine2, input.City, input.State,
		input.Country, input.PostalCode,
	))
}

// Update replaces an existing profile.
func (r *Repository) Update(ctx context.Context, id int64, input CreateProfileInput) (*Profile, error) {
	query := `
		UPDATE recipients SET
			company_name = $2, contact_name = $3, email = $4, phone = $5,
			address_line1 = $6, address_line2 = $7, city = $8, state = $9,
			country = $10, postal_code = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(r.pool.QueryRow(ctx, query, id,
		input.CompanyName, input.ContactName, input.Email, input.Phone,
		input.AddressLine1, input.AddressLine2, input.City, input.State,
		input.Country, input.PostalCode,
	))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// Get retrieves a profile by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM recipients WHERE id = $1`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns profiles ordered by company name, optionally filtered by a
// case-insensitive substring of the company name.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM recipients WHERE 1=1`
	args := []any{}
	argNum := 1

	if search != "" {
		query += fmt.Sprintf(" AND company_name ILIKE $%d", argNum)
		args = append(args, "%"+search+"%")
		argNum++
	}
	query += " ORDER BY company_name"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.CompanyName, &p.ContactName, &p.Email, &p.Phone,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.Country,
		&p.PostalCode, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
