package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"soulbound/internal/registry/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
)

// Postgres persists the institution allowlist in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed allowlist store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Upsert creates or replaces the allowlist entry.
func (s *Postgres) Upsert(ctx context.Context, institution *models.Institution) error {
	if institution == nil {
		return fmt.Errorf("institution is required")
	}
	query := `
		INSERT INTO institutions (identity, authorized, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity)
		DO UPDATE SET authorized = EXCLUDED.authorized, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		institution.Identity.String(),
		institution.Authorized,
		institution.CreatedAt,
		institution.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert institution: %w", err)
	}
	return nil
}

// Find retrieves an allowlist entry by identity.
func (s *Postgres) Find(ctx context.Context, identity domain.Identity) (*models.Institution, error) {
	query := `
		SELECT identity, authorized, created_at, updated_at
		FROM institutions
		WHERE identity = $1
	`
	record, err := scanInstitution(s.db.QueryRowContext(ctx, query, identity.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find institution: %w", err)
	}
	return record, nil
}

// List returns all entries ordered by identity.
func (s *Postgres) List(ctx context.Context) ([]*models.Institution, error) {
	query := `
		SELECT identity, authorized, created_at, updated_at
		FROM institutions
		ORDER BY identity
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	defer rows.Close()

	var out []*models.Institution
	for rows.Next() {
		record, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan institution: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return out, nil
}

type row interface {
	Scan(dest ...any) error
}

func scanInstitution(r row) (*models.Institution, error) {
	var record models.Institution
	var identity string
	if err := r.Scan(&identity, &record.Authorized, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	record.Identity = domain.Identity(identity)
	return &record, nil
}
