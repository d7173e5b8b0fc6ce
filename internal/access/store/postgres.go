package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"soulbound/internal/access/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
)

// Postgres persists access grants in PostgreSQL. The first_granted_at
// column is fixed at insert and never updated, giving ListViewers its
// stable first-grant ordering across renewals and revocations.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed grant store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Upsert creates or replaces the grant for the (credential, viewer) pair.
func (s *Postgres) Upsert(ctx context.Context, grant *models.Grant) error {
	if grant == nil {
		return fmt.Errorf("grant is required")
	}
	query := `
		INSERT INTO access_grants (credential_id, viewer, has_access, granted_at, expires_at, first_granted_at)
		VALUES ($1, $2, $3, $4, $5, $4)
		ON CONFLICT (credential_id, viewer)
		DO UPDATE SET has_access = EXCLUDED.has_access,
			granted_at = EXCLUDED.granted_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uint64(grant.CredentialID),
		grant.Viewer.String(),
		grant.HasAccess,
		grant.GrantedAt,
		nullableTime(grant.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

// Find retrieves the grant for the pair.
func (s *Postgres) Find(ctx context.Context, id domain.CredentialID, viewer domain.Identity) (*models.Grant, error) {
	query := `
		SELECT credential_id, viewer, has_access, granted_at, expires_at
		FROM access_grants
		WHERE credential_id = $1 AND viewer = $2
	`
	var record models.Grant
	var credentialID uint64
	var viewerCol string
	var expiresAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, uint64(id), viewer.String()).Scan(
		&credentialID, &viewerCol, &record.HasAccess, &record.GrantedAt, &expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find grant: %w", err)
	}
	record.CredentialID = domain.CredentialID(credentialID)
	record.Viewer = domain.Identity(viewerCol)
	if expiresAt.Valid {
		record.ExpiresAt = expiresAt.Time
	}
	return &record, nil
}

// ListViewers returns every viewer ever granted access, in first-grant
// order.
func (s *Postgres) ListViewers(ctx context.Context, id domain.CredentialID) ([]domain.Identity, error) {
	query := `
		SELECT viewer
		FROM access_grants
		WHERE credential_id = $1
		ORDER BY first_granted_at, viewer
	`
	rows, err := s.db.QueryContext(ctx, query, uint64(id))
	if err != nil {
		return nil, fmt.Errorf("list viewers: %w", err)
	}
	defer rows.Close()

	var out []domain.Identity
	for rows.Next() {
		var viewer string
		if err := rows.Scan(&viewer); err != nil {
			return nil, fmt.Errorf("scan viewer: %w", err)
		}
		out = append(out, domain.Identity(viewer))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list viewers: %w", err)
	}
	return out, nil
}

// DeleteByCredential removes every grant for the credential.
func (s *Postgres) DeleteByCredential(ctx context.Context, id domain.CredentialID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM access_grants WHERE credential_id = $1`, uint64(id))
	if err != nil {
		return fmt.Errorf("delete grants: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
