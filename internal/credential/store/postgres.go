package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"soulbound/internal/credential/models"
	"soulbound/internal/sentinel"
	"soulbound/pkg/domain"
)

// Postgres persists credentials in PostgreSQL. Identifiers come from a
// single-row counter table updated in the same transaction as the insert,
// so they are sequential with no gaps even across concurrent issuance.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Create assigns the next identifier and persists the credential atomically.
func (s *Postgres) Create(ctx context.Context, credential *models.Credential) (domain.CredentialID, error) {
	if credential == nil {
		return 0, fmt.Errorf("credential is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin issuance tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Ids start at zero; the counter row advances only inside a committed
	// issuance transaction, so failed issuance leaves no gap.
	var id uint64
	err = tx.QueryRowContext(ctx, `
		UPDATE credential_counter
		SET next_id = next_id + 1
		RETURNING next_id - 1
	`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("advance credential counter: %w", err)
	}

	var studentID, grade, personalData []byte
	if credential.PrivateData != nil {
		studentID = credential.PrivateData.StudentID
		grade = credential.PrivateData.Grade
		personalData = credential.PrivateData.PersonalData
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (
			id, issuer, holder, issued_at,
			credential_type, achievement_name, achievement_description, metadata_uri,
			has_private_data, student_id, grade, personal_data,
			revoked, revoked_at, revoked_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		id,
		credential.Issuer.String(),
		credential.Holder.String(),
		credential.IssuedAt,
		credential.CredentialType,
		credential.AchievementName,
		credential.AchievementDescription,
		credential.MetadataURI,
		credential.HasPrivateData,
		studentID,
		grade,
		personalData,
		credential.Revoked,
		nullableTime(credential.RevokedAt),
		nullableIdentity(credential.RevokedBy),
	)
	if err != nil {
		return 0, fmt.Errorf("insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit issuance tx: %w", err)
	}
	return domain.CredentialID(id), nil
}

// FindByID retrieves a credential by identifier.
func (s *Postgres) FindByID(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	query := `
		SELECT id, issuer, holder, issued_at,
			credential_type, achievement_name, achievement_description, metadata_uri,
			has_private_data, student_id, grade, personal_data,
			revoked, revoked_at, revoked_by
		FROM credentials
		WHERE id = $1
	`
	record, err := scanCredential(s.db.QueryRowContext(ctx, query, uint64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return record, nil
}

// Update persists the mutable revocation fields. Descriptive fields are
// immutable after issuance and deliberately not part of the statement.
func (s *Postgres) Update(ctx context.Context, credential *models.Credential) error {
	if credential == nil {
		return fmt.Errorf("credential is required")
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE credentials
		SET revoked = $2, revoked_at = $3, revoked_by = $4
		WHERE id = $1
	`,
		uint64(credential.ID),
		credential.Revoked,
		nullableTime(credential.RevokedAt),
		nullableIdentity(credential.RevokedBy),
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes the credential and rolls the counter back when the
// credential still holds the top identifier. Both run in one transaction so
// a rolled-back issuance consumes no id.
func (s *Postgres) Delete(ctx context.Context, id domain.CredentialID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, uint64(id))
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE credential_counter
		SET next_id = next_id - 1
		WHERE next_id = $1 + 1
	`, uint64(id))
	if err != nil {
		return fmt.Errorf("roll back credential counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// Count returns the number of credentials ever issued.
func (s *Postgres) Count(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.db.QueryRowContext(ctx, `SELECT next_id FROM credential_counter`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return count, nil
}

type row interface {
	Scan(dest ...any) error
}

func scanCredential(r row) (*models.Credential, error) {
	var record models.Credential
	var id uint64
	var issuer, holder string
	var studentID, grade, personalData []byte
	var revokedAt sql.NullTime
	var revokedBy sql.NullString
	err := r.Scan(
		&id, &issuer, &holder, &record.IssuedAt,
		&record.CredentialType, &record.AchievementName, &record.AchievementDescription, &record.MetadataURI,
		&record.HasPrivateData, &studentID, &grade, &personalData,
		&record.Revoked, &revokedAt, &revokedBy,
	)
	if err != nil {
		return nil, err
	}
	record.ID = domain.CredentialID(id)
	record.Issuer = domain.Identity(issuer)
	record.Holder = domain.Identity(holder)
	if record.HasPrivateData {
		record.PrivateData = &models.PrivateData{
			StudentID:    studentID,
			Grade:        grade,
			PersonalData: personalData,
		}
	}
	if revokedAt.Valid {
		record.RevokedAt = revokedAt.Time
	}
	if revokedBy.Valid {
		record.RevokedBy = domain.Identity(revokedBy.String)
	}
	return &record, nil
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullableIdentity(identity domain.Identity) sql.NullString {
	return sql.NullString{String: identity.String(), Valid: !identity.IsZero()}
}
