package postgres

import (
	"context"
	"database/sql"

	"lend/internal/domain"
	"lend/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BankStatementRepository struct {
	db *sqlx.DB
}

func NewBankStatementRepository(db *sqlx.DB) *BankStatementRepository {
	return &BankStatementRepository{db: db}
}

func (r *BankStatementRepository) Create(ctx context.Context, rec *domain.BankStatementRecord) error {
	query := `
		INSERT INTO bank_statements (
			id, user_id, application_id, status, verification_status, user_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.ApplicationID, rec.Status, rec.VerificationStatus, rec.UserStatus,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create bank statement record")
	}
	return nil
}

// GetBankStatementStatus returns the user's most recent record.
func (r *BankStatementRepository) GetBankStatementStatus(ctx context.Context, userID uuid.UUID) (*domain.BankStatementRecord, error) {
	var rec domain.BankStatementRecord
	query := `
		SELECT id, user_id, application_id, status, verification_status, user_status,
			created_at, updated_at
		FROM bank_statements
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &rec, query, userID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrBankStatementNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find bank statement record")
	}
	return &rec, nil
}

// Reset puts the record back into the admin-reset signature so the user is
// routed to re-upload.
func (r *BankStatementRepository) Reset(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE bank_statements SET
			status = $2,
			verification_status = $3,
			user_status = NULL,
			updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, domain.BankStatementPending, domain.VerificationNotStarted)
	if err != nil {
		return errors.Wrap(err, "failed to reset bank statement")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrBankStatementNotFound
	}
	return nil
}

func (r *BankStatementRepository) UpdateVerification(ctx context.Context, userID uuid.UUID, status domain.BankStatementStatus, verification domain.VerificationStatus, userStatus *string) error {
	query := `
		UPDATE bank_statements SET
			status = $2,
			verification_status = $3,
			user_status = $4,
			updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, status, verification, userStatus)
	if err != nil {
		return errors.Wrap(err, "failed to update bank statement verification")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrBankStatementNotFound
	}
	return nil
}
