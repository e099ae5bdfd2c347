package postgres

import (
	"context"
	"database/sql"

	"lend/internal/domain"
	"lend/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type KYCRepository struct {
	db *sqlx.DB
}

func NewKYCRepository(db *sqlx.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

func (r *KYCRepository) Create(ctx context.Context, rec *domain.KYCRecord) error {
	query := `
		INSERT INTO kyc_records (
			id, application_id, status, rekyc_required, verified_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ApplicationID, rec.Status, rec.ReKYCRequired, rec.VerifiedAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create KYC record")
	}
	return nil
}

func (r *KYCRepository) GetKYCStatus(ctx context.Context, applicationID uuid.UUID) (*domain.KYCRecord, error) {
	var rec domain.KYCRecord
	query := `
		SELECT id, application_id, status, rekyc_required, verified_at, created_at, updated_at
		FROM kyc_records WHERE application_id = $1`

	err := r.db.GetContext(ctx, &rec, query, applicationID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrKYCRecordNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find KYC record")
	}
	return &rec, nil
}

// SetReKYCRequired flips the admin-forced re-verification flag.
func (r *KYCRepository) SetReKYCRequired(ctx context.Context, applicationID uuid.UUID, required bool) error {
	query := `UPDATE kyc_records SET rekyc_required = $2, updated_at = NOW() WHERE application_id = $1`

	result, err := r.db.ExecContext(ctx, query, applicationID, required)
	if err != nil {
		return errors.Wrap(err, "failed to update rekyc flag")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrKYCRecordNotFound
	}
	return nil
}
