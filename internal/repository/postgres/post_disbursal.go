package postgres

import (
	"context"
	"database/sql"

	"lend/internal/domain"
	"lend/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostDisbursalRepository struct {
	db *sqlx.DB
}

func NewPostDisbursalRepository(db *sqlx.DB) *PostDisbursalRepository {
	return &PostDisbursalRepository{db: db}
}

func (r *PostDisbursalRepository) Create(ctx context.Context, p *domain.PostDisbursalProgress) error {
	query := `
		INSERT INTO post_disbursal_progress (
			id, application_id, current_step, selfie_captured, selfie_verified,
			agreement_signed, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ApplicationID, p.CurrentStep, p.SelfieCaptured, p.SelfieVerified,
		p.AgreementSigned, p.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create post-disbursal progress")
	}
	return nil
}

func (r *PostDisbursalRepository) GetPostDisbursalProgress(ctx context.Context, applicationID uuid.UUID) (*domain.PostDisbursalProgress, error) {
	var p domain.PostDisbursalProgress
	query := `
		SELECT id, application_id, current_step, selfie_captured, selfie_verified,
			agreement_signed, updated_at
		FROM post_disbursal_progress WHERE application_id = $1`

	err := r.db.GetContext(ctx, &p, query, applicationID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrProgressNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find post-disbursal progress")
	}
	return &p, nil
}

func (r *PostDisbursalRepository) UpdateStep(ctx context.Context, applicationID uuid.UUID, step int) error {
	query := `UPDATE post_disbursal_progress SET current_step = $2, updated_at = NOW() WHERE application_id = $1`

	result, err := r.db.ExecContext(ctx, query, applicationID, step)
	if err != nil {
		return errors.Wrap(err, "failed to update post-disbursal step")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrProgressNotFound
	}
	return nil
}

func (r *PostDisbursalRepository) UpdateSelfie(ctx context.Context, applicationID uuid.UUID, captured, verified bool) error {
	query := `
		UPDATE post_disbursal_progress SET
			selfie_captured = $2,
			selfie_verified = $3,
			updated_at = NOW()
		WHERE application_id = $1`

	result, err := r.db.ExecContext(ctx, query, applicationID, captured, verified)
	if err != nil {
		return errors.Wrap(err, "failed to update selfie state")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrProgressNotFound
	}
	return nil
}

func (r *PostDisbursalRepository) UpdateAgreement(ctx context.Context, applicationID uuid.UUID, signed bool) error {
	query := `UPDATE post_disbursal_progress SET agreement_signed = $2, updated_at = NOW() WHERE application_id = $1`

	result, err := r.db.ExecContext(ctx, query, applicationID, signed)
	if err != nil {
		return errors.Wrap(err, "failed to update agreement state")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrProgressNotFound
	}
	return nil
}
