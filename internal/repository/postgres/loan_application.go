package postgres

import (
	"context"
	"database/sql"
	"time"

	"lend/internal/domain"
	"lend/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type LoanApplicationRepository struct {
	db *sqlx.DB
}

func NewLoanApplicationRepository(db *sqlx.DB) *LoanApplicationRepository {
	return &LoanApplicationRepository{db: db}
}

const loanApplicationColumns = `
	id, user_id, status, current_step, principal, outstanding_balance,
	purpose, installment_count, extension_count, disbursed_at, due_date,
	backend_apr, created_at, updated_at`

func (r *LoanApplicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			id, user_id, status, current_step, principal, outstanding_balance,
			purpose, installment_count, extension_count, disbursed_at, due_date,
			backend_apr, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		app.ID, app.UserID, app.Status, app.CurrentStep, app.Principal, app.OutstandingBalance,
		app.Purpose, app.InstallmentCount, app.ExtensionCount, app.DisbursedAt, app.DueDate,
		app.BackendAPR, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create loan application")
	}
	return nil
}

func (r *LoanApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	var app domain.LoanApplication
	query := `SELECT ` + loanApplicationColumns + ` FROM loan_applications WHERE id = $1`

	err := r.db.GetContext(ctx, &app, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrApplicationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find loan application")
	}
	return &app, nil
}

// FindByUser returns all of a user's applications, most recent first.
func (r *LoanApplicationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.LoanApplication, error) {
	apps := []*domain.LoanApplication{}
	query := `SELECT ` + loanApplicationColumns + `
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &apps, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list loan applications")
	}
	return apps, nil
}

// GetLoanApplications satisfies the gate's collaborator contract.
func (r *LoanApplicationRepository) GetLoanApplications(ctx context.Context, userID uuid.UUID) ([]*domain.LoanApplication, error) {
	return r.FindByUser(ctx, userID)
}

func (r *LoanApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error {
	query := `UPDATE loan_applications SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return errors.Wrap(err, "failed to update application status")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrApplicationNotFound
	}
	return nil
}

func (r *LoanApplicationRepository) UpdateStep(ctx context.Context, id uuid.UUID, step string) error {
	query := `UPDATE loan_applications SET current_step = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, step)
	if err != nil {
		return errors.Wrap(err, "failed to update application step")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrApplicationNotFound
	}
	return nil
}

func (r *LoanApplicationRepository) UpdateDisbursal(ctx context.Context, id uuid.UUID, disbursedAt, dueDate time.Time, outstanding decimal.Decimal) error {
	query := `
		UPDATE loan_applications SET
			disbursed_at = $2,
			due_date = $3,
			outstanding_balance = $4,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, disbursedAt, dueDate, outstanding)
	if err != nil {
		return errors.Wrap(err, "failed to record disbursal")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrApplicationNotFound
	}
	return nil
}

// UpdateExtension moves the due date and bumps the counter. The outstanding
// balance column is deliberately not touched here.
func (r *LoanApplicationRepository) UpdateExtension(ctx context.Context, id uuid.UUID, dueDate time.Time, extensionCount int) error {
	query := `
		UPDATE loan_applications SET
			due_date = $2,
			extension_count = $3,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, dueDate, extensionCount)
	if err != nil {
		return errors.Wrap(err, "failed to apply extension")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrApplicationNotFound
	}
	return nil
}
