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

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, phone, first_name, last_name, status, hold_reason,
			hold_until, loan_limit, eligibility_status, employment,
			monthly_income, graduation_status, graduation_date, date_of_birth,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Phone, user.FirstName, user.LastName, user.Status, user.HoldReason,
		user.HoldUntil, user.LoanLimit, user.EligibilityStatus, user.Employment,
		user.MonthlyIncome, user.GraduationStatus, user.GraduationDate, user.DateOfBirth,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT
			id, email, phone, first_name, last_name, status, hold_reason,
			hold_until, loan_limit, eligibility_status, employment,
			monthly_income, graduation_status, graduation_date, date_of_birth,
			created_at, updated_at
		FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	return &user, nil
}

// UpdateHold rewrites the hold columns and eligibility in one statement so
// a re-evaluation can never leave them inconsistent.
func (r *UserRepository) UpdateHold(ctx context.Context, id uuid.UUID, status domain.UserStatus, reason *string, until *time.Time, eligibility domain.EligibilityStatus) error {
	query := `
		UPDATE users SET
			status = $2,
			hold_reason = $3,
			hold_until = $4,
			eligibility_status = $5,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, reason, until, eligibility)
	if err != nil {
		return errors.Wrap(err, "failed to update hold")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLoanLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error {
	query := `UPDATE users SET loan_limit = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, limit)
	if err != nil {
		return errors.Wrap(err, "failed to update loan limit")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateGraduation(ctx context.Context, id uuid.UUID, status domain.GraduationStatus, limit decimal.Decimal, graduatedAt *time.Time) error {
	query := `
		UPDATE users SET
			graduation_status = $2,
			loan_limit = $3,
			graduation_date = $4,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, limit, graduatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to update graduation status")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}
