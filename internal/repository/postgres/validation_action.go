package postgres

import (
	"context"

	"lend/internal/domain"
	"lend/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ValidationActionRepository struct {
	db *sqlx.DB
}

func NewValidationActionRepository(db *sqlx.DB) *ValidationActionRepository {
	return &ValidationActionRepository{db: db}
}

func (r *ValidationActionRepository) Create(ctx context.Context, action *domain.ValidationAction) error {
	query := `
		INSERT INTO validation_actions (id, application_id, action_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		action.ID, action.ApplicationID, action.ActionType, action.Payload, action.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create validation action")
	}
	return nil
}

// GetValidationHistory returns actions most recent first; supersession by
// recency depends on this ordering.
func (r *ValidationActionRepository) GetValidationHistory(ctx context.Context, applicationID uuid.UUID) ([]*domain.ValidationAction, error) {
	actions := []*domain.ValidationAction{}
	query := `
		SELECT id, application_id, action_type, payload, created_at
		FROM validation_actions
		WHERE application_id = $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &actions, query, applicationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list validation actions")
	}
	return actions, nil
}
