package postgres

import (
	"context"

	"lend/internal/domain"
	"lend/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UploadedDocumentRepository struct {
	db *sqlx.DB
}

func NewUploadedDocumentRepository(db *sqlx.DB) *UploadedDocumentRepository {
	return &UploadedDocumentRepository{db: db}
}

func (r *UploadedDocumentRepository) Create(ctx context.Context, doc *domain.UploadedDocument) error {
	query := `
		INSERT INTO uploaded_documents (id, application_id, document_name, upload_status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.ApplicationID, doc.DocumentName, doc.UploadStatus, doc.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create uploaded document")
	}
	return nil
}

func (r *UploadedDocumentRepository) GetUploadedDocuments(ctx context.Context, applicationID uuid.UUID) ([]*domain.UploadedDocument, error) {
	docs := []*domain.UploadedDocument{}
	query := `
		SELECT id, application_id, document_name, upload_status, created_at
		FROM uploaded_documents
		WHERE application_id = $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &docs, query, applicationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list uploaded documents")
	}
	return docs, nil
}

func (r *UploadedDocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadStatus) error {
	query := `UPDATE uploaded_documents SET upload_status = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return errors.Wrap(err, "failed to update document status")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrDocumentNotFound
	}
	return nil
}
