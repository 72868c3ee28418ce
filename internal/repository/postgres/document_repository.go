package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

const documentColumns = `id, user_id, object_key, file_name, document_type, extracted_json, status, created_at, processed_at`

type documentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) *documentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (user_id, object_key, file_name, document_type, extracted_json, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		doc.UserID, doc.ObjectKey, doc.FileName, doc.DocumentType, doc.ExtractedJSON, doc.Status,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *documentRepository) GetDocument(ctx context.Context, userID, id int64) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 AND id = $2`

	var doc domain.Document
	if err := sqlx.GetContext(ctx, r.db, &doc, query, userID, id); err != nil {
		return nil, notFound(err, "document", id)
	}
	return &doc, nil
}

func (r *documentRepository) ListDocuments(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	var docs []domain.Document
	if err := sqlx.SelectContext(ctx, r.db, &docs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	query := `
		UPDATE documents
		SET document_type = $3, extracted_json = $4, status = $5, processed_at = $6
		WHERE user_id = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		doc.UserID, doc.ID, doc.DocumentType, doc.ExtractedJSON, doc.Status, doc.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %d: %w", doc.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document %d: %w", doc.ID, domain.ErrNotFound)
	}
	return nil
}
