package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/internship-docs-api/internal/models"
	appErrors "github.com/noah-isme/internship-docs-api/pkg/errors"
)

// DocumentRepository persists issuance records. Rows are insert-only;
// expiry is a read-time concern handled by the verification service.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Insert stores a new issuance record. A unique-violation on the
// verification code surfaces as DUPLICATE_CODE so the orchestrator can
// re-roll; any other failure is a PERSISTENCE_FAILURE.
func (r *DocumentRepository) Insert(ctx context.Context, doc *models.GeneratedDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.IssuedAt.IsZero() {
		doc.IssuedAt = time.Now().UTC()
	}
	const query = `INSERT INTO generated_documents
(id, kind, subject_ref, internship_ref, verification_code, artifact_bucket, artifact_key, artifact_url, metadata, issued_at, expires_at)
VALUES (:id, :kind, :subject_ref, :internship_ref, :verification_code, :artifact_bucket, :artifact_key, :artifact_url, :metadata, :issued_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, "verification_code") {
			return appErrors.Wrap(err, appErrors.ErrDuplicateCode.Code, appErrors.ErrDuplicateCode.Status, appErrors.ErrDuplicateCode.Message)
		}
		return appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "insert generated document")
	}
	return nil
}

const documentColumns = `id, kind, subject_ref, internship_ref, verification_code, artifact_bucket, artifact_key, artifact_url, metadata, issued_at, expires_at`

// FindByCode returns the record matching a verification code, or nil
// when no such record exists.
func (r *DocumentRepository) FindByCode(ctx context.Context, code string) (*models.GeneratedDocument, error) {
	query := fmt.Sprintf(`SELECT %s FROM generated_documents WHERE verification_code = $1`, documentColumns)
	var doc models.GeneratedDocument
	if err := r.db.GetContext(ctx, &doc, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "find document by code")
	}
	return &doc, nil
}

// FindBySubject lists a subject's documents in descending issuance order.
func (r *DocumentRepository) FindBySubject(ctx context.Context, subjectRef string) ([]models.GeneratedDocument, error) {
	query := fmt.Sprintf(`SELECT %s FROM generated_documents WHERE subject_ref = $1 ORDER BY issued_at DESC`, documentColumns)
	var docs []models.GeneratedDocument
	if err := r.db.SelectContext(ctx, &docs, query, subjectRef); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "find documents by subject")
	}
	return docs, nil
}

// List returns recent records for administrative review.
func (r *DocumentRepository) List(ctx context.Context, limit, offset int) ([]models.GeneratedDocument, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM generated_documents ORDER BY issued_at DESC LIMIT $1 OFFSET $2`, documentColumns)
	var docs []models.GeneratedDocument
	if err := r.db.SelectContext(ctx, &docs, query, limit, offset); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "list documents")
	}
	return docs, nil
}

// GetByID returns a record by its identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.GeneratedDocument, error) {
	query := fmt.Sprintf(`SELECT %s FROM generated_documents WHERE id = $1`, documentColumns)
	var doc models.GeneratedDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, "get document")
	}
	return &doc, nil
}
