package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-docs-api/internal/models"
	appErrors "github.com/noah-isme/internship-docs-api/pkg/errors"
)

func newDocumentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sampleDocument() *models.GeneratedDocument {
	expires := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	return &models.GeneratedDocument{
		Kind:             models.KindOfferLetter,
		SubjectRef:       "a.lee@example.com",
		InternshipRef:    "6b4e7a39-7e5b-4b26-9c2a-1f64c1d2a111",
		VerificationCode: "AB12CD34EF56GH78",
		ArtifactBucket:   "documents",
		ArtifactKey:      "offer_letter_a_lee.pdf",
		ArtifactURL:      "/api/v1/documents/download/token",
		Metadata:         models.DocumentMetadata{"student_name": "A. Lee"},
		ExpiresAt:        &expires,
	}
}

func TestDocumentRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generated_documents")).
		WithArgs(sqlmock.AnyArg(), "offer_letter", "a.lee@example.com", "6b4e7a39-7e5b-4b26-9c2a-1f64c1d2a111",
			"AB12CD34EF56GH78", "documents", "offer_letter_a_lee.pdf", "/api/v1/documents/download/token",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	doc := sampleDocument()
	require.NoError(t, repo.Insert(context.Background(), doc))
	require.NotEmpty(t, doc.ID)
	require.False(t, doc.IssuedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryInsertDuplicateCode(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generated_documents")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "generated_documents_verification_code_key"})

	err := repo.Insert(context.Background(), sampleDocument())
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrDuplicateCode))
}

func TestDocumentRepositoryInsertOtherFailure(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generated_documents")).
		WillReturnError(&pq.Error{Code: "53300"})

	err := repo.Insert(context.Background(), sampleDocument())
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrPersistenceFailure))
}

func TestDocumentRepositoryFindByCode(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "kind", "subject_ref", "internship_ref", "verification_code",
		"artifact_bucket", "artifact_key", "artifact_url", "metadata", "issued_at", "expires_at"}).
		AddRow("doc-1", "completion_certificate", "A. Lee", "intern-1", "AB12CD34EF56GH78",
			"documents", "certificate_a_lee.pdf", "/download", `{"student_name":"A. Lee"}`, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, subject_ref, internship_ref, verification_code, artifact_bucket, artifact_key, artifact_url, metadata, issued_at, expires_at FROM generated_documents WHERE verification_code = $1")).
		WithArgs("AB12CD34EF56GH78").
		WillReturnRows(rows)

	doc, err := repo.FindByCode(context.Background(), "AB12CD34EF56GH78")
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, models.KindCompletionCertificate, doc.Kind)
	require.Equal(t, "A. Lee", doc.Metadata["student_name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryFindByCodeMiss(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery("SELECT .+ FROM generated_documents WHERE verification_code").
		WithArgs("ZZ99ZZ99ZZ99ZZ99").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	doc, err := repo.FindByCode(context.Background(), "ZZ99ZZ99ZZ99ZZ99")
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestDocumentRepositoryList(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "kind", "subject_ref", "internship_ref", "verification_code",
		"artifact_bucket", "artifact_key", "artifact_url", "metadata", "issued_at", "expires_at"}).
		AddRow("doc-1", "offer_letter", "a.lee@example.com", "intern-1", "AB12CD34EF56GH78",
			"documents", "offer.pdf", "/download1", `{}`, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, subject_ref, internship_ref, verification_code, artifact_bucket, artifact_key, artifact_url, metadata, issued_at, expires_at FROM generated_documents ORDER BY issued_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(25, 0).
		WillReturnRows(rows)

	docs, err := repo.List(context.Background(), 25, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListClampsLimit(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery("SELECT .+ FROM generated_documents ORDER BY issued_at DESC").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.List(context.Background(), 500, -1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "kind", "subject_ref", "internship_ref", "verification_code",
		"artifact_bucket", "artifact_key", "artifact_url", "metadata", "issued_at", "expires_at"}).
		AddRow("doc-1", "offer_letter", "a.lee@example.com", "intern-1", "AB12CD34EF56GH78",
			"documents", "offer.pdf", "/download1", `{}`, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, subject_ref, internship_ref, verification_code, artifact_bucket, artifact_key, artifact_url, metadata, issued_at, expires_at FROM generated_documents WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Equal(t, "documents", doc.ArtifactBucket)
	require.Equal(t, "offer.pdf", doc.ArtifactKey)

	mock.ExpectQuery("SELECT .+ FROM generated_documents WHERE id").
		WithArgs("doc-404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "doc-404")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDocumentRepositoryFindBySubject(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "kind", "subject_ref", "internship_ref", "verification_code",
		"artifact_bucket", "artifact_key", "artifact_url", "metadata", "issued_at", "expires_at"}).
		AddRow("doc-2", "completion_certificate", "a.lee@example.com", "intern-1", "CD34EF56GH78AB12",
			"documents", "certificate.pdf", "/download2", `{}`, time.Now(), nil).
		AddRow("doc-1", "offer_letter", "a.lee@example.com", "intern-1", "AB12CD34EF56GH78",
			"documents", "offer.pdf", "/download1", `{}`, time.Now().Add(-time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, subject_ref, internship_ref, verification_code, artifact_bucket, artifact_key, artifact_url, metadata, issued_at, expires_at FROM generated_documents WHERE subject_ref = $1 ORDER BY issued_at DESC")).
		WithArgs("a.lee@example.com").
		WillReturnRows(rows)

	docs, err := repo.FindBySubject(context.Background(), "a.lee@example.com")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "doc-2", docs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
