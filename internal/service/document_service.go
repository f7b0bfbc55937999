package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-docs-api/internal/dto"
	"github.com/noah-isme/internship-docs-api/internal/models"
	appErrors "github.com/noah-isme/internship-docs-api/pkg/errors"
	"github.com/noah-isme/internship-docs-api/pkg/render"
	"github.com/noah-isme/internship-docs-api/pkg/storage"
	"github.com/noah-isme/internship-docs-api/pkg/vericode"
)

type documentRepository interface {
	Insert(ctx context.Context, doc *models.GeneratedDocument) error
	FindByCode(ctx context.Context, code string) (*models.GeneratedDocument, error)
	FindBySubject(ctx context.Context, subjectRef string) ([]models.GeneratedDocument, error)
	List(ctx context.Context, limit, offset int) ([]models.GeneratedDocument, error)
	GetByID(ctx context.Context, id string) (*models.GeneratedDocument, error)
}

type objectStore interface {
	Put(bucket, key string, data []byte, contentType string) (string, error)
	Delete(bucket, key string) error
	Open(bucket, key string) (*os.File, error)
}

type artifactRenderer interface {
	Render(doc render.Artifact) ([]byte, error)
}

// Attempt budgets for the bounded retries around external writes.
const (
	codeRerollAttempts   = 3
	uploadAttempts       = 3
	compensationAttempts = 3
)

// DocumentServiceConfig tunes issuance behaviour.
type DocumentServiceConfig struct {
	Bucket          string
	OfferValidity   time.Duration
	UploadTimeout   time.Duration
	PersistTimeout  time.Duration
	APIPrefix       string
	PublicArtifacts bool
	PublicBaseURL   string
}

// DocumentService orchestrates issuance: validate, derive, resolve,
// render, upload, persist. Records are never updated in place; a
// correction is a fresh issuance.
type DocumentService struct {
	repo      documentRepository
	store     objectStore
	renderer  artifactRenderer
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       DocumentServiceConfig
	now       func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, store objectStore, renderer artifactRenderer, signer *storage.SignedURLSigner, validate *validator.Validate, metrics *MetricsService, cfg DocumentServiceConfig, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = render.NewPDFRenderer()
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "documents"
	}
	if cfg.OfferValidity <= 0 {
		cfg.OfferValidity = 90 * 24 * time.Hour
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 15 * time.Second
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	return &DocumentService{
		repo:      repo,
		store:     store,
		renderer:  renderer,
		signer:    signer,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IssueOfferLetter validates the request and issues an offer letter.
// Offer letters carry an expiry horizon; certificates do not.
func (s *DocumentService) IssueOfferLetter(ctx context.Context, req dto.OfferLetterRequest) (*dto.DocumentResponse, error) {
	violations := s.collectViolations(req)
	start, end, dateErrs := parseDateRange(req.StartDate, req.EndDate)
	violations = append(violations, dateErrs...)
	if len(violations) > 0 {
		return nil, appErrors.Validation(violations)
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.OfferValidity)
	serial, err := vericode.Serial("OFR", now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generate serial number")
	}

	fields := models.DocumentMetadata{
		"student_name":     req.StudentName,
		"student_email":    req.StudentEmail,
		"internship_title": req.InternshipTitle,
		"company_name":     req.CompanyName,
		"start_date":       req.StartDate,
		"end_date":         req.EndDate,
		"stipend":          req.Stipend,
		"location":         req.Location,
		"supervisor_name":  req.SupervisorName,
		"generated_date":   now.Format(dto.DateLayout),
		"expires_date":     expiresAt.Format(dto.DateLayout),
		"duration_months":  fmt.Sprintf("%d", render.DurationMonths(start, end)),
		"serial_number":    serial,
	}

	doc, err := s.issue(ctx, issuance{
		kind:          models.KindOfferLetter,
		subjectRef:    req.StudentEmail,
		internshipRef: req.InternshipID,
		studentName:   req.StudentName,
		fields:        fields,
		issuedAt:      now,
		expiresAt:     &expiresAt,
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// IssueCertificate validates the request and issues a completion
// certificate. Certificates never expire.
func (s *DocumentService) IssueCertificate(ctx context.Context, req dto.CertificateRequest) (*dto.DocumentResponse, error) {
	violations := s.collectViolations(req)
	start, end, dateErrs := parseDateRange(req.StartDate, req.EndDate)
	violations = append(violations, dateErrs...)
	if len(violations) > 0 {
		return nil, appErrors.Validation(violations)
	}

	now := s.now()
	serial, err := vericode.Serial("CERT", now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generate serial number")
	}

	fields := models.DocumentMetadata{
		"student_name":      req.StudentName,
		"internship_title":  req.InternshipTitle,
		"company_name":      req.CompanyName,
		"start_date":        req.StartDate,
		"end_date":          req.EndDate,
		"completion_date":   req.CompletionDate,
		"performance_grade": render.GradeLabel(req.PerformanceGrade),
		"skills_formatted":  strings.Join(req.SkillsLearned, ", "),
		"certificate_date":  now.Format(dto.DateLayout),
		"duration_months":   fmt.Sprintf("%d", render.DurationMonths(start, end)),
		"serial_number":     serial,
	}

	doc, err := s.issue(ctx, issuance{
		kind:          models.KindCompletionCertificate,
		subjectRef:    req.StudentName,
		internshipRef: req.InternshipID,
		studentName:   req.StudentName,
		fields:        fields,
		issuedAt:      now,
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// ListBySubject returns the subject's documents, newest first.
func (s *DocumentService) ListBySubject(ctx context.Context, subjectRef string) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.FindBySubject(ctx, subjectRef)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *toDocumentResponse(&docs[i]))
	}
	return out, nil
}

// ListDocuments returns recent issuances for administrative review.
func (s *DocumentService) ListDocuments(ctx context.Context, limit, offset int) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *toDocumentResponse(&docs[i]))
	}
	return out, nil
}

// ArtifactDownload resolves a signed download token to the stored artifact.
type ArtifactDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ResolveDownload validates the token and opens the referenced artifact.
// The record is the authority on the artifact location; the token only
// proves the holder was handed a fresh link for that document.
func (s *DocumentService) ResolveDownload(ctx context.Context, token string) (*ArtifactDownload, error) {
	documentID, _, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "invalid download token")
	}
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "artifact not found")
	}
	file, err := s.store.Open(doc.ArtifactBucket, doc.ArtifactKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "artifact not found")
	}
	return &ArtifactDownload{File: file, Filename: doc.ArtifactKey, ExpiresAt: expiresAt}, nil
}

type issuance struct {
	kind          models.DocumentKind
	subjectRef    string
	internshipRef string
	studentName   string
	fields        models.DocumentMetadata
	issuedAt      time.Time
	expiresAt     *time.Time
}

// issue runs the shared pipeline, reissuing from code generation when
// the insert itself hits a verification-code collision: the optimistic
// pre-check leaves a small check-then-insert race, and a collision must
// stay invisible to the caller unless the retry budget runs out.
func (s *DocumentService) issue(ctx context.Context, in issuance) (*models.GeneratedDocument, error) {
	var doc *models.GeneratedDocument
	var err error
	for attempt := 0; attempt < codeRerollAttempts; attempt++ {
		doc, err = s.issueOnce(ctx, in)
		if err == nil {
			s.observeIssue(in.kind, true)
			s.logger.Info("document issued",
				zap.String("document_id", doc.ID),
				zap.String("kind", string(doc.Kind)),
				zap.String("internship_ref", doc.InternshipRef),
			)
			return doc, nil
		}
		if !appErrors.Is(err, appErrors.ErrDuplicateCode) {
			break
		}
		s.logger.Warn("verification code collided at persist, reissuing", zap.Int("attempt", attempt+1))
	}
	s.observeIssue(in.kind, false)
	return nil, err
}

// issueOnce is a single pass over the pipeline. Render happens before
// any external write; upload strictly precedes persist; a persistence
// failure after upload triggers the compensating artifact delete.
func (s *DocumentService) issueOnce(ctx context.Context, in issuance) (*models.GeneratedDocument, error) {
	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	in.fields["verification_code"] = code

	tpl, ok := render.TemplateFor(string(in.kind))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported document kind %s", in.kind))
	}

	payload, err := s.renderer.Render(render.Artifact{
		Title:            tpl.Title,
		Body:             tpl.Resolve(in.fields),
		VerificationCode: code,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRenderFailure.Code, appErrors.ErrRenderFailure.Status, appErrors.ErrRenderFailure.Message)
	}

	key := s.buildKey(in.kind, in.studentName, in.issuedAt)
	location, err := s.upload(ctx, key, payload)
	if err != nil {
		return nil, err
	}

	doc := &models.GeneratedDocument{
		ID:               uuid.NewString(),
		Kind:             in.kind,
		SubjectRef:       in.subjectRef,
		InternshipRef:    in.internshipRef,
		VerificationCode: code,
		ArtifactBucket:   s.cfg.Bucket,
		ArtifactKey:      key,
		Metadata:         in.fields,
		IssuedAt:         in.issuedAt,
		ExpiresAt:        in.expiresAt,
	}
	doc.ArtifactURL, err = s.artifactURL(doc.ID, location)
	if err != nil {
		s.compensate(doc)
		return nil, err
	}

	if err := s.persist(ctx, doc); err != nil {
		s.compensate(doc)
		return nil, err
	}
	return doc, nil
}

// generateUniqueCode draws candidate codes and checks each against the
// persisted set. Collisions are astronomically unlikely by construction,
// but the optimistic check keeps uniqueness a guarantee rather than a
// probability.
func (s *DocumentService) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeRerollAttempts; attempt++ {
		code, err := vericode.New()
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generate verification code")
		}
		existing, err := s.repo.FindByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
		s.logger.Warn("verification code collision, re-rolling", zap.Int("attempt", attempt+1))
	}
	return "", appErrors.Clone(appErrors.ErrDuplicateCode, "verification code space exhausted retries")
}

func (s *DocumentService) upload(ctx context.Context, key string, payload []byte) (string, error) {
	var lastErr error
	for attempt := 0; attempt < uploadAttempts; attempt++ {
		var location string
		err := s.bounded(ctx, s.cfg.UploadTimeout, func() error {
			var putErr error
			location, putErr = s.store.Put(s.cfg.Bucket, key, payload, "application/pdf")
			return putErr
		})
		if err == nil {
			return location, nil
		}
		if appErrors.Is(err, appErrors.ErrTimeout) {
			return "", err
		}
		lastErr = err
	}
	return "", appErrors.Wrap(lastErr, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, appErrors.ErrStorageFailure.Message)
}

func (s *DocumentService) persist(ctx context.Context, doc *models.GeneratedDocument) error {
	err := s.bounded(ctx, s.cfg.PersistTimeout, func() error {
		return s.repo.Insert(ctx, doc)
	})
	if err == nil || appErrors.Is(err, appErrors.ErrTimeout) || appErrors.Is(err, appErrors.ErrDuplicateCode) {
		return err
	}
	// One bounded retry for transient persistence failures.
	retryErr := s.bounded(ctx, s.cfg.PersistTimeout, func() error {
		return s.repo.Insert(ctx, doc)
	})
	if retryErr == nil {
		return nil
	}
	return err
}

// compensate removes the uploaded artifact after a failed persist so no
// orphaned file outlives the record it belonged to. If the delete keeps
// failing the orphan is logged for out-of-band cleanup; the caller still
// sees the original persistence error.
func (s *DocumentService) compensate(doc *models.GeneratedDocument) {
	for attempt := 0; attempt < compensationAttempts; attempt++ {
		if err := s.store.Delete(doc.ArtifactBucket, doc.ArtifactKey); err == nil {
			return
		}
	}
	s.logger.Error("orphaned artifact: compensating delete failed",
		zap.String("bucket", doc.ArtifactBucket),
		zap.String("key", doc.ArtifactKey),
		zap.String("document_id", doc.ID),
	)
}

// bounded runs fn under the given timeout, surfacing a TIMEOUT error
// instead of hanging when the collaborator stalls.
func (s *DocumentService) bounded(ctx context.Context, timeout time.Duration, fn func() error) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-tctx.Done():
		return appErrors.Wrap(tctx.Err(), appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
	}
}

func (s *DocumentService) artifactURL(documentID, location string) (string, error) {
	if s.cfg.PublicArtifacts {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + location, nil
	}
	token, _, err := s.signer.Generate(documentID, location)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign artifact url")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/documents/download/%s", prefix, token), nil
}

func (s *DocumentService) buildKey(kind models.DocumentKind, studentName string, issuedAt time.Time) string {
	return fmt.Sprintf("%s_%s_%d.pdf", kind, sanitizeKeyPart(studentName), issuedAt.UnixMilli())
}

func (s *DocumentService) collectViolations(req interface{}) []string {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	violations := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return violations
}

func (s *DocumentService) observeIssue(kind models.DocumentKind, ok bool) {
	if s.metrics != nil {
		s.metrics.DocumentIssued(string(kind), ok)
	}
}

func parseDateRange(startRaw, endRaw string) (time.Time, time.Time, []string) {
	var violations []string
	start, startErr := time.Parse(dto.DateLayout, startRaw)
	end, endErr := time.Parse(dto.DateLayout, endRaw)
	if startErr == nil && endErr == nil && end.Before(start) {
		violations = append(violations, "endDate: must be on or after startDate")
	}
	return start, end, violations
}

func sanitizeKeyPart(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func toDocumentResponse(doc *models.GeneratedDocument) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:               doc.ID,
		Kind:             doc.Kind,
		SubjectRef:       doc.SubjectRef,
		InternshipRef:    doc.InternshipRef,
		VerificationCode: doc.VerificationCode,
		ArtifactURL:      doc.ArtifactURL,
		IssuedAt:         doc.IssuedAt,
		ExpiresAt:        doc.ExpiresAt,
	}
}
