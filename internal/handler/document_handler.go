package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-docs-api/internal/dto"
	"github.com/noah-isme/internship-docs-api/internal/notify"
	"github.com/noah-isme/internship-docs-api/internal/service"
	appErrors "github.com/noah-isme/internship-docs-api/pkg/errors"
	"github.com/noah-isme/internship-docs-api/pkg/response"
)

type documentService interface {
	IssueOfferLetter(ctx context.Context, req dto.OfferLetterRequest) (*dto.DocumentResponse, error)
	IssueCertificate(ctx context.Context, req dto.CertificateRequest) (*dto.DocumentResponse, error)
	ListBySubject(ctx context.Context, subjectRef string) ([]dto.DocumentResponse, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]dto.DocumentResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ArtifactDownload, error)
}

type issuanceNotifier interface {
	DocumentIssued(documentID string, msg notify.DocumentIssued) error
}

// DocumentHandler exposes issuance and retrieval endpoints.
type DocumentHandler struct {
	documents documentService
	notifier  issuanceNotifier
	logger    *zap.Logger
}

// NewDocumentHandler constructs the handler. The notifier may be nil.
func NewDocumentHandler(documents documentService, notifier issuanceNotifier, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{documents: documents, notifier: notifier, logger: logger}
}

// GenerateOfferLetter godoc
// @Summary Issue an internship offer letter
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.OfferLetterRequest true "Offer letter data"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents/offer-letter [post]
func (h *DocumentHandler) GenerateOfferLetter(c *gin.Context) {
	var req dto.OfferLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload"))
		return
	}

	doc, err := h.documents.IssueOfferLetter(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notify(doc, notify.DocumentIssued{
		Kind:             string(doc.Kind),
		StudentName:      req.StudentName,
		StudentEmail:     req.StudentEmail,
		InternshipTitle:  req.InternshipTitle,
		CompanyName:      req.CompanyName,
		DocumentURL:      doc.ArtifactURL,
		VerificationCode: doc.VerificationCode,
	})
	response.Created(c, doc)
}

// GenerateCertificate godoc
// @Summary Issue an internship completion certificate
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.CertificateRequest true "Certificate data"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents/completion-certificate [post]
func (h *DocumentHandler) GenerateCertificate(c *gin.Context) {
	var req dto.CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload"))
		return
	}

	doc, err := h.documents.IssueCertificate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Certificate requests carry no contact address; the notifier skips
	// delivery when the email is unknown.
	h.notify(doc, notify.DocumentIssued{
		Kind:             string(doc.Kind),
		StudentName:      req.StudentName,
		InternshipTitle:  req.InternshipTitle,
		CompanyName:      req.CompanyName,
		DocumentURL:      doc.ArtifactURL,
		VerificationCode: doc.VerificationCode,
	})
	response.Created(c, doc)
}

// ListStudentDocuments godoc
// @Summary List documents issued to a subject
// @Tags Documents
// @Produce json
// @Param id path string true "Subject reference"
// @Success 200 {object} response.Envelope
// @Router /documents/student/{id} [get]
func (h *DocumentHandler) ListStudentDocuments(c *gin.Context) {
	subjectRef := c.Param("id")
	if subjectRef == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subject reference required"))
		return
	}

	docs, err := h.documents.ListBySubject(c.Request.Context(), subjectRef)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs)
}

// ListDocuments godoc
// @Summary List recent issuances for administrative review
// @Tags Documents
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.documents.ListDocuments(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, map[string]interface{}{"limit": limit, "offset": offset})
}

// DownloadDocument godoc
// @Summary Download an issued artifact with a signed token
// @Tags Documents
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /documents/download/{token} [get]
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	download, err := h.documents.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		h.logger.Warn("artifact stream interrupted", zap.Error(err))
	}
}

func (h *DocumentHandler) notify(doc *dto.DocumentResponse, msg notify.DocumentIssued) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.DocumentIssued(doc.ID, msg); err != nil {
		h.logger.Warn("failed to enqueue issuance notification",
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
	}
}
