package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-docs-api/internal/dto"
	"github.com/noah-isme/internship-docs-api/internal/service"
	"github.com/noah-isme/internship-docs-api/pkg/response"
)

type codeVerifier interface {
	Verify(ctx context.Context, raw string) *dto.VerificationResponse
}

// VerificationHandler answers public verification lookups.
type VerificationHandler struct {
	verifier codeVerifier
	metrics  *service.MetricsService
}

// NewVerificationHandler constructs the handler. Metrics may be nil.
func NewVerificationHandler(verifier codeVerifier, metrics *service.MetricsService) *VerificationHandler {
	return &VerificationHandler{verifier: verifier, metrics: metrics}
}

// VerifyDocument godoc
// @Summary Verify a document by its verification code
// @Tags Verification
// @Produce json
// @Param code path string true "Verification code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /verify/{code} [get]
func (h *VerificationHandler) VerifyDocument(c *gin.Context) {
	result := h.verifier.Verify(c.Request.Context(), c.Param("code"))
	if h.metrics != nil {
		h.metrics.VerificationObserved(result.Verified)
	}
	if !result.Verified {
		// Every miss answers with the same body, whatever the reason.
		response.JSON(c, http.StatusNotFound, dto.VerificationResponse{Verified: false})
		return
	}
	response.JSON(c, http.StatusOK, result)
}
