package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-docs-api/internal/dto"
	"github.com/noah-isme/internship-docs-api/internal/models"
)

type verifierMock struct {
	resp *dto.VerificationResponse
}

func (m *verifierMock) Verify(ctx context.Context, raw string) *dto.VerificationResponse {
	return m.resp
}

func TestVerificationHandlerVerifiedDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	handler := NewVerificationHandler(&verifierMock{resp: &dto.VerificationResponse{
		Verified:      true,
		Kind:          models.KindCompletionCertificate,
		SubjectRef:    "Jane Intern",
		InternshipRef: "7f9c24e5-2f37-4a47-a1b0-2f86e35a35b9",
		IssuedAt:      &issuedAt,
	}}, nil)

	c, w := newGinContext(http.MethodGet, "/verify/A2C4E6G8J1K3M5N7", nil)
	c.Params = gin.Params{{Key: "code", Value: "A2C4E6G8J1K3M5N7"}}

	handler.VerifyDocument(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data dto.VerificationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Data.Verified)
	require.Equal(t, "Jane Intern", body.Data.SubjectRef)
}

func TestVerificationHandlerUniformMiss(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewVerificationHandler(&verifierMock{resp: &dto.VerificationResponse{Verified: false}}, nil)

	for _, code := range []string{"UNKNOWN0CODE0000", "short", ""} {
		c, w := newGinContext(http.MethodGet, "/verify/"+code, nil)
		c.Params = gin.Params{{Key: "code", Value: code}}

		handler.VerifyDocument(c)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"data":{"verified":false}}`, w.Body.String())
	}
}
