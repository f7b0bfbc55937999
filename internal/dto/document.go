package dto

import (
	"time"

	"github.com/noah-isme/internship-docs-api/internal/models"
)

// DateLayout is the wire format for calendar dates in issuance requests.
const DateLayout = "2006-01-02"

// OfferLetterRequest captures POST /documents/offer-letter payload.
type OfferLetterRequest struct {
	StudentName     string `json:"studentName" validate:"required,min=2,max=100"`
	StudentEmail    string `json:"studentEmail" validate:"required,email"`
	InternshipTitle string `json:"internshipTitle" validate:"required,min=2,max=200"`
	CompanyName     string `json:"companyName" validate:"required,min=2,max=100"`
	StartDate       string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Stipend         string `json:"stipend" validate:"required,min=1,max=50"`
	Location        string `json:"location" validate:"required,min=2,max=100"`
	SupervisorName  string `json:"supervisorName" validate:"required,min=2,max=100"`
	InternshipID    string `json:"internshipId" validate:"required,uuid4"`
}

// CertificateRequest captures POST /documents/completion-certificate payload.
type CertificateRequest struct {
	StudentName      string   `json:"studentName" validate:"required,min=2,max=100"`
	InternshipTitle  string   `json:"internshipTitle" validate:"required,min=2,max=200"`
	CompanyName      string   `json:"companyName" validate:"required,min=2,max=100"`
	StartDate        string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	CompletionDate   string   `json:"completionDate" validate:"required,datetime=2006-01-02"`
	PerformanceGrade string   `json:"performanceGrade" validate:"required,oneof=A B C D"`
	SkillsLearned    []string `json:"skillsLearned" validate:"required,min=1,max=10,dive,min=1,max=100"`
	InternshipID     string   `json:"internshipId" validate:"required,uuid4"`
}

// DocumentResponse is returned after a successful issuance and from
// the owner-facing document listing.
type DocumentResponse struct {
	ID               string              `json:"id"`
	Kind             models.DocumentKind `json:"kind"`
	SubjectRef       string              `json:"subjectRef"`
	InternshipRef    string              `json:"internshipRef"`
	VerificationCode string              `json:"verificationCode"`
	ArtifactURL      string              `json:"artifactUrl"`
	IssuedAt         time.Time           `json:"issuedAt"`
	ExpiresAt        *time.Time          `json:"expiresAt,omitempty"`
}

// VerificationResponse is the redacted view disclosed to anonymous
// verifiers. The field set is closed: nothing from the record's
// metadata bag ever appears here.
type VerificationResponse struct {
	Verified      bool                `json:"verified"`
	Kind          models.DocumentKind `json:"kind,omitempty"`
	SubjectRef    string              `json:"subjectRef,omitempty"`
	InternshipRef string              `json:"internshipRef,omitempty"`
	IssuedAt      *time.Time          `json:"issuedAt,omitempty"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
	ArtifactURL   string              `json:"artifactUrl,omitempty"`
}
