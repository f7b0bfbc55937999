package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DocumentKind enumerates the issuable document types.
type DocumentKind string

const (
	KindOfferLetter           DocumentKind = "offer_letter"
	KindCompletionCertificate DocumentKind = "completion_certificate"
)

// Valid reports whether the kind belongs to the closed set.
func (k DocumentKind) Valid() bool {
	return k == KindOfferLetter || k == KindCompletionCertificate
}

// GeneratedDocument is the persisted issuance record. Rows are
// insert-only: corrections are modelled as a new issuance, and expiry
// is applied when reading, never by deleting.
type GeneratedDocument struct {
	ID               string           `db:"id" json:"id"`
	Kind             DocumentKind     `db:"kind" json:"kind"`
	SubjectRef       string           `db:"subject_ref" json:"subjectRef"`
	InternshipRef    string           `db:"internship_ref" json:"internshipRef"`
	VerificationCode string           `db:"verification_code" json:"verificationCode"`
	ArtifactBucket   string           `db:"artifact_bucket" json:"artifactBucket"`
	ArtifactKey      string           `db:"artifact_key" json:"artifactKey"`
	ArtifactURL      string           `db:"artifact_url" json:"artifactUrl"`
	Metadata         DocumentMetadata `db:"metadata" json:"metadata"`
	IssuedAt         time.Time        `db:"issued_at" json:"issuedAt"`
	ExpiresAt        *time.Time       `db:"expires_at" json:"expiresAt,omitempty"`
}

// Expired reports whether the record is past its expiry at the given instant.
func (d *GeneratedDocument) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && d.ExpiresAt.Before(now)
}

// DocumentMetadata stores the full resolved field set used to render
// the artifact, persisted as JSONB. Kept for audit and re-render; it is
// never disclosed through the verification endpoint.
type DocumentMetadata map[string]string

// Value marshals metadata to JSON for persistence.
func (m DocumentMetadata) Value() (driver.Value, error) {
	if m == nil {
		m = DocumentMetadata{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal document metadata: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the metadata map.
func (m *DocumentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = DocumentMetadata{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DocumentMetadata", value)
	}
	if len(data) == 0 {
		*m = DocumentMetadata{}
		return nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("unmarshal document metadata: %w", err)
	}
	return nil
}
