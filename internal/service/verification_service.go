package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-docs-api/internal/dto"
	"github.com/noah-isme/internship-docs-api/internal/models"
	appErrors "github.com/noah-isme/internship-docs-api/pkg/errors"
	"github.com/noah-isme/internship-docs-api/pkg/vericode"
)

type verificationLookup interface {
	FindByCode(ctx context.Context, code string) (*models.GeneratedDocument, error)
}

type verificationCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// VerificationService answers whether a code belongs to a genuine,
// still-valid document. Misses are uniform: the response never reveals
// whether a code was absent, malformed, or expired.
type VerificationService struct {
	repo     verificationLookup
	cache    verificationCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(repo verificationLookup, cache verificationCache, cacheTTL time.Duration, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &VerificationService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Verify resolves a candidate code to its redacted public view.
// Malformed codes are rejected without a lookup; hits and misses share
// one cache TTL so cache behaviour leaks nothing, except that a hit's
// TTL never outlives the document's expiry.
func (s *VerificationService) Verify(ctx context.Context, raw string) *dto.VerificationResponse {
	code := vericode.Normalize(raw)
	if !vericode.WellFormed(code) {
		return &dto.VerificationResponse{Verified: false}
	}

	cacheKey := "verify:" + code
	if s.cache != nil {
		var cached dto.VerificationResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("verification cache read failed", zap.Error(err))
		}
	}

	result := s.lookup(ctx, code)

	if s.cache != nil {
		if ttl := s.resultTTL(result); ttl > 0 {
			if err := s.cache.Set(ctx, cacheKey, result, ttl); err != nil {
				s.logger.Warn("verification cache write failed", zap.Error(err))
			}
		}
	}
	return result
}

// resultTTL caps a positive response's cache lifetime at its expiry so
// a document never verifies past expiresAt from the cache. Misses keep
// the full TTL.
func (s *VerificationService) resultTTL(result *dto.VerificationResponse) time.Duration {
	ttl := s.cacheTTL
	if result.Verified && result.ExpiresAt != nil {
		if until := result.ExpiresAt.Sub(s.now()); until < ttl {
			ttl = until
		}
	}
	return ttl
}

func (s *VerificationService) lookup(ctx context.Context, code string) *dto.VerificationResponse {
	doc, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		// Infrastructure trouble must not produce a distinguishable
		// response; log it and answer like any other miss.
		s.logger.Error("verification lookup failed", zap.Error(err))
		return &dto.VerificationResponse{Verified: false}
	}
	if doc == nil || doc.Expired(s.now()) {
		return &dto.VerificationResponse{Verified: false}
	}

	issuedAt := doc.IssuedAt
	return &dto.VerificationResponse{
		Verified:      true,
		Kind:          doc.Kind,
		SubjectRef:    doc.SubjectRef,
		InternshipRef: doc.InternshipRef,
		IssuedAt:      &issuedAt,
		ExpiresAt:     doc.ExpiresAt,
		ArtifactURL:   doc.ArtifactURL,
	}
}
