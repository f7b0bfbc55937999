package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-docs-api/internal/dto"
	"github.com/noah-isme/internship-docs-api/internal/models"
	appErrors "github.com/noah-isme/internship-docs-api/pkg/errors"
)

type lookupStub struct {
	docs  map[string]*models.GeneratedDocument
	err   error
	calls int
}

func (l *lookupStub) FindByCode(ctx context.Context, code string) (*models.GeneratedDocument, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.docs[code], nil
}

type cacheStub struct {
	mu      sync.Mutex
	entries map[string]dto.VerificationResponse
	ttls    map[string]time.Duration
}

func newCacheStub() *cacheStub {
	return &cacheStub{
		entries: map[string]dto.VerificationResponse{},
		ttls:    map[string]time.Duration{},
	}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*dto.VerificationResponse) = cached
	return nil
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *value.(*dto.VerificationResponse)
	c.ttls[key] = ttl
	return nil
}

const testCode = "A2C4E6G8J1K3M5N7"

func activeDocument(expiresAt *time.Time) *models.GeneratedDocument {
	return &models.GeneratedDocument{
		ID:               "doc-1",
		Kind:             models.KindOfferLetter,
		SubjectRef:       "jane@example.com",
		InternshipRef:    "7f9c24e5-2f37-4a47-a1b0-2f86e35a35b9",
		VerificationCode: testCode,
		ArtifactBucket:   "documents",
		ArtifactKey:      "offer_letter_jane_intern_1.pdf",
		ArtifactURL:      "/api/v1/documents/download/tok",
		Metadata:         models.DocumentMetadata{"stipend": "1000 USD/month"},
		IssuedAt:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ExpiresAt:        expiresAt,
	}
}

func TestVerificationServiceVerifiedDocument(t *testing.T) {
	expiry := time.Date(2026, 5, 30, 10, 0, 0, 0, time.UTC)
	repo := &lookupStub{docs: map[string]*models.GeneratedDocument{testCode: activeDocument(&expiry)}}
	svc := NewVerificationService(repo, nil, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) }

	resp := svc.Verify(context.Background(), testCode)
	require.True(t, resp.Verified)
	require.Equal(t, models.KindOfferLetter, resp.Kind)
	require.Equal(t, "jane@example.com", resp.SubjectRef)
	require.Equal(t, &expiry, resp.ExpiresAt)
}

func TestVerificationServiceNormalizesInput(t *testing.T) {
	repo := &lookupStub{docs: map[string]*models.GeneratedDocument{testCode: activeDocument(nil)}}
	svc := NewVerificationService(repo, nil, time.Minute, nil)

	resp := svc.Verify(context.Background(), "  a2c4-e6g8 j1k3_m5n7 ")
	require.True(t, resp.Verified)
}

func TestVerificationServiceMalformedCodeSkipsLookup(t *testing.T) {
	repo := &lookupStub{}
	svc := NewVerificationService(repo, nil, time.Minute, nil)

	for _, raw := range []string{"", "short", "A2C4E6G8J1K3M5N7X", "A2C4E6G8J1K3M5N!"} {
		resp := svc.Verify(context.Background(), raw)
		require.False(t, resp.Verified)
	}
	require.Zero(t, repo.calls)
}

func TestVerificationServiceExpiryIsReadFiltered(t *testing.T) {
	expiry := time.Date(2026, 5, 30, 10, 0, 0, 0, time.UTC)
	repo := &lookupStub{docs: map[string]*models.GeneratedDocument{testCode: activeDocument(&expiry)}}
	svc := NewVerificationService(repo, nil, time.Minute, nil)

	svc.now = func() time.Time { return expiry.Add(-time.Hour) }
	require.True(t, svc.Verify(context.Background(), testCode).Verified)

	// Same record, later clock: the code stops verifying without any write.
	svc.now = func() time.Time { return expiry.Add(time.Hour) }
	resp := svc.Verify(context.Background(), testCode)
	require.False(t, resp.Verified)
	require.Equal(t, &dto.VerificationResponse{Verified: false}, resp)
}

func TestVerificationServiceUniformMissOnLookupFailure(t *testing.T) {
	repo := &lookupStub{err: errors.New("connection refused")}
	svc := NewVerificationService(repo, nil, time.Minute, nil)

	resp := svc.Verify(context.Background(), testCode)
	require.Equal(t, &dto.VerificationResponse{Verified: false}, resp)
}

func TestVerificationServiceRedactionIsClosed(t *testing.T) {
	repo := &lookupStub{docs: map[string]*models.GeneratedDocument{testCode: activeDocument(nil)}}
	svc := NewVerificationService(repo, nil, time.Minute, nil)

	resp := svc.Verify(context.Background(), testCode)
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.Equal(t, &dto.VerificationResponse{
		Verified:      true,
		Kind:          models.KindOfferLetter,
		SubjectRef:    "jane@example.com",
		InternshipRef: "7f9c24e5-2f37-4a47-a1b0-2f86e35a35b9",
		IssuedAt:      &issuedAt,
		ArtifactURL:   "/api/v1/documents/download/tok",
	}, resp)
}

func TestVerificationServiceCachesHitsAndMisses(t *testing.T) {
	repo := &lookupStub{docs: map[string]*models.GeneratedDocument{testCode: activeDocument(nil)}}
	cache := newCacheStub()
	svc := NewVerificationService(repo, cache, time.Minute, nil)

	require.True(t, svc.Verify(context.Background(), testCode).Verified)
	require.True(t, svc.Verify(context.Background(), testCode).Verified)
	require.Equal(t, 1, repo.calls)

	miss := "0000000000000000"
	require.False(t, svc.Verify(context.Background(), miss).Verified)
	require.False(t, svc.Verify(context.Background(), miss).Verified)
	require.Equal(t, 2, repo.calls)

	// Hits and misses share one TTL so cache behaviour leaks nothing.
	require.Equal(t, cache.ttls["verify:"+testCode], cache.ttls["verify:"+miss])
}

func TestVerificationServiceHitTTLCappedByExpiry(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	expiry := now.Add(30 * time.Second)
	repo := &lookupStub{docs: map[string]*models.GeneratedDocument{testCode: activeDocument(&expiry)}}
	cache := newCacheStub()
	svc := NewVerificationService(repo, cache, time.Minute, nil)
	svc.now = func() time.Time { return now }

	// A document expiring inside the cache window must not verify true
	// from the cache past its expiry.
	require.True(t, svc.Verify(context.Background(), testCode).Verified)
	require.Equal(t, 30*time.Second, cache.ttls["verify:"+testCode])

	// Misses keep the full TTL.
	miss := "0000000000000000"
	require.False(t, svc.Verify(context.Background(), miss).Verified)
	require.Equal(t, time.Minute, cache.ttls["verify:"+miss])
}
