package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("doc-1", "documents/offer_letter.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	docID, location, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "doc-1", docID)
	require.Equal(t, "documents/offer_letter.pdf", location)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("doc-1", "documents/offer_letter.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	docID, location, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "doc-1", docID)
	require.Equal(t, "documents/offer_letter.pdf", location)
}

func TestSignedURLSignerRejectsTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("doc-1", "documents/certificate.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)
}

func TestLocalObjectStorePutOpenDelete(t *testing.T) {
	store, err := NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)

	location, err := store.Put("documents", "offer.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "documents/offer.pdf", location)
	require.True(t, store.Exists("documents", "offer.pdf"))

	file, err := store.Open("documents", "offer.pdf")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, store.Delete("documents", "offer.pdf"))
	require.False(t, store.Exists("documents", "offer.pdf"))

	// Deleting a missing key is idempotent.
	require.NoError(t, store.Delete("documents", "offer.pdf"))
}
