package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	analysisID := uuid.New()
	fileID := uuid.New()

	token, err := issuer.Issue(analysisID, fileID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotAnalysis, gotFile, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, analysisID, gotAnalysis)
	assert.Equal(t, fileID, gotFile)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, _, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, _, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, _, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
