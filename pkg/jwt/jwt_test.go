package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour)
	userID := uuid.New()

	token, err := signer.GenerateToken(userID, "mgr@example.com", "Mia", "MANAGER", []string{"discount:approve"}, "v1")
	require.NoError(t, err)

	claims, err := signer.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "MANAGER", claims.RoleCode)
	require.Equal(t, []string{"discount:approve"}, claims.Privileges)
	require.Equal(t, "v1", claims.TokenVersion)
	require.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	token, err := NewSigner("one", time.Hour).GenerateToken(uuid.New(), "a@b.c", "A", "ADMIN", nil, "")
	require.NoError(t, err)

	_, err = NewSigner("two", time.Hour).ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	signer.now = func() time.Time { return issued }

	token, err := signer.GenerateToken(uuid.New(), "a@b.c", "A", "ADMIN", nil, "")
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMissing(t *testing.T) {
	t.Parallel()

	_, err := NewSigner("secret", time.Hour).ValidateToken("")
	require.ErrorIs(t, err, ErrMissingToken)
}
