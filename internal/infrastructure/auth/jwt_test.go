package auth

import (
	"testing"
	"time"

	"github.com/ferreteria/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "ferreteria"})
}

func newTestInput() IssueInput {
	return IssueInput{
		BranchID: uuid.New(),
		UserID:   uuid.New(),
		Username: "cajero1",
		Roles:    []string{"cashier"},
		TTL:      15 * time.Minute,
	}
}

func signRaw(t *testing.T, claims *Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.IssueAccessToken(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, input.BranchID.String(), claims.BranchID)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "cajero1", claims.Username)
	assert.True(t, claims.HasRole("cashier"))
	assert.False(t, claims.HasRole("admin"))

	branchID, err := claims.GetBranchUUID()
	require.NoError(t, err)
	assert.Equal(t, input.BranchID, branchID)
	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	input.TTL = -time.Hour

	token, err := svc.IssueAccessToken(input)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := NewJWTService(config.JWTConfig{Secret: "another-secret-also-32-chars-long", Issuer: "ferreteria"}).
		IssueAccessToken(newTestInput())
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	token, err := NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "someone-else"}).
		IssueAccessToken(newTestInput())
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Malformed(t *testing.T) {
	_, err := newTestJWTService().ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "ferreteria", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		BranchID:         uuid.NewString(),
		UserID:           uuid.NewString(),
		TokenType:        TokenTypeAccess,
	}
	token := signRaw(t, claims, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)

	_, err := newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_ClaimChecks(t *testing.T) {
	base := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "ferreteria",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			BranchID:  uuid.NewString(),
			UserID:    uuid.NewString(),
			TokenType: TokenTypeAccess,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Claims)
		wantErr error
	}{
		{"refresh token", func(c *Claims) { c.TokenType = "refresh" }, ErrInvalidTokenType},
		{"missing branch", func(c *Claims) { c.BranchID = "" }, ErrMissingBranchID},
		{"missing user", func(c *Claims) { c.UserID = "" }, ErrMissingUserID},
		{"branch not a uuid", func(c *Claims) { c.BranchID = "sucursal-1" }, ErrInvalidClaims},
		{"not yet valid", func(c *Claims) { c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour)) }, ErrTokenNotYetValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := base()
			tt.mutate(claims)
			token := signRaw(t, claims, jwt.SigningMethodHS256, []byte(testSecret))

			_, err := newTestJWTService().ValidateAccessToken(token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
