package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
	authmw "verigate/pkg/platform/middleware/auth"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer")

func newActor(t *testing.T) id.ActorID {
	t.Helper()
	actor, err := id.ParseActorID("5b0f6c1e-6a57-4b8f-9d3c-2f1c0e7a9b11")
	require.NoError(t, err)
	return actor
}

func Test_GenerateAdminToken(t *testing.T) {
	actor := newActor(t)
	token, err := jwtService.GenerateAdminToken(actor, authmw.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.String(), claims.Subject)
	assert.Equal(t, authmw.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAdminToken(newActor(t), authmw.RoleAdmin, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", err.Error())
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	other := NewJWTService("test-signing-key", "someone-else")
	token, err := other.GenerateAdminToken(newActor(t), authmw.RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("another-key", "test-issuer")
	token, err := other.GenerateAdminToken(newActor(t), authmw.RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.Equal(t, "invalid token", err.Error())
}

func Test_Adapter(t *testing.T) {
	actor := newActor(t)
	token, err := jwtService.GenerateAdminToken(actor, "viewer", time.Hour)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.String(), claims.ActorID)
	assert.Equal(t, "viewer", claims.Role)
}
