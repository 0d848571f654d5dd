package service

import (
	"alcyxob/weekly-routines/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuthService(f.userRepo, testSecret, time.Hour)

	user, err := auth.Register(ctx, " Sam ", "Sam@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.DisplayName)
	assert.Equal(t, "sam@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = auth.Register(ctx, "Other", "sam@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, loggedIn, err := auth.Login(ctx, "SAM@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	ownerID, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, ownerID)

	_, _, err = auth.Login(ctx, "sam@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.userRepo, testSecret, time.Hour)

	_, err := auth.Register(context.Background(), "", "a@b.c", "pw")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "displayName", ve.Field)

	_, err = auth.Register(context.Background(), "A", "", "pw")
	require.ErrorAs(t, err, &ve)
}

func TestValidateTokenRejects(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.userRepo, testSecret, time.Hour)

	sign := func(secret string, claims jwtClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	uid := primitive.NewObjectID().Hex()
	now := time.Now()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other", jwtClaims{UserID: uid, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}})},
		{"expired", sign(testSecret, jwtClaims{UserID: uid, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}})},
		{"bad user id", sign(testSecret, jwtClaims{UserID: "nope", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
