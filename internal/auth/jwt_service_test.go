package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clubrun/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:     1,
		Email:  "runner@example.com",
		ClubID: 10,
		Role:   model.RoleMember,
	}
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	service := NewJWTService("test-secret")

	token, err := service.GenerateAccessToken(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, uint(10), claims.ClubID)
	assert.Equal(t, model.RoleMember, claims.Role)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	service := NewJWTService("test-secret")
	other := NewJWTService("other-secret")

	token, err := service.GenerateAccessToken(testUser())
	assert.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Garbage(t *testing.T) {
	service := NewJWTService("test-secret")

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_MissingClub(t *testing.T) {
	service := NewJWTService("test-secret")

	user := testUser()
	user.ClubID = 0
	token, err := service.GenerateAccessToken(user)
	assert.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrMissingClub)
}

func TestJWTService_RefreshTokenCarriesID(t *testing.T) {
	service := NewJWTService("test-secret")

	tokenID, token, err := service.GenerateRefreshToken(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	extracted, err := service.ExtractTokenID(token)
	assert.NoError(t, err)
	assert.Equal(t, tokenID, extracted)
}

func TestJWTService_ExtractTokenID_AccessTokenHasNone(t *testing.T) {
	service := NewJWTService("test-secret")

	token, err := service.GenerateAccessToken(testUser())
	assert.NoError(t, err)

	_, err = service.ExtractTokenID(token)
	assert.Error(t, err)
}
