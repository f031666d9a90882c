package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"servicelink-server/config"
	"servicelink-server/models"
	"servicelink-server/types"
)

func TestSignupAndLogin(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	user, token, err := svc.Signup(models.UserSignup{
		Name:     "Ayesha",
		Email:    "ayesha@example.com",
		Password: "secret123",
		Role:     models.RoleSeeker,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, models.RoleSeeker, user.Role)
	require.NotEqual(t, "secret123", user.PasswordHash)

	logged, token, err := svc.Login(models.UserLogin{
		Email:    "ayesha@example.com",
		Password: "secret123",
		Role:     models.RoleSeeker,
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
	require.NotEmpty(t, token)
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	_, _, err := svc.Signup(models.UserSignup{
		Name:     "Ayesha",
		Email:    "ayesha@example.com",
		Password: "secret123",
		Role:     "ADMIN",
	})
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	signup := models.UserSignup{
		Name:     "Ayesha",
		Email:    "ayesha@example.com",
		Password: "secret123",
		Role:     models.RoleSeeker,
	}
	_, _, err := svc.Signup(signup)
	require.NoError(t, err)

	_, _, err = svc.Signup(signup)
	require.Error(t, err)
	require.Equal(t, KindConflict, KindOf(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	_, _, err := svc.Signup(models.UserSignup{
		Name: "Ayesha", Email: "ayesha@example.com",
		Password: "secret123", Role: models.RoleSeeker,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(models.UserLogin{
		Email: "ayesha@example.com", Password: "wrong", Role: models.RoleSeeker,
	})
	require.Error(t, err)
	require.Equal(t, KindAuthorization, KindOf(err))
}

func TestLoginRoleMismatchNamesActualRole(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	_, _, err := svc.Signup(models.UserSignup{
		Name: "Bilal", Email: "bilal@example.com",
		Password: "secret123", Role: models.RoleProvider,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(models.UserLogin{
		Email: "bilal@example.com", Password: "secret123", Role: models.RoleSeeker,
	})
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
	require.Contains(t, err.Error(), "PROVIDER")
}

func TestGeneratedTokenCarriesUserID(t *testing.T) {
	svc := NewAuthService(newTestDB(t))

	user, token, err := svc.Signup(models.UserSignup{
		Name: "Ayesha", Email: "ayesha@example.com",
		Password: "secret123", Role: models.RoleSeeker,
	})
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &types.Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWT.Secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(*types.Claims)
	require.True(t, ok)
	require.Equal(t, user.ID, claims.UserID)
}
