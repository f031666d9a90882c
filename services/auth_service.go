package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"servicelink-server/config"
	"servicelink-server/models"
	"servicelink-server/types"
)

// AuthService handles signup, login and JWT token operations
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Signup registers a new account in the requested role
func (s *AuthService) Signup(in models.UserSignup) (*models.User, string, error) {
	if in.Role != models.RoleSeeker && in.Role != models.RoleProvider {
		return nil, "", Validationf("Role must be SEEKER or PROVIDER")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  string(hash),
		Role:          in.Role,
		Phone:         in.Phone,
		PaymentMethod: in.PaymentMethod,
		PaymentDetail: in.PaymentDetail,
		Lat:           in.Lat,
		Lng:           in.Lng,
		Address:       in.Address,
		IsActive:      true,
	}
	if in.Role == models.RoleProvider {
		user.ServiceCategory = in.ServiceCategory
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", classifyDB(err, "An account with this email already exists")
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login authenticates by email and password for a specific role. Logging into
// the wrong side of the marketplace names the account's actual role.
func (s *AuthService) Login(in models.UserLogin) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("email = ?", in.Email).First(&user).Error; err != nil {
		return nil, "", Authorizationf("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, "", Authorizationf("Invalid email or password")
	}

	if !user.IsActive {
		return nil, "", Authorizationf("User account is deactivated")
	}

	if in.Role != "" && in.Role != user.Role {
		return nil, "", Validationf("This account is registered as a %s", user.Role)
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// GenerateToken signs an access token for the user
func (s *AuthService) GenerateToken(userID uint) (string, error) {
	claims := &types.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(config.AppConfig.JWT.ExpiryHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "servicelink-server",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.AppConfig.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
