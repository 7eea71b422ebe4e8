package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"taskmanager/backend/config"
	"taskmanager/backend/database"
	"taskmanager/backend/models"
)

// Claims carried in every issued token. The numeric user id travels in a
// custom "id" claim consumed by the task access policy.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	UserID   uint   `json:"id"`
	jwt.RegisteredClaims
}

// HashPassword returns the lowercase hex SHA-256 of the password. Single
// round, unsalted, so stored hashes stay compatible with the seeded data.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Authenticate looks up a user by exact username and compares password
// hashes. Returns nil for any mismatch or missing user, never an error for
// bad credentials.
func Authenticate(username, password string) *models.User {
	var user models.User
	if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil
	}
	if HashPassword(password) != user.PasswordHash {
		return nil
	}
	return &user
}

// Register creates a user with role "User". Returns nil when the username
// or email is already taken, either via the pre-check or via the unique
// constraints on insert.
func Register(username, email, password string) *models.User {
	var existing models.User
	err := database.DB.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("registration lookup failed", "source", "auth", "error", err.Error())
		return nil
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: HashPassword(password),
		Role:         "User",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		slog.Warn("registration insert failed", "source", "auth", "username", username, "error", err.Error())
		return nil
	}
	return &user
}

// GenerateToken issues a signed HS256 token for the user with the
// configured expiry.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		UserID:   user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.C.JWT.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.C.JWT.Secret))
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.C.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
