package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	accessTokenTTL  = time.Hour
	refreshTokenTTL = time.Hour * 168
)

var jwtSecret string

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return nil
}

func GenerateTokenPair(userID uint, email string) (access string, refresh string, err error) {
	access, err = generateToken(userID, email, TokenTypeAccess, accessTokenTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err = generateToken(userID, email, TokenTypeRefresh, refreshTokenTTL)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func GenerateAccessToken(userID uint, email string) (string, error) {
	return generateToken(userID, email, TokenTypeAccess, accessTokenTTL)
}

func generateToken(userID uint, email string, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"type":    tokenType,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// VerifyToken validates the signature and expiry of tokenString and ensures
// the token carries the expected type claim, so refresh tokens cannot be
// replayed as access tokens.
func VerifyToken(tokenString string, expectedType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return nil, fmt.Errorf("Invalid token claims")
	}

	if tokenType, _ := claims["type"].(string); tokenType != expectedType {
		return nil, fmt.Errorf("Unexpected token type")
	}

	return claims, nil
}
