package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"downtime-tracker/domain"
)

// jwtKey is the secret used to sign session tokens.
// In a production environment, this should be loaded from an environment variable or a secret manager.
var jwtKey = []byte("floor_downtime_session_signing_key_2026")

// SessionClaims is the data stored inside the session JWT. The session id
// points at a server-side record so logout and account deletion can
// invalidate tokens before they expire.
type SessionClaims struct {
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed session JWT for one user.
func GenerateToken(userID int, role domain.Role, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:    userID,
		Role:      string(role),
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "downtime-tracker",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ValidateToken parses and validates the signature and expiration of a
// session token string.
func ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
