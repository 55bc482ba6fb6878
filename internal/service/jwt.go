// Package service contains the business logic for the task service.
package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhive/task-service/internal/models"
)

var (
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignature is returned when a token's signature does not verify.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenMalformed is returned for tokens that cannot be parsed.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims carries the identity facts embedded in a signed token. Role and
// identity reflect the user as of issuance; a role change after issuance is
// not visible until the user re-authenticates.
type Claims struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies signed identity tokens.
type JWTService interface {
	Issue(user *models.User) (string, error)
	Verify(tokenString string) (*Claims, error)
	Expiry() time.Duration
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService creates a new JWTService. The secret must be at least
// 32 bytes.
func NewJWTService(secret string, expiry time.Duration) (JWTService, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	return &jwtService{secret: []byte(secret), expiry: expiry}, nil
}

func (s *jwtService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *jwtService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return s.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (s *jwtService) Expiry() time.Duration {
	return s.expiry
}
