package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"memberdesk-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ActorClaims carries the authenticated actor identity and role. Session
// issuance happens in the auth service upstream; this engine only validates.
type ActorClaims struct {
	ActorID string            `json:"actor_id"`
	Role    domain.SenderRole `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateToken(actorID string, role domain.SenderRole, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*ActorClaims, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{secret: []byte(secret)}
}

// GenerateToken exists for local development and tests; production tokens
// come from the upstream auth service signed with the shared secret.
func (m *tokenManager) GenerateToken(actorID string, role domain.SenderRole, ttl time.Duration) (string, error) {
	claims := ActorClaims{
		ActorID: actorID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "auth-service",
			Audience:  jwt.ClaimStrings{"membership-review"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ActorID == "" && claims.Subject != "" {
		claims.ActorID = claims.Subject
	}
	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleMember {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
