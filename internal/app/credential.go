package app

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/pkg/jwtutil"
)

// CredentialService owns password hashing and session token signing.
type CredentialService struct {
	jwtSecret     string
	jwtExpiration time.Duration
	hashCost      int
}

func NewCredentialService(jwtSecret string, jwtExpiration time.Duration) *CredentialService {
	return &CredentialService{
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		hashCost:      bcrypt.DefaultCost,
	}
}

// SetHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *CredentialService) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *CredentialService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

func (s *CredentialService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *CredentialService) IssueToken(userID string) (string, error) {
	return jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, userID)
}

func (s *CredentialService) ValidateToken(token string) (*jwtutil.Claims, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
