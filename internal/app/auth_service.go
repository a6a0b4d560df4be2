package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/pkg/jwtutil"
	"tasktracker/internal/repository"
)

// TokenDenylist remembers revoked token ids until they would have expired.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	userRepo    repository.UserRepository
	credentials *CredentialService
	denylist    TokenDenylist
	log         *slog.Logger
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// ProfileInput fields are optional; nil leaves the stored value untouched.
type ProfileInput struct {
	Username *string
	Email    *string
}

type AuthResult struct {
	Token string
	User  *model.User
}

// NewAuthService accepts a nil denylist; logout then cannot revoke tokens.
func NewAuthService(userRepo repository.UserRepository, credentials *CredentialService, denylist TokenDenylist, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		userRepo:    userRepo,
		credentials: credentials,
		denylist:    denylist,
		log:         log,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := input.Username
	email := normalizeEmail(input.Email)

	var fc fieldChecker
	fc.check("username", username, usernameRule)
	fc.check("email", email, emailRule)
	checkPassword(&fc, input.Password)
	if err := fc.err(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindConflict(ctx, username, email, "")
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictFor(existing, email)
	}

	hash, err := s.credentials.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	token, err := s.credentials.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	var fc fieldChecker
	fc.check("email", email, emailRule)
	fc.check("password", input.Password, loginPasswordRule)
	if err := fc.err(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	if !s.credentials.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredential
	}

	token, err := s.credentials.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to its user. Invalid, expired and
// revoked tokens, and tokens whose user no longer exists, all yield
// ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, *jwtutil.Claims, error) {
	claims, err := s.credentials.ValidateToken(token)
	if err != nil {
		return nil, nil, ErrUnauthenticated
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check token revocation failed: %w", err)
		}
		if revoked {
			return nil, nil, ErrUnauthenticated
		}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUnauthenticated
	}
	return user, claims, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*model.User, error) {
	var patch repository.UserPatch
	var fc fieldChecker
	if input.Username != nil {
		username := *input.Username
		fc.check("username", username, usernameRule)
		patch.Username = &username
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		fc.check("email", email, emailRule)
		patch.Email = &email
	}
	if err := fc.err(); err != nil {
		return nil, err
	}

	if !patch.Empty() {
		existing, err := s.userRepo.FindConflict(ctx, deref(patch.Username), deref(patch.Email), userID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, conflictFor(existing, deref(patch.Email))
		}
	}

	user, err := s.userRepo.Update(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *jwtutil.Claims) error {
	if s.denylist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.Remaining(time.Now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token failed: %w", err)
	}
	return nil
}

func checkPassword(fc *fieldChecker, password string) {
	if len(password) > bcryptMaxPasswordBytes {
		fc.add("password", "Password cannot exceed 72 bytes")
		return
	}
	fc.check("password", password, passwordRule)
}

// conflictFor picks the reported field: email wins whenever the colliding
// record carries the requested email.
func conflictFor(existing *model.User, email string) error {
	if email != "" && existing.Email == email {
		return ErrEmailExists
	}
	return ErrUsernameExists
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
