package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for any failed login. Unknown user,
	// wrong password and deactivated account all produce the same error so
	// nothing is leaked about which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPassword is returned when the current password does not match
	// on a password change.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrWeakPassword is returned when a new password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrValidation is returned for missing or malformed registration input.
	ErrValidation = errors.New("invalid input")
)

const minPasswordLength = 6

// dummyHash is a valid bcrypt hash of no real password, compared against
// when the login identifier matches no user.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// RegisterInput is the normalized input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Name     string
	Password string
	Role     models.Role
}

// AuthService owns credential handling: registration, login, password
// changes and token resolution.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, login, password string) (*models.User, string, error)
	ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error
	ResolveToken(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService JWTService
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo repository.UserRepository, jwtService JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register creates a user and returns it with a freshly issued token. Email
// is lowercased and trimmed before the uniqueness check; username and name
// are trimmed. The duplicate pre-check is advisory only: the store's unique
// constraint is the authoritative guard, and its rejection surfaces as the
// same duplicate errors.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if username == "" || email == "" || name == "" || input.Password == "" {
		return nil, "", ErrValidation
	}
	if len(input.Password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, "", ErrValidation
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", repository.ErrDuplicateEmail
	}
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, "", repository.ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login authenticates by email (case-insensitive) first, then by exact
// username, and returns the user with a new token.
func (s *authService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(login))
	if err != nil {
		user, err = s.userRepo.FindByUsername(ctx, login)
	}
	if err != nil {
		// Burn a comparison so a missing user costs the same as a bad password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *authService) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

// ResolveToken verifies the token and loads the live user record. The
// active flag is re-checked here so deactivation takes effect immediately,
// even for tokens that have not yet expired.
func (s *authService) ResolveToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.jwtService.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
