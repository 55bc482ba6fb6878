package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/repository"
)

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepository struct {
	findByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	findByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	findByIDFunc       func(ctx context.Context, id int64) (*models.User, error)
	createFunc         func(ctx context.Context, user *models.User) error
	updateFunc         func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestAuthService(t *testing.T) (AuthService, *mockUserRepository) {
	t.Helper()

	jwtService := mustJWTService(t, testSecret, testExpiry)
	mockRepo := &mockUserRepository{}
	return NewAuthService(mockRepo, jwtService), mockRepo
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

// =============================================================================
// Register Tests
// =============================================================================

func TestRegister_Success(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	var created *models.User
	mockRepo.createFunc = func(ctx context.Context, user *models.User) error {
		user.ID = 42
		created = user
		return nil
	}

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "  newuser  ",
		Email:    "  New.User@Example.COM ",
		Name:     " New User ",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if created == nil {
		t.Fatal("Create was not called")
	}
	if user.Username != "newuser" {
		t.Errorf("Username = %q, want trimmed %q", user.Username, "newuser")
	}
	if user.Email != "new.user@example.com" {
		t.Errorf("Email = %q, want lowercased %q", user.Email, "new.user@example.com")
	}
	if user.Name != "New User" {
		t.Errorf("Name = %q, want %q", user.Name, "New User")
	}
	if user.Role != models.RoleUser {
		t.Errorf("Role = %v, want default %v", user.Role, models.RoleUser)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Error("stored hash does not verify against the password")
	}
	if token == "" {
		t.Error("Register() should return a token")
	}
}

func TestRegister_TokenResolvesToCreatedUser(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	var created models.User
	mockRepo.createFunc = func(ctx context.Context, user *models.User) error {
		user.ID = 7
		created = *user
		return nil
	}
	mockRepo.findByIDFunc = func(ctx context.Context, id int64) (*models.User, error) {
		if id == created.ID {
			u := created
			return &u, nil
		}
		return nil, repository.ErrNotFound
	}

	_, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "secret99",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resolved, err := svc.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if resolved.ID != 7 || resolved.Username != "alice" {
		t.Errorf("resolved identity = %d/%q, want 7/alice", resolved.ID, resolved.Username)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)
	mockRepo.createFunc = func(ctx context.Context, user *models.User) error { return nil }

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:    "missing username",
			input:   RegisterInput{Email: "a@b.com", Name: "A", Password: "secret99"},
			wantErr: ErrValidation,
		},
		{
			name:    "missing email",
			input:   RegisterInput{Username: "a", Name: "A", Password: "secret99"},
			wantErr: ErrValidation,
		},
		{
			name:    "missing name",
			input:   RegisterInput{Username: "a", Email: "a@b.com", Password: "secret99"},
			wantErr: ErrValidation,
		},
		{
			name:    "short password",
			input:   RegisterInput{Username: "a", Email: "a@b.com", Name: "A", Password: "12345"},
			wantErr: ErrWeakPassword,
		},
		{
			name:    "unknown role",
			input:   RegisterInput{Username: "a", Email: "a@b.com", Name: "A", Password: "secret99", Role: "superuser"},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	existing := &models.User{ID: 1, Email: "taken@example.com"}
	mockRepo.findByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		if email == "taken@example.com" {
			return existing, nil
		}
		return nil, repository.ErrNotFound
	}

	// Casing differences in the second attempt must still collide.
	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "TAKEN@Example.com",
		Name:     "Other",
		Password: "secret99",
	})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("Register() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		if username == "taken" {
			return &models.User{ID: 1, Username: "taken"}, nil
		}
		return nil, repository.ErrNotFound
	}

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "taken",
		Email:    "fresh@example.com",
		Name:     "Fresh",
		Password: "secret99",
	})
	if !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Errorf("Register() error = %v, want ErrDuplicateUsername", err)
	}
}

func TestRegister_StoreRejectsDuplicate(t *testing.T) {
	// The pre-check can race; a duplicate rejection from the store itself
	// must surface as the same error.
	svc, mockRepo := setupTestAuthService(t)

	mockRepo.createFunc = func(ctx context.Context, user *models.User) error {
		return repository.ErrDuplicateEmail
	}

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "racer",
		Email:    "racer@example.com",
		Name:     "Racer",
		Password: "secret99",
	})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("Register() error = %v, want ErrDuplicateEmail", err)
	}
}

// =============================================================================
// Login Tests
// =============================================================================

func TestLogin_ByEmailAndUsername(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	user := &models.User{
		ID:           1,
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hashPassword(t, "correct-password"),
		Role:         models.RoleUser,
		IsActive:     true,
	}
	mockRepo.findByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		if email == user.Email {
			return user, nil
		}
		return nil, repository.ErrNotFound
	}
	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		if username == user.Username {
			return user, nil
		}
		return nil, repository.ErrNotFound
	}

	tests := []struct {
		name  string
		login string
	}{
		{name: "by email", login: "test@example.com"},
		{name: "by email mixed case", login: "Test@Example.COM"},
		{name: "by username", login: "testuser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, token, err := svc.Login(context.Background(), tt.login, "correct-password")
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if got.ID != user.ID {
				t.Errorf("Login() user ID = %v, want %v", got.ID, user.ID)
			}
			if token == "" {
				t.Error("Login() should return a token")
			}
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	active := &models.User{
		ID:           1,
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hashPassword(t, "correct-password"),
		IsActive:     true,
	}
	inactive := &models.User{
		ID:           2,
		Username:     "ghost",
		Email:        "ghost@example.com",
		PasswordHash: hashPassword(t, "correct-password"),
		IsActive:     false,
	}
	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		switch username {
		case "testuser":
			return active, nil
		case "ghost":
			return inactive, nil
		}
		return nil, repository.ErrNotFound
	}

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{name: "unknown user", login: "nobody", password: "correct-password"},
		{name: "wrong password", login: "testuser", password: "wrong-password"},
		{name: "deactivated account with correct password", login: "ghost", password: "correct-password"},
		{name: "empty password", login: "testuser", password: ""},
		{name: "empty login", login: "", password: "correct-password"},
	}

	// Every failure mode yields the identical error, so the response gives
	// no user-enumeration signal.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.login, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

// =============================================================================
// ChangePassword Tests
// =============================================================================

func TestChangePassword_Success(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	user := &models.User{
		ID:           1,
		PasswordHash: hashPassword(t, "old-password"),
	}
	var updated *models.User
	mockRepo.updateFunc = func(ctx context.Context, u *models.User) error {
		updated = u
		return nil
	}

	err := svc.ChangePassword(context.Background(), user, "old-password", "new-password")
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if updated == nil {
		t.Fatal("Update was not called")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-password")); err != nil {
		t.Error("new hash does not verify against the new password")
	}
}

func TestChangePassword_Failures(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	user := &models.User{
		ID:           1,
		PasswordHash: hashPassword(t, "old-password"),
	}

	tests := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{name: "wrong current password", current: "not-it", next: "new-password", wantErr: ErrWrongPassword},
		{name: "short new password", current: "old-password", next: "12345", wantErr: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), user, tt.current, tt.next)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ChangePassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// ResolveToken Tests
// =============================================================================

func TestResolveToken_Success(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)

	user := &models.User{ID: 1, Username: "testuser", Email: "test@example.com", Role: models.RoleUser, IsActive: true}
	mockRepo.findByIDFunc = func(ctx context.Context, id int64) (*models.User, error) {
		if id == 1 {
			return user, nil
		}
		return nil, repository.ErrNotFound
	}

	jwtService := mustJWTService(t, testSecret, testExpiry)
	token, err := jwtService.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	resolved, err := svc.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if resolved.ID != 1 {
		t.Errorf("resolved user ID = %v, want 1", resolved.ID)
	}
}

func TestResolveToken_DeactivatedUser(t *testing.T) {
	// Deactivation invalidates previously issued, unexpired tokens on the
	// next resolution.
	svc, mockRepo := setupTestAuthService(t)

	user := &models.User{ID: 1, Username: "testuser", Email: "test@example.com", Role: models.RoleUser, IsActive: true}
	mockRepo.findByIDFunc = func(ctx context.Context, id int64) (*models.User, error) {
		u := *user
		return &u, nil
	}

	jwtService := mustJWTService(t, testSecret, testExpiry)
	token, err := jwtService.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := svc.ResolveToken(context.Background(), token); err != nil {
		t.Fatalf("ResolveToken() before deactivation error = %v", err)
	}

	user.IsActive = false

	if _, err := svc.ResolveToken(context.Background(), token); err == nil {
		t.Error("ResolveToken() should fail after deactivation")
	}
}

func TestResolveToken_UserGone(t *testing.T) {
	svc, mockRepo := setupTestAuthService(t)
	mockRepo.findByIDFunc = func(ctx context.Context, id int64) (*models.User, error) {
		return nil, repository.ErrNotFound
	}

	jwtService := mustJWTService(t, testSecret, testExpiry)
	token, err := jwtService.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := svc.ResolveToken(context.Background(), token); err == nil {
		t.Error("ResolveToken() should fail when the subject no longer exists")
	}
}

func TestResolveToken_BadToken(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	if _, err := svc.ResolveToken(context.Background(), "not-a-token"); err == nil {
		t.Error("ResolveToken() should fail for malformed token")
	}
}
