package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow/fundflow-api/internal/domain/user"
	"github.com/fundflow/fundflow-api/internal/pkg/jwt"
)

type userRepoStub struct {
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		byID:    map[uuid.UUID]*user.User{},
		byEmail: map[string]*user.User{},
	}
}

func (r *userRepoStub) Create(_ context.Context, u *user.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return user.ErrEmailAlreadyExists
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *userRepoStub) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepoStub) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepoStub) GetWalletBalance(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	u, ok := r.byID[id]
	if !ok {
		return decimal.Zero, user.ErrUserNotFound
	}
	return u.WalletBalance, nil
}

func (r *userRepoStub) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func newAuthService() (*Service, *userRepoStub) {
	repo := newUserRepoStub()
	jwtService := jwt.NewService("test-secret", 15*time.Minute, 24*time.Hour)
	return NewService(repo, jwtService), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()

	u, tokens, err := svc.Register(context.Background(), &RegisterRequest{
		Email:       "Alice@Example.com",
		Password:    "correct horse battery",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Role != user.RoleUser {
		t.Errorf("role = %s, want user", u.Role)
	}
	if !u.WalletBalance.Equal(decimal.Zero) {
		t.Errorf("new account should start with a zero balance, got %s", u.WalletBalance)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected a full token pair")
	}

	if _, _, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Errorf("Login: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	req := &RegisterRequest{Email: "bob@example.com", Password: "hunter2hunter2", DisplayName: "Bob"}
	if _, _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()

	if _, _, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "carol@example.com", Password: "first password", DisplayName: "Carol",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), &LoginRequest{
		Email: "carol@example.com", Password: "wrong password",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, _, err := svc.Login(context.Background(), &LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, _ := newAuthService()

	u, tokens, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "dave@example.com", Password: "password1234", DisplayName: "Dave",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, pair, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.ID != u.ID {
		t.Errorf("refreshed user %s, want %s", refreshed.ID, u.ID)
	}
	if pair.AccessToken == "" {
		t.Error("expected a new access token")
	}

	// an access token is not a refresh token
	if _, _, err := svc.Refresh(context.Background(), tokens.AccessToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("expected ErrInvalidRefresh, got %v", err)
	}
}
