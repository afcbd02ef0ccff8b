package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civicdesk/issue-tracker/internal/core/domain"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if created.Role != domain.RoleCitizen {
		t.Errorf("role = %s, want default citizen", created.Role)
	}
	if created.Status != domain.UserActive {
		t.Errorf("status = %s, want active", created.Status)
	}
	if created.Premium {
		t.Error("Premium = true, want new accounts to start non-premium")
	}
	if created.PasswordHash == "s3cret" {
		t.Error("password stored in plain text")
	}

	token, user, err := svc.Login(ctx, "ana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("user email = %s, want ana@example.com", user.Email)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["email"] != "ana@example.com" || claims["role"] != domain.RoleCitizen {
		t.Errorf("claims = %v, want email and role", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pw"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Login() error = %v, want ErrUserNotFound", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "Ana Again", "ana@example.com", "other", ""); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("Register() error = %v, want ErrUserExists", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), testSecret, time.Hour)

	if _, err := svc.Register(context.Background(), "Eve", "eve@example.com", "pw", "superuser"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Register() error = %v, want ErrInvalidCredentials", err)
	}
}
