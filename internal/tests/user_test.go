package tests

import (
	"context"
	"errors"
	"testing"

	"chainride/internal/domain"
	"chainride/internal/service"
)

// ──────────────────────────────────────────────
// USER REGISTRATION AND ADDRESS ASSIGNMENT
// ──────────────────────────────────────────────

func TestRegister_ValidInput_AssignsLedgerAddress(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	assigner := &FixedAssigner{Addresses: []string{"0xaaa", "0xbbb"}}
	svc := service.NewUserService(userRepo, assigner, testLogger())

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.UserRoleRider,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.ID == "" {
		t.Error("expected user ID to be set")
	}
	if user.LedgerAddress != "0xaaa" {
		t.Errorf("expected first pool address, got %q", user.LedgerAddress)
	}
}

func TestRegister_AddressesRotateThroughPool(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	assigner := &FixedAssigner{Addresses: []string{"0xaaa", "0xbbb"}}
	svc := service.NewUserService(userRepo, assigner, testLogger())

	want := []string{"0xaaa", "0xbbb", "0xaaa"}
	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for i, email := range emails {
		user, err := svc.Register(context.Background(), service.RegisterInput{
			Username: "user",
			Email:    email,
			Role:     domain.UserRoleDriver,
		})
		if err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
		if user.LedgerAddress != want[i] {
			t.Errorf("register %d: address = %q, want %q", i, user.LedgerAddress, want[i])
		}
	}
}

func TestRegister_DuplicateEmail_Fails(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	assigner := &FixedAssigner{Addresses: []string{"0xaaa"}}
	svc := service.NewUserService(userRepo, assigner, testLogger())

	in := service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.UserRoleRider,
	}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got: %v", err)
	}
}

func TestRegister_InvalidRole_Fails(t *testing.T) {
	t.Parallel()

	svc := service.NewUserService(NewMockUserRepository(), &FixedAssigner{Addresses: []string{"0xaaa"}}, testLogger())

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     "admin",
	})
	if !errors.Is(err, service.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got: %v", err)
	}
}

func TestLogin_UnknownEmail_Fails(t *testing.T) {
	t.Parallel()

	svc := service.NewUserService(NewMockUserRepository(), &FixedAssigner{Addresses: []string{"0xaaa"}}, testLogger())

	_, err := svc.Login(context.Background(), "nobody@example.com")
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}
