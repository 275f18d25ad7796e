package accounts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"foodonline-api/config"
	"foodonline-api/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := config.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	clock := func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }
	return NewStore(db, bcrypt.MinCost, zerolog.Nop(), clock), db
}

func customerInput() RegisterInput {
	return RegisterInput{
		Role:            models.RoleCustomer,
		FirstName:       "Alice",
		LastName:        "Smith",
		Username:        "alice",
		Email:           "Alice@X.com ",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func vendorInput() RegisterInput {
	return RegisterInput{
		Role:            models.RoleVendor,
		FirstName:       "Bob",
		Username:        "bob",
		Email:           "bob@x.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		VendorName:      "Bob's Burgers",
	}
}

// =============================================================================
// Register Tests
// =============================================================================

func TestRegister_CustomerCreatedInactiveWithProfile(t *testing.T) {
	store, db := setupStore(t)

	user, vendor, err := store.Register(context.Background(), customerInput())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if vendor != nil {
		t.Error("customer registration should not create a vendor")
	}
	if user.IsActive {
		t.Error("new users must be inactive")
	}
	if user.Email != "alice@x.com" {
		t.Errorf("email should be normalized, got %q", user.Email)
	}
	if user.Role != models.RoleCustomer {
		t.Errorf("role = %v", user.Role)
	}

	var profiles int64
	db.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&profiles)
	if profiles != 1 {
		t.Errorf("expected one profile, got %d", profiles)
	}
}

func TestRegister_VendorGetsSlug(t *testing.T) {
	store, db := setupStore(t)

	user, vendor, err := store.Register(context.Background(), vendorInput())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if vendor == nil {
		t.Fatal("vendor registration should create a vendor")
	}
	want := fmt.Sprintf("bobs-burgers-%d", user.ID)
	if vendor.Slug != want {
		t.Errorf("slug = %q, want %q", vendor.Slug, want)
	}
	if vendor.IsApproved {
		t.Error("vendors start unapproved")
	}

	var profile models.UserProfile
	db.Where("user_id = ?", user.ID).First(&profile)
	if vendor.UserProfileID != profile.ID {
		t.Errorf("vendor profile id = %d, want %d", vendor.UserProfileID, profile.ID)
	}
}

func TestRegister_SameVendorNameDistinctSlugs(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, first, err := store.Register(ctx, vendorInput())
	if err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	in := vendorInput()
	in.Username, in.Email = "bob2", "bob2@x.com"
	_, second, err := store.Register(ctx, in)
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if first.Slug == second.Slug {
		t.Errorf("slugs should differ, both %q", first.Slug)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"password mismatch", func(in *RegisterInput) { in.ConfirmPassword = "other" }, ErrPasswordMismatch},
		{"unset role", func(in *RegisterInput) { in.Role = models.RoleUnset }, ErrInvalidRole},
		{"duplicate email", func(in *RegisterInput) { in.Username = "alice2"; in.Email = "ALICE@x.com" }, ErrDuplicateEmail},
		{"duplicate username", func(in *RegisterInput) { in.Email = "other@x.com" }, ErrDuplicateUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, db := setupStore(t)
			if _, _, err := store.Register(context.Background(), customerInput()); err != nil {
				t.Fatalf("seed Register() error = %v", err)
			}
			in := customerInput()
			tt.mutate(&in)
			_, _, err := store.Register(context.Background(), in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Register() error = %v, want %v", err, tt.want)
			}
			var users int64
			db.Model(&models.User{}).Count(&users)
			if users != 1 {
				t.Errorf("failed registration must not write rows, have %d users", users)
			}
		})
	}
}

func TestRegister_VendorNameRequired(t *testing.T) {
	store, db := setupStore(t)
	in := vendorInput()
	in.VendorName = "   "
	if _, _, err := store.Register(context.Background(), in); !errors.Is(err, ErrVendorNameRequired) {
		t.Fatalf("Register() error = %v", err)
	}
	var users int64
	db.Model(&models.User{}).Count(&users)
	if users != 0 {
		t.Errorf("expected no users, got %d", users)
	}
}

// =============================================================================
// Authenticate Tests
// =============================================================================

func TestAuthenticate(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	user, _, err := store.Register(ctx, customerInput())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := store.Authenticate(ctx, "alice@x.com", "secret123"); !errors.Is(err, ErrInactive) {
		t.Fatalf("inactive login error = %v, want ErrInactive", err)
	}
	if _, err := store.Authenticate(ctx, "alice@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody@x.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v", err)
	}

	if err := store.Activate(ctx, user); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	got, err := store.Authenticate(ctx, " ALICE@x.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("LastLogin = %v", got.LastLogin)
	}

	reloaded, _ := store.FindByID(ctx, user.ID)
	if reloaded.LastLogin == nil {
		t.Error("LastLogin should be persisted")
	}
}

func TestAuthenticate_ByEmailNotUsername(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	user, _, _ := store.Register(ctx, customerInput())
	_ = store.Activate(ctx, user)

	if _, err := store.Authenticate(ctx, "alice", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("login by username error = %v", err)
	}
}

// =============================================================================
// SetPassword / Find Tests
// =============================================================================

func TestSetPassword(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	user, _, _ := store.Register(ctx, customerInput())
	_ = store.Activate(ctx, user)
	oldHash := user.PasswordHash

	if err := store.SetPassword(ctx, user, "brand-new-pass"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if user.PasswordHash == oldHash {
		t.Error("hash should change")
	}
	if _, err := store.Authenticate(ctx, "alice@x.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password error = %v", err)
	}
	if _, err := store.Authenticate(ctx, "alice@x.com", "brand-new-pass"); err != nil {
		t.Errorf("new password error = %v", err)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	store, _ := setupStore(t)
	if _, err := store.FindByID(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByID() error = %v", err)
	}
	if _, err := store.FindByEmail(context.Background(), "none@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByEmail() error = %v", err)
	}
}

// =============================================================================
// RenameVendor Tests
// =============================================================================

func TestRenameVendor(t *testing.T) {
	v := &models.Vendor{UserID: 9, Name: "Old Name", Slug: "old-name-9"}

	if RenameVendor(v, "Old Name") {
		t.Error("same name should not change slug")
	}
	if RenameVendor(v, "  ") {
		t.Error("blank name should be ignored")
	}
	if v.Slug != "old-name-9" {
		t.Errorf("slug changed unexpectedly to %q", v.Slug)
	}

	if !RenameVendor(v, "New Name") {
		t.Fatal("new name should change slug")
	}
	if v.Slug != "new-name-9" || v.Name != "New Name" {
		t.Errorf("vendor = %+v", v)
	}
	if RenameVendor(v, "New Name") {
		t.Error("renaming to the current name again should be a no-op")
	}
}
