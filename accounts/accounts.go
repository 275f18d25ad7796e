// Package accounts is the identity store: registration, credential checks,
// activation and password changes for customers and vendors.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodonline-api/models"
	"foodonline-api/slug"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrDuplicateUsername  = errors.New("user with this username already exists")
	ErrPasswordMismatch   = errors.New("password does not match")
	ErrInvalidRole        = errors.New("role must be vendor or customer")
	ErrVendorNameRequired = errors.New("vendor name is required")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInactive           = errors.New("account is not activated")
	ErrNotFound           = errors.New("user not found")
)

// RegisterInput carries the registration form after binding.
type RegisterInput struct {
	Role            models.UserRole
	FirstName       string
	LastName        string
	Username        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string

	// vendor registrations only
	VendorName    string
	VendorLicense string
}

type Store struct {
	db        *gorm.DB
	cost      int
	dummyHash []byte
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStore creates the identity store. A nil now uses time.Now.
func NewStore(db *gorm.DB, bcryptCost int, logger zerolog.Logger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("foodonline-dummy-password"), bcryptCost)
	if err != nil {
		// cost was validated by config; fall back to the default
		dummy, _ = bcrypt.GenerateFromPassword([]byte("foodonline-dummy-password"), bcrypt.DefaultCost)
	}
	return &Store{db: db, cost: bcryptCost, dummyHash: dummy, logger: logger, now: now}
}

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an inactive user with an empty profile and, for vendors,
// the vendor record with slug "<slugified name>-<user id>". All rows are
// written in one transaction.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*models.User, *models.Vendor, error) {
	if in.Role != models.RoleVendor && in.Role != models.RoleCustomer {
		return nil, nil, ErrInvalidRole
	}
	if in.Password != in.ConfirmPassword {
		return nil, nil, ErrPasswordMismatch
	}
	vendorName := strings.TrimSpace(in.VendorName)
	if in.Role == models.RoleVendor && vendorName == "" {
		return nil, nil, ErrVendorNameRequired
	}

	email := NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     username,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Role:         in.Role,
		PasswordHash: string(hash),
		IsActive:     false,
	}
	var vendor *models.Vendor

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, email, username); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return classifyUniqueError(err)
		}
		profile := &models.UserProfile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		if in.Role != models.RoleVendor {
			return nil
		}
		vendor = &models.Vendor{
			UserID:        user.ID,
			UserProfileID: profile.ID,
			Name:          vendorName,
			Slug:          slug.WithID(vendorName, user.ID),
			License:       in.VendorLicense,
		}
		if err := tx.Create(vendor).Error; err != nil {
			return fmt.Errorf("create vendor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	return user, vendor, nil
}

func checkUnique(tx *gorm.DB, email, username string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrDuplicateEmail
	}
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return ErrDuplicateUsername
	}
	return nil
}

// classifyUniqueError turns a constraint failure from a concurrent writer
// into the same validation error the pre-check would have produced.
func classifyUniqueError(err error) error {
	if !models.IsUniqueViolation(err) {
		return fmt.Errorf("create user: %w", err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "username") {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords return the same error. Inactive accounts are refused only after
// the password matched. A successful login records LastLogin.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// burn comparable time so response latency does not reveal the miss
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("email", user.Email).Msg("failed authentication attempt")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactive
	}

	loginAt := s.now().UTC().Truncate(time.Second)
	if err := s.db.WithContext(ctx).Model(user).Update("last_login", loginAt).Error; err != nil {
		return nil, fmt.Errorf("record login for user %d: %w", user.ID, err)
	}
	user.LastLogin = &loginAt
	return user, nil
}

// Activate marks the user active. Activating twice is harmless.
func (s *Store) Activate(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Model(user).Update("is_active", true).Error; err != nil {
		return fmt.Errorf("activate user %d: %w", user.ID, err)
	}
	user.IsActive = true
	s.logger.Info().Uint("user_id", user.ID).Msg("user activated")
	return nil
}

// SetPassword replaces the stored hash. Because reset tokens fingerprint the
// hash, this also invalidates every outstanding reset link.
func (s *Store) SetPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("set password for user %d: %w", user.ID, err)
	}
	user.PasswordHash = string(hash)
	s.logger.Info().Uint("user_id", user.ID).Msg("password changed")
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id %d: %w", id, err)
	}
	return &user, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// RenameVendor sets a new display name and, only when the name actually
// changed, regenerates the slug. It reports whether the slug changed.
func RenameVendor(v *models.Vendor, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == v.Name {
		return false
	}
	v.Name = name
	v.Slug = slug.WithID(name, v.UserID)
	return true
}
