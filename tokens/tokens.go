// Package tokens issues and verifies the single-use links mailed for account
// activation and password reset.
//
// A token is an HS256 JWT carrying the user id, the purpose, issue and expiry
// times, and a keyed BLAKE3 fingerprint of the user's mutable state (password
// hash, active flag, email, last login). Any change to that state changes the
// fingerprint, so activating, logging in or resetting the password burns every
// outstanding token for the user without storing tokens anywhere.
package tokens

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodonline-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zeebo/blake3"
)

type Purpose string

const (
	PurposeActivate Purpose = "activate"
	PurposeReset    Purpose = "reset"
)

// ErrRejected covers malformed ids, unknown users, tampering, expiry and reuse.
var ErrRejected = errors.New("invalid or expired token")

// UserFinder loads the user a token claims to belong to.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type claims struct {
	Purpose     Purpose `json:"purpose"`
	Fingerprint string  `json:"fp"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	fpKey  [32]byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service. A nil now uses time.Now.
func NewService(secret string, ttl time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	s := &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
	blake3.DeriveKey("foodonline-api account token fingerprint v1", []byte(secret), s.fpKey[:])
	return s
}

// EncodeUID renders a user id the way it appears in mailed links.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, fmt.Errorf("decode uid: %w", err)
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("parse uid %q: invalid id", raw)
	}
	return uint(id), nil
}

// Fingerprint binds a token to the current state of u.
func (s *Service) Fingerprint(u *models.User, purpose Purpose) string {
	var lastLogin int64
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.Unix()
	}
	h, err := blake3.NewKeyed(s.fpKey[:])
	if err != nil {
		// key length is fixed at 32 bytes
		panic(err)
	}
	fmt.Fprintf(h, "%d\x00%s\x00%s\x00%t\x00%s\x00%d", u.ID, purpose, u.PasswordHash, u.IsActive, u.Email, lastLogin)
	return hex.EncodeToString(h.Sum(nil))
}

// Matches reports whether fp is still the fingerprint of u.
func (s *Service) Matches(u *models.User, purpose Purpose, fp string) bool {
	want := s.Fingerprint(u, purpose)
	return subtle.ConstantTimeCompare([]byte(want), []byte(fp)) == 1
}

// Issue returns the uid and token path segments for a link.
func (s *Service) Issue(u *models.User, purpose Purpose) (uid, token string, err error) {
	issuedAt := s.now()
	c := claims{
		Purpose:     purpose,
		Fingerprint: s.Fingerprint(u, purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return EncodeUID(u.ID), token, nil
}

// Verify checks a uid/token pair for purpose and returns the user it was
// issued to. Every failure mode collapses into ErrRejected.
func (s *Service) Verify(ctx context.Context, users UserFinder, uid, token string, purpose Purpose) (*models.User, error) {
	id, err := DecodeUID(uid)
	if err != nil {
		return nil, ErrRejected
	}

	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrRejected
	}
	if c.Subject != strconv.FormatUint(uint64(id), 10) || c.Purpose != purpose {
		return nil, ErrRejected
	}

	user, err := users.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, ErrRejected
	}
	if !s.Matches(user, purpose, c.Fingerprint) {
		return nil, ErrRejected
	}
	return user, nil
}
