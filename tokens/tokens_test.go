package tokens

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodonline-api/models"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

type mockFinder struct {
	users map[uint]*models.User
}

func (m *mockFinder) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errors.New("user not found")
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func setup(t *testing.T) (*Service, *fakeClock, *mockFinder, *models.User) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)}
	svc := NewService(testSecret, time.Hour, clock.Now)
	user := &models.User{ID: 12, Email: "alice@x.com", PasswordHash: "hash-1"}
	finder := &mockFinder{users: map[uint]*models.User{12: user}}
	return svc, clock, finder, user
}

func TestUIDRoundTrip(t *testing.T) {
	id, err := DecodeUID(EncodeUID(42))
	if err != nil || id != 42 {
		t.Fatalf("DecodeUID(EncodeUID(42)) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "!!", EncodeUID(0), "YWJj"} {
		if _, err := DecodeUID(bad); err == nil {
			t.Errorf("DecodeUID(%q) should fail", bad)
		}
	}
}

func TestVerify_Success(t *testing.T) {
	svc, _, finder, user := setup(t)

	uid, token, err := svc.Issue(user, PurposeActivate)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	got, err := svc.Verify(context.Background(), finder, uid, token, PurposeActivate)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Verify() user = %d, want %d", got.ID, user.ID)
	}
}

func TestVerify_Rejections(t *testing.T) {
	svc, _, finder, user := setup(t)
	uid, token, err := svc.Issue(user, PurposeActivate)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	other := NewService("another-secret-another-secret-1234", time.Hour, nil)
	_, foreign, _ := other.Issue(user, PurposeActivate)

	tests := []struct {
		name    string
		uid     string
		token   string
		purpose Purpose
	}{
		{"malformed uid", "%%%", token, PurposeActivate},
		{"unknown user", EncodeUID(99), token, PurposeActivate},
		{"uid swapped", EncodeUID(13), token, PurposeActivate},
		{"wrong purpose", uid, token, PurposeReset},
		{"tampered", uid, token[:len(token)-2] + "xx", PurposeActivate},
		{"garbage", uid, "not-a-token", PurposeActivate},
		{"other secret", uid, foreign, PurposeActivate},
	}
	finder.users[13] = &models.User{ID: 13, Email: "bob@x.com"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), finder, tt.uid, tt.token, tt.purpose)
			if !errors.Is(err, ErrRejected) {
				t.Errorf("Verify() error = %v, want ErrRejected", err)
			}
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	svc, clock, finder, user := setup(t)
	uid, token, _ := svc.Issue(user, PurposeReset)

	clock.t = clock.t.Add(59 * time.Minute)
	if _, err := svc.Verify(context.Background(), finder, uid, token, PurposeReset); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, err := svc.Verify(context.Background(), finder, uid, token, PurposeReset); !errors.Is(err, ErrRejected) {
		t.Errorf("expired token error = %v, want ErrRejected", err)
	}
}

func TestVerify_StateChangeBurnsToken(t *testing.T) {
	ctx := context.Background()

	t.Run("activation", func(t *testing.T) {
		svc, _, finder, user := setup(t)
		uid, token, _ := svc.Issue(user, PurposeActivate)
		finder.users[user.ID].IsActive = true
		if _, err := svc.Verify(ctx, finder, uid, token, PurposeActivate); !errors.Is(err, ErrRejected) {
			t.Errorf("reused activation token error = %v", err)
		}
	})

	t.Run("password change", func(t *testing.T) {
		svc, _, finder, user := setup(t)
		uid, token, _ := svc.Issue(user, PurposeReset)
		finder.users[user.ID].PasswordHash = "hash-2"
		if _, err := svc.Verify(ctx, finder, uid, token, PurposeReset); !errors.Is(err, ErrRejected) {
			t.Errorf("reset token after password change error = %v", err)
		}
	})

	t.Run("login", func(t *testing.T) {
		svc, clock, finder, user := setup(t)
		uid, token, _ := svc.Issue(user, PurposeReset)
		login := clock.t.Add(time.Minute)
		finder.users[user.ID].LastLogin = &login
		if _, err := svc.Verify(ctx, finder, uid, token, PurposeReset); !errors.Is(err, ErrRejected) {
			t.Errorf("reset token after login error = %v", err)
		}
	})
}

func TestMatches(t *testing.T) {
	svc, _, _, user := setup(t)
	fp := svc.Fingerprint(user, PurposeReset)
	if !svc.Matches(user, PurposeReset, fp) {
		t.Fatal("fingerprint should match unchanged user")
	}
	if svc.Matches(user, PurposeActivate, fp) {
		t.Error("fingerprint should be purpose-specific")
	}
	changed := *user
	changed.Email = "new@x.com"
	if svc.Matches(&changed, PurposeReset, fp) {
		t.Error("fingerprint should change with email")
	}
}
