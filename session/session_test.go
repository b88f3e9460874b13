package session

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newManager(t *testing.T, now time.Time) (*Manager, *FileStore, *MemoryStore) {
	t.Helper()
	fs := NewFileStore(t.TempDir())
	ms := &MemoryStore{}
	m := NewManager(fs, ms, 24*time.Hour)
	m.now = func() time.Time { return now }
	return m, fs, ms
}

func TestCurrentNoSession(t *testing.T) {
	m, _, _ := newManager(t, time.Now())
	if _, err := m.Current(); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v", err)
	}
}

func TestPersistentTakesPrecedence(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	m, fs, ms := newManager(t, now)

	if err := ms.Save(Session{ID: "scoped", LoginTime: now}); err != nil {
		t.Fatal(err)
	}
	s, err := m.Current()
	if err != nil || s.ID != "scoped" {
		t.Fatalf("scoped only: %+v, %v", s, err)
	}

	if err := fs.Save(Session{ID: "persistent", LoginTime: now}); err != nil {
		t.Fatal(err)
	}
	s, err = m.Current()
	if err != nil || s.ID != "persistent" {
		t.Errorf("both: %+v, %v", s, err)
	}
}

func TestExpiredPersistentIsCleared(t *testing.T) {
	now := time.Date(2024, 4, 2, 12, 0, 1, 0, time.UTC)
	m, fs, _ := newManager(t, now)

	if err := fs.Save(Session{ID: "7", LoginTime: now.Add(-24*time.Hour - time.Second)}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Current(); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(fs.Path()); !os.IsNotExist(err) {
		t.Errorf("persistent store not cleared: %v", err)
	}
}

func TestCorruptPersistentFallsBackToScoped(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	m, fs, ms := newManager(t, now)

	if err := os.WriteFile(fs.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Load(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("load err = %v", err)
	}
	if _, err := m.Current(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("corrupt file alone: err = %v", err)
	}
	if _, err := os.Stat(fs.Path()); !os.IsNotExist(err) {
		t.Errorf("corrupt file not cleared: %v", err)
	}

	if err := os.WriteFile(fs.Path(), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ms.Save(Session{ID: "scoped", LoginTime: now}); err != nil {
		t.Fatal(err)
	}
	s, err := m.Current()
	if err != nil || s.ID != "scoped" {
		t.Errorf("got %+v, %v", s, err)
	}
}

func TestJustUnderMaxAgeIsValid(t *testing.T) {
	now := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	m, fs, _ := newManager(t, now)
	if err := fs.Save(Session{ID: "7", LoginTime: now.Add(-24 * time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Current(); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestLoginRememberAndLogout(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	m, fs, ms := newManager(t, now)

	if _, err := m.Login("15", "a@b.c", true); err != nil {
		t.Fatal(err)
	}
	if s, err := fs.Load(); err != nil || s.ID != "15" || !s.LoginTime.Equal(now) {
		t.Errorf("persistent = %+v, %v", s, err)
	}
	if _, err := ms.Load(); !errors.Is(err, ErrNoSession) {
		t.Error("remembered login must not use scoped store")
	}

	if _, err := m.Login("16", "a@b.c", false); err != nil {
		t.Fatal(err)
	}
	if s, err := ms.Load(); err != nil || s.ID != "16" {
		t.Errorf("scoped = %+v, %v", s, err)
	}

	if err := m.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Current(); !errors.Is(err, ErrNoSession) {
		t.Errorf("after logout err = %v", err)
	}
}

func TestUserIDFromToken(t *testing.T) {
	numeric, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 42}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	subject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-9"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	anon, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "x"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		token   string
		want    string
		wantErr bool
	}{
		{numeric, "42", false},
		{subject, "u-9", false},
		{" 31 ", "31", false},
		{anon, "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := UserIDFromToken(tt.token)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("UserIDFromToken(%q) = %q, %v", tt.token, got, err)
		}
	}
}
