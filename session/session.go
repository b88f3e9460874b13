package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/aguxez/dine/logger"
)

var (
	ErrNoSession = errors.New("not logged in")
	ErrExpired   = errors.New("session expired")
	ErrCorrupt   = errors.New("session file is corrupt")
)

// FileName is the persistent store's file inside its directory.
const FileName = "session.json"

type Session struct {
	ID        string    `json:"id"`
	LoginTime time.Time `json:"loginTime"`
	Email     string    `json:"email,omitempty"`
	Token     string    `json:"token,omitempty"`
}

// Store keeps at most one session. Load returns ErrNoSession when empty.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore persists the session across runs.
type FileStore struct {
	path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName)}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.ID == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// MemoryStore lives as long as the process, like a browser tab's storage.
type MemoryStore struct {
	mu sync.Mutex
	s  *Session
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return Session{}, ErrNoSession
	}
	return *m.s, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = &s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// Manager is the one place that decides who is logged in. The persistent
// store wins over the scoped one.
type Manager struct {
	persistent Store
	scoped     Store
	maxAge     time.Duration
	now        func() time.Time
}

func NewManager(persistent, scoped Store, maxAge time.Duration) *Manager {
	return &Manager{
		persistent: persistent,
		scoped:     scoped,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Current resolves the active session. An expired persistent session is
// cleared and reported as ErrExpired; one that cannot be decoded is cleared
// and treated as absent.
func (m *Manager) Current() (Session, error) {
	s, err := m.persistent.Load()
	if errors.Is(err, ErrCorrupt) {
		logger.Warn("discarding unreadable session", zap.Error(err))
		if cerr := m.persistent.Clear(); cerr != nil {
			logger.Error("clearing unreadable session", zap.Error(cerr))
		}
		err = ErrNoSession
	}
	persistent := err == nil
	if errors.Is(err, ErrNoSession) {
		s, err = m.scoped.Load()
	}
	if err != nil {
		return Session{}, err
	}

	if m.now().Sub(s.LoginTime) > m.maxAge {
		logger.Info("session expired", zap.String("user_id", s.ID), zap.Time("login_time", s.LoginTime))
		if persistent {
			if err := m.persistent.Clear(); err != nil {
				logger.Error("clearing expired session", zap.Error(err))
			}
		} else {
			_ = m.scoped.Clear()
		}
		return Session{}, ErrExpired
	}
	return s, nil
}

// Login records a new session for token. remember selects the persistent store.
func (m *Manager) Login(token, email string, remember bool) (Session, error) {
	id, err := UserIDFromToken(token)
	if err != nil {
		return Session{}, err
	}

	s := Session{ID: id, LoginTime: m.now().UTC(), Email: email, Token: token}
	store := m.scoped
	if remember {
		store = m.persistent
	}
	if err := store.Save(s); err != nil {
		return Session{}, err
	}

	logger.Info("logged in", zap.String("user_id", id), zap.Bool("remember", remember))
	return s, nil
}

// Logout clears both stores.
func (m *Manager) Logout() error {
	return errors.Join(m.persistent.Clear(), m.scoped.Clear())
}

// UserIDFromToken reads the user id from a login token. JWTs carry it in a
// claim; any other token is the id itself.
func UserIDFromToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("empty login token")
	}
	if strings.Count(token, ".") != 2 {
		return token, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parsing login token: %w", err)
	}

	for _, key := range []string{"id", "userId", "user_id", "sub"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	}
	return "", errors.New("login token has no user id claim")
}
