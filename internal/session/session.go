package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store holds the bearer token for the running console and persists it so a
// restart does not force a re-login. Injected rather than global so tests
// can use an isolated store.
type Store struct {
	mu    sync.Mutex
	path  string
	token string
}

func NewStore(path string) *Store {
	s := &Store{path: path}
	if b, err := os.ReadFile(path); err == nil {
		s.token = string(b)
	}
	return s
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) Set(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir token dir: %w", err)
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.path != "" {
		_ = os.Remove(s.path)
	}
}

// Claims is what the console reads out of the token for display. The token
// is parsed unverified: the backend is the verifier, the console only shows
// who is logged in and when the session runs out.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Store) Claims() (Claims, error) {
	tok := s.Token()
	if tok == "" {
		return Claims{}, fmt.Errorf("no session token")
	}
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &c); err != nil {
		return Claims{}, err
	}
	return c, nil
}

// ExpiresIn reports time left on the session, zero if unknown.
func (s *Store) ExpiresIn() time.Duration {
	c, err := s.Claims()
	if err != nil || c.ExpiresAt == nil {
		return 0
	}
	d := time.Until(c.ExpiresAt.Time)
	if d < 0 {
		return 0
	}
	return d
}
