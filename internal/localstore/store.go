// Package localstore persists the client's local state between runs: the auth
// token, the serialized user record, and the theme preference. Each key is an
// independent file under the state directory so one can be cleared without
// touching the others, matching browser local storage semantics.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bdcmjobs/jobdesk/internal/domain"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
	themeFile = "theme"
)

type Store struct {
	dir string
}

// Open prepares the state directory and returns a store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Token returns the persisted auth token, if any.
func (s *Store) Token() (string, bool) {
	b, err := os.ReadFile(s.path(tokenFile))
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(b))
	return tok, tok != ""
}

func (s *Store) SetToken(token string) error {
	return os.WriteFile(s.path(tokenFile), []byte(token), 0o600)
}

func (s *Store) RemoveToken() error {
	err := os.Remove(s.path(tokenFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// User returns the persisted user record, if any.
func (s *Store) User() (domain.User, bool) {
	b, err := os.ReadFile(s.path(userFile))
	if err != nil {
		return domain.User{}, false
	}
	var u domain.User
	if err := json.Unmarshal(b, &u); err != nil {
		return domain.User{}, false
	}
	return u, true
}

func (s *Store) SetUser(u domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return os.WriteFile(s.path(userFile), b, 0o600)
}

func (s *Store) RemoveUser() error {
	err := os.Remove(s.path(userFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Theme returns the persisted theme preference, defaulting to system.
func (s *Store) Theme() domain.Theme {
	b, err := os.ReadFile(s.path(themeFile))
	if err != nil {
		return domain.ThemeSystem
	}
	t := domain.Theme(strings.TrimSpace(string(b)))
	if !t.Valid() {
		return domain.ThemeSystem
	}
	return t
}

func (s *Store) SetTheme(t domain.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("invalid theme %q", t)
	}
	return os.WriteFile(s.path(themeFile), []byte(t), 0o600)
}
