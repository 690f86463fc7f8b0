// Package settings persists the two operator settings: the sheet endpoint and the
// admin password.
//
// The admin password gates the admin pages with a plain string compare. It keeps
// casual visitors out of the forms and is not a security boundary: anyone who can
// reach the sheet endpoint can write to it directly.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint      = "https://script.google.com/macros/s/AKfycbxZJNgNMg-45h47dCq35ljrVs3xv10d6b9Sr0uyjRf53kHZXm3VeEX-ARvNlUcAG-Tr/exec"
	DefaultAdminPassword = "admin123"

	EnvEndpoint      = "SCHOOLBOOKS_API_URL"
	EnvAdminPassword = "SCHOOLBOOKS_ADMIN_PASSWORD"
	EnvSettingsPath  = "SCHOOLBOOKS_SETTINGS"
)

// Values is the on-disk form of the settings file
type Values struct {
	Endpoint      string `yaml:"endpoint,omitempty"`
	AdminPassword string `yaml:"admin_password,omitempty"`
}

// Store holds the settings in memory and writes every change back to disk
type Store struct {
	path     string
	defaults Values

	mu     sync.RWMutex
	values Values
}

// DefaultPath returns $SCHOOLBOOKS_SETTINGS or the per-user config location
func DefaultPath() string {
	if p := os.Getenv(EnvSettingsPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(dir, "schoolbooks", "settings.yaml")
}

// Defaults returns the built-in values overridden by the environment. An empty
// SCHOOLBOOKS_API_URL disables the remote sheet.
func Defaults() Values {
	d := Values{
		Endpoint:      DefaultEndpoint,
		AdminPassword: DefaultAdminPassword,
	}
	if v, ok := os.LookupEnv(EnvEndpoint); ok {
		d.Endpoint = CleanEndpoint(v)
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		d.AdminPassword = v
	}
	return d
}

// Open loads the settings file at path. A missing file is not an error.
func Open(path string, defaults Values) (*Store, error) {
	s := &Store{path: path, defaults: defaults}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rereads the settings file
func (s *Store) Reload() error {
	var v Values
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("No settings file, using defaults", "path", s.path)
	case err != nil:
		return fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to parse settings %s: %w", s.path, err)
		}
	}

	s.mu.Lock()
	s.values = v
	s.mu.Unlock()
	return nil
}

// Path returns the settings file location
func (s *Store) Path() string {
	return s.path
}

// Endpoint returns the sheet endpoint, or "" when the catalog runs offline
func (s *Store) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.values.Endpoint != "" {
		return s.values.Endpoint
	}
	return s.defaults.Endpoint
}

// AdminPassword returns the password the admin login compares against
func (s *Store) AdminPassword() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.values.AdminPassword != "" {
		return s.values.AdminPassword
	}
	return s.defaults.AdminPassword
}

// CheckPassword compares a login attempt with the admin password
func (s *Store) CheckPassword(attempt string) bool {
	return attempt == s.AdminPassword()
}

// SetEndpoint stores a cleaned endpoint URL. An empty URL restores the default.
func (s *Store) SetEndpoint(endpoint string) error {
	return s.update(func(v *Values) {
		v.Endpoint = CleanEndpoint(endpoint)
	})
}

// SetAdminPassword stores a new admin password. An empty password restores the default.
func (s *Store) SetAdminPassword(password string) error {
	return s.update(func(v *Values) {
		v.AdminPassword = password
	})
}

// Reset removes all stored values
func (s *Store) Reset() error {
	return s.update(func(v *Values) {
		*v = Values{}
	})
}

func (s *Store) update(fn func(*Values)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.values
	fn(&next)

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	s.values = next
	slog.Info("Settings saved", "path", s.path)
	return nil
}

// CleanEndpoint trims an Apps Script URL down to its /exec suffix, dropping any
// query string or trailing path pasted along with it
func CleanEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if i := strings.Index(endpoint, "/exec"); i >= 0 {
		return endpoint[:i+len("/exec")]
	}
	return endpoint
}
