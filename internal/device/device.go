// Package device provides the client-local identity token: an opaque random
// identifier minted on first use and reused on every later run from the same
// installation. Nothing registers it server-side.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const idFileName = "device_id"

// Store lazily creates and persists one device identifier under dir.
type Store struct {
	dir string
}

// NewStore places the identifier under the user config dir by default.
func NewStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config dir: %w", err)
	}
	return NewStoreAt(filepath.Join(base, "showtally")), nil
}

func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// ID returns the persisted identifier, creating it on first use.
func (s *Store) ID() (string, error) {
	path := filepath.Join(s.dir, idFileName)

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id := uuid.NewString()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}

	return id, nil
}
