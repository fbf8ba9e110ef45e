package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// tokenFile is the on-disk shape. A single well-known file stands in for the
// browser's origin-scoped storage: the credential is the only state that
// survives a restart.
type tokenFile struct {
	AccessToken string `json:"access_token"`
}

// FileStore persists the credential to a JSON file and caches it in memory.
// Reads never touch the disk after startup; writes go through to the file so
// a new process can restore the session.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewFile opens (or initializes) a file-backed store at path. A missing file
// means no prior session, which is not an error.
func NewFile(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		// A corrupt file is treated as no session rather than blocking start.
		return s, nil
	}
	s.token = tf.AccessToken
	return s, nil
}

// DefaultPath places the credential file under the user config dir.
func DefaultPath() (string, error) {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "educonnect", "token.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir for credential path: %w", err)
	}
	return filepath.Join(home, ".config", "educonnect", "token.json"), nil
}

func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	data, err := json.MarshalIndent(tokenFile{AccessToken: token}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	s.token = token
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

func (s *FileStore) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}
