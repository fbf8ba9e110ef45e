package credential

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CredentialSuite struct {
	suite.Suite
}

func TestCredentialSuite(t *testing.T) {
	suite.Run(t, new(CredentialSuite))
}

func (s *CredentialSuite) TestMemoryStore() {
	store := NewMemory()

	s.Run("starts empty", func() {
		tok, ok := store.Current()
		s.False(ok)
		s.Empty(tok)
	})

	s.Run("set then current", func() {
		s.NoError(store.Set("tok-1"))
		tok, ok := store.Current()
		s.True(ok)
		s.Equal("tok-1", tok)
	})

	s.Run("set replaces", func() {
		s.NoError(store.Set("tok-2"))
		tok, _ := store.Current()
		s.Equal("tok-2", tok)
	})

	s.Run("clear empties and is idempotent", func() {
		s.NoError(store.Clear())
		_, ok := store.Current()
		s.False(ok)
		s.NoError(store.Clear())
	})
}

func (s *CredentialSuite) TestDefaultPath() {
	s.Run("prefers XDG_CONFIG_HOME", func() {
		dir := s.T().TempDir()
		s.T().Setenv("XDG_CONFIG_HOME", dir)

		path, err := DefaultPath()
		s.Require().NoError(err)
		s.Equal(filepath.Join(dir, "educonnect", "token.json"), path)
	})

	s.Run("falls back to the home config dir", func() {
		s.T().Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		s.Require().NoError(err)

		path, err := DefaultPath()
		s.Require().NoError(err)
		s.Equal(filepath.Join(home, ".config", "educonnect", "token.json"), path)
	})
}

func (s *CredentialSuite) TestFileStore() {
	path := filepath.Join(s.T().TempDir(), "token.json")

	s.Run("missing file means no session", func() {
		store, err := NewFile(path)
		s.Require().NoError(err)
		_, ok := store.Current()
		s.False(ok)
	})

	s.Run("set survives reopen", func() {
		store, err := NewFile(path)
		s.Require().NoError(err)
		s.Require().NoError(store.Set("persisted-token"))

		reopened, err := NewFile(path)
		s.Require().NoError(err)
		tok, ok := reopened.Current()
		s.True(ok)
		s.Equal("persisted-token", tok)
	})

	s.Run("file is private to the user", func() {
		info, err := os.Stat(path)
		s.Require().NoError(err)
		s.Equal(os.FileMode(0o600), info.Mode().Perm())
	})

	s.Run("clear removes the file", func() {
		store, err := NewFile(path)
		s.Require().NoError(err)
		s.Require().NoError(store.Clear())
		_, statErr := os.Stat(path)
		s.True(os.IsNotExist(statErr))

		reopened, err := NewFile(path)
		s.Require().NoError(err)
		_, ok := reopened.Current()
		s.False(ok)
	})

	s.Run("corrupt file treated as no session", func() {
		s.Require().NoError(os.WriteFile(path, []byte("{not json"), 0o600))
		store, err := NewFile(path)
		s.Require().NoError(err)
		_, ok := store.Current()
		s.False(ok)
	})
}
