package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// State is the small amount of client state persisted per session.
type State struct {
	// LoggedIn is the REST login marker, set on a successful school login.
	LoggedIn bool `toml:"logged_in"`
	// Document-store credentials, kept so one-shot commands can resume.
	Token       string `toml:"token,omitempty"`
	UID         string `toml:"uid,omitempty"`
	Email       string `toml:"email,omitempty"`
	DisplayName string `toml:"display_name,omitempty"`
}

// LoadState reads the session's state file. A missing file yields a zero State.
func LoadState(name string) (*State, error) {
	return loadState(StatePath(name))
}

// SaveState writes the session's state file with 0600 permissions.
func SaveState(name string, st *State) error {
	return saveState(StatePath(name), st)
}

// UpdateState loads, mutates and saves the state in one step.
func UpdateState(name string, fn func(*State)) error {
	st, err := LoadState(name)
	if err != nil {
		return err
	}
	fn(st)
	return SaveState(name, st)
}

func loadState(path string) (*State, error) {
	var st State
	if _, err := toml.DecodeFile(path, &st); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &State{}, nil
		}
		return nil, err
	}
	return &st, nil
}

func saveState(path string, st *State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(st)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// LoginFlag is the persisted "loggedin" marker of one session.
type LoginFlag struct {
	name string
}

// NewLoginFlag returns the login marker for the named session.
func NewLoginFlag(name string) *LoginFlag {
	return &LoginFlag{name: name}
}

// SetLoggedIn persists the marker.
func (f *LoginFlag) SetLoggedIn(v bool) error {
	return UpdateState(f.name, func(st *State) { st.LoggedIn = v })
}

// LoggedIn reads the marker.
func (f *LoginFlag) LoggedIn() (bool, error) {
	st, err := LoadState(f.name)
	if err != nil {
		return false, err
	}
	return st.LoggedIn, nil
}
