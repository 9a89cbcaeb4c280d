package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.classnotes, or $CLASSNOTES_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("CLASSNOTES_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".classnotes")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// SocketPath returns the classnotesd socket path for a session.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "daemon.sock")
}

// DBPath returns the document database served by classnotesd.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "classnotes.db")
}

// StatePath returns the persisted client state file.
func StatePath(name string) string {
	return filepath.Join(Dir(name), "state.toml")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file for the given program (classnotesd, classnotes, ...).
func LogPath(name, program string) string {
	return filepath.Join(LogDir(name), program+".log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
