package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheus3301/classnotes/internal/config"
)

func TestDir(t *testing.T) {
	t.Setenv("CLASSNOTES_HOME", "")
	home, _ := os.UserHomeDir()
	got := Dir("main")
	want := filepath.Join(home, ".classnotes", "sessions", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestBaseDirOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("CLASSNOTES_HOME", tmp)
	if got := BaseDir(); got != tmp {
		t.Errorf("BaseDir() = %q, want %q", got, tmp)
	}
}

func TestSocketPath(t *testing.T) {
	got := SocketPath("test")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "daemon.sock")) {
		t.Errorf("SocketPath(test) = %q, want suffix sessions/test/daemon.sock", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("test", "classnotesd")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "logs", "classnotesd.log")) {
		t.Errorf("LogPath(test) = %q", got)
	}
}

func TestEnsureDir(t *testing.T) {
	t.Setenv("CLASSNOTES_HOME", t.TempDir())

	if err := EnsureDir("test"); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	for _, d := range []string{Dir("test"), LogDir("test")} {
		info, err := os.Stat(d)
		if err != nil {
			t.Fatalf("%s not created: %v", d, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", d)
		}
	}
}

func TestDaemonTarget(t *testing.T) {
	t.Setenv("CLASSNOTES_HOME", "/tmp/cn")
	if got := DaemonTarget(&config.Config{}, "main"); got != "unix:///tmp/cn/sessions/main/daemon.sock" {
		t.Errorf("DaemonTarget() = %q", got)
	}
	if got := DaemonTarget(&config.Config{DaemonAddr: "10.0.0.2:7000"}, "main"); got != "10.0.0.2:7000" {
		t.Errorf("DaemonTarget() = %q, want configured address", got)
	}
}
