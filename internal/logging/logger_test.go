package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "classnotesd.log")

	logger, err := New(Options{Path: path}, zap.String("session", "main"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("daemon starting")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{`"msg":"daemon starting"`, `"session":"main"`, `"pid":`, `"ts":`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("log line missing %s: %s", want, data)
		}
	}
}

func TestNewWithoutSinksIsNop(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("discarded")
}
