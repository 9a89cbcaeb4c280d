package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/client"
	"github.com/matheus3301/classnotes/internal/config"
	"github.com/matheus3301/classnotes/internal/logging"
	"github.com/matheus3301/classnotes/internal/school"
	"github.com/matheus3301/classnotes/internal/session"
	"github.com/matheus3301/classnotes/internal/stores"
	"github.com/matheus3301/classnotes/internal/tui"
	"go.uber.org/zap"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	schoolFlag := flag.String("school", "", "school API base URL (overrides config)")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *schoolFlag != "" {
		cfg.SchoolURL = *schoolFlag
	}

	// The terminal belongs to the UI, so the log goes to a file only.
	logger, err := logging.New(logging.Options{
		Path:  session.LogPath(sessionName, "classnotes"),
		Debug: *debugFlag,
	}, zap.String("session", sessionName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	target := session.DaemonTarget(cfg, sessionName)

	// Probe daemon health; auto-start a local one if needed.
	if !client.Probe(target) {
		if !strings.HasPrefix(target, "unix://") {
			fmt.Fprintf(os.Stderr, "daemon at %s is not reachable\n", target)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "daemon not running for session %q, starting...\n", sessionName)
		if err := startDaemon(sessionName); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !client.WaitReady(target, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	c, err := client.Connect(ctx, sessionName, target)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	b := bus.New()
	app := tui.NewApp(tui.Options{
		Session:   sessionName,
		SchoolURL: cfg.SchoolURL,
		Stores:    stores.New(c, c, b, logger),
		School: school.New(cfg.SchoolURL,
			school.WithTimeout(cfg.HTTPTimeout()),
			school.WithLoginFlag(session.NewLoginFlag(sessionName)),
			school.WithLogger(logger.Named("school")),
		),
		Bus:    b,
		Logger: logger,
		Persist: func() error {
			if c.CurrentUser() == nil {
				return client.ForgetCredentials(sessionName)
			}
			return client.SaveCredentials(sessionName, c)
		},
	})
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func startDaemon(sessionName string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	daemon := filepath.Join(filepath.Dir(executable), "classnotesd")
	if _, err := os.Stat(daemon); err != nil {
		daemon = "classnotesd"
	}

	cmd := exec.Command(daemon, "--session", sessionName)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
