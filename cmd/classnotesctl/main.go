package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/classnotes/internal/config"
	"github.com/matheus3301/classnotes/internal/logging"
	"github.com/matheus3301/classnotes/internal/session"
	"go.uber.org/zap"
)

// env carries the resolved global flags into every command.
type env struct {
	session string
	cfg     *config.Config
	jsonOut bool
	logger  *zap.Logger
}

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	schoolFlag := flag.String("school", "", "school API base URL (overrides config)")
	flag.Usage = printUsage
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fail(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fail(fmt.Errorf("load config: %w", err))
	}
	if *schoolFlag != "" {
		cfg.SchoolURL = *schoolFlag
	}

	logger, err := logging.New(logging.Options{Path: session.LogPath(sessionName, "classnotesctl")},
		zap.String("session", sessionName))
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	e := &env{session: sessionName, cfg: cfg, jsonOut: *jsonFlag, logger: logger}

	// chat watch runs until interrupted; everything else is one round trip.
	if args[0] == "chat" && len(args) > 1 && args[1] == "watch" {
		cmdChatWatch(e, args[2:])
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args[0] {
	case "signup", "signin", "signout", "whoami":
		cmdAuth(ctx, e, args[0], args[1:])
	case "groups":
		cmdGroups(ctx, e, sub(args, "groups <list|create|rename|delete|share>"), args[2:])
	case "notes":
		cmdNotes(ctx, e, sub(args, "notes <list|add|edit|delete>"), args[2:])
	case "chat":
		cmdChat(ctx, e, sub(args, "chat <send|watch>"), args[2:])
	case "login", "logout", "status":
		cmdSchoolAuth(ctx, e, args[0], args[1:])
	case "classes":
		cmdClasses(ctx, e, sub(args, "classes <list|show|add|edit|delete|export>"), args[2:])
	case "students":
		cmdStudents(ctx, e, sub(args, "students <list|add|edit|delete|import>"), args[2:])
	case "subjects":
		cmdSubjects(ctx, e, sub(args, "subjects <list|add|edit|delete|link|unlink>"), args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: classnotesctl [--session <name>] [--json] [--school <url>] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "notes service (classnotesd):")
	fmt.Fprintln(os.Stderr, "  signup <email> <password> <username>   Create an account")
	fmt.Fprintln(os.Stderr, "  signin <email> <password>              Sign in")
	fmt.Fprintln(os.Stderr, "  signout                                Sign out")
	fmt.Fprintln(os.Stderr, "  whoami                                 Show the signed-in user")
	fmt.Fprintln(os.Stderr, "  groups list|create <name>|rename <id> <name>|delete <id>")
	fmt.Fprintln(os.Stderr, "  groups share [--png <file>] <id>       Show the group's invitation QR code")
	fmt.Fprintln(os.Stderr, "  notes list [--date YYYY-MM-DD] <group>")
	fmt.Fprintln(os.Stderr, "  notes add <group> <title> <content>")
	fmt.Fprintln(os.Stderr, "  notes edit <group> <note> <title> <content>")
	fmt.Fprintln(os.Stderr, "  notes delete <group> <note>")
	fmt.Fprintln(os.Stderr, "  chat send <group> <message>")
	fmt.Fprintln(os.Stderr, "  chat watch <group>                     Follow the chat until interrupted")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "school service (schoold):")
	fmt.Fprintln(os.Stderr, "  login <email> <password>|logout|status")
	fmt.Fprintln(os.Stderr, "  classes list|show <id>|add <name> <count>|edit <id> <name> <count>|delete <id>")
	fmt.Fprintln(os.Stderr, "  classes export <id> <file.xlsx>")
	fmt.Fprintln(os.Stderr, "  students list <class>|add <class> <last> <first> <YYYY-MM-DD>|delete <id>")
	fmt.Fprintln(os.Stderr, "  students edit <id> <class> <last> <first> <YYYY-MM-DD>")
	fmt.Fprintln(os.Stderr, "  students import <class> <file.xlsx>")
	fmt.Fprintln(os.Stderr, "  subjects list|add <title> <desc>|edit <id> <title> <desc>|delete <id>")
	fmt.Fprintln(os.Stderr, "  subjects link <class> <subject>|unlink <class> <subject>")
}

// sub returns the subcommand name or exits with usage.
func sub(args []string, usage string) string {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: classnotesctl "+usage)
		os.Exit(1)
	}
	return args[1]
}

// need exits with usage unless args has exactly n entries.
func need(args []string, n int, usage string) {
	if len(args) != n {
		fmt.Fprintln(os.Stderr, "usage: classnotesctl "+usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
