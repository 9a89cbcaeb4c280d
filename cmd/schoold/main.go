package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/classnotes/internal/config"
	"github.com/matheus3301/classnotes/internal/logging"
	"github.com/matheus3301/classnotes/internal/schoolapi"
	"go.uber.org/fx"
)

func main() {
	addrFlag := flag.String("addr", "", "listen address (overrides SCHOOL_ADDR)")
	logFlag := flag.String("log", "", "JSON log file (default: console only)")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "adduser":
			if len(args) != 3 {
				fmt.Fprintln(os.Stderr, "usage: schoold adduser <email> <password>")
				os.Exit(1)
			}
			if err := addUser(args[1], args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "migrate":
			if err := migrate(); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
			printUsage()
			os.Exit(1)
		}
	}

	app := fx.New(
		schoolapi.Module(schoolapi.Params{
			LogPath: *logFlag,
			Addr:    *addrFlag,
			Debug:   *debugFlag,
		}),
	)
	app.Run()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: schoold [--addr <host:port>] [--log <file>] [--debug] [command]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  (none)                      Serve the REST API")
	fmt.Fprintln(os.Stderr, "  adduser <email> <password>  Register a login")
	fmt.Fprintln(os.Stderr, "  migrate                     Apply database migrations and exit")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "environment: SCHOOL_DB_DSN, SCHOOL_ADDR, SCHOOL_STORAGE (postgres|memory), ENV")
}

func openRepository(ctx context.Context) (schoolapi.Repository, error) {
	cfg, err := config.LoadSchool()
	if err != nil {
		return nil, err
	}
	if cfg.Storage == "memory" {
		return nil, fmt.Errorf("SCHOOL_STORAGE=memory does not persist; use postgres")
	}
	logger, err := logging.New(logging.Options{Console: true})
	if err != nil {
		return nil, err
	}
	return schoolapi.OpenRepository(ctx, cfg, logger)
}

func addUser(email, password string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	acct, err := schoolapi.NewAccounts(repo).AddUser(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (id %d)\n", acct.Email, acct.ID)
	return nil
}

func migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	repo.Close()
	fmt.Println("Migrations applied.")
	return nil
}
