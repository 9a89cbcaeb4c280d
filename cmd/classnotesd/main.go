package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/classnotes/internal/daemon"
	"github.com/matheus3301/classnotes/internal/session"
	"go.uber.org/fx"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	addrFlag := flag.String("addr", "", "listen on host:port instead of the session socket")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			SessionName: sessionName,
			Addr:        *addrFlag,
			Debug:       *debugFlag,
		}),
	)

	app.Run()
}
