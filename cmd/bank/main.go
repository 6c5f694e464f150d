package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/securebank/internal/bank"
	"github.com/dmitrijs2005/securebank/internal/bank/config"
	"github.com/dmitrijs2005/securebank/internal/cli"
	"github.com/dmitrijs2005/securebank/internal/logging"
	"github.com/dmitrijs2005/securebank/internal/timex"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	level, _ := cfg.SlogLevel()
	logger := logging.NewJSON(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := bank.NewApp(ctx, cfg, logger, timex.System{})
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	app.Start(ctx)

	// The REPL blocks on stdin, so a signal has to end the process itself.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout, "\nBye!")
			_ = app.Close()
			os.Exit(130)
		case <-done:
		}
	}()

	cli.NewApp(app.Credentials, app.Gate, app.Ledger, app.Notifier.Describe(), os.Stdin, os.Stdout).Run(ctx)
	close(done)

}
