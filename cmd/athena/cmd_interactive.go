package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"athena/internal/logging"
	"athena/internal/session"
)

// signalContext cancels on Ctrl-C or SIGTERM. The returned stop releases
// the signal handler and its goroutine.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Session("received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// runInteractive starts the REPL behind the PIN gate.
func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a := newApp(workspace, cfg, cmd.OutOrStdout())
	defer a.close()

	stopWatch := a.watch(ctx, configPath)
	defer stopWatch()

	state := a.loadCreature()
	logging.Boot("loaded %s: energy=%d cash=%.2f wallet=%.8f", state.Name, state.Energy, state.Cash, state.Wallet)

	d := a.dispatcher(state, false)
	repl := session.NewREPL(d, cmd.InOrStdin(),
		session.WithPIN(cfg.Security.PIN, cfg.Security.Attempts),
	)
	return repl.Run(ctx)
}
