package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/job"
)

type WatchCmd struct {
	Once bool `help:"Run a single maintenance pass and exit."`
}

func (c *WatchCmd) Run(cliCtx *cli.Context) error {
	if err := cliCtx.Store.Load(); err != nil {
		return err
	}

	runner := job.NewRunner(cliCtx.Store, cliCtx.Scheduler, cliCtx.Scheduler.Ledger(), cliCtx.Stats)

	if c.Once {
		if err := runner.RunOnce(context.Background()); err != nil {
			return fmt.Errorf("maintenance pass failed: %w", err)
		}
		fmt.Println("✓ Maintenance pass complete")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Watching for overdue obligations. Press Ctrl+C to stop.")
	runner.Run(ctx)
	fmt.Println("Stopped.")
	return nil
}
