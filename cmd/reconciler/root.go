package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/locvowork/asset_management/internal/bootstrap"
	"github.com/locvowork/asset_management/internal/service"
)

// core is the slice of the application the operator commands need.
type core struct {
	sweep *service.ReconcileService
	guard *service.DeletionGuard
	audit *service.IndexAudit // nil without ES_URL
	close func()
}

type coreLoader func(ctx context.Context) (*core, error)

// loadCore opens the store selected by the environment.
func loadCore(ctx context.Context) (*core, error) {
	app := bootstrap.NewApp()
	if err := app.InitCore(ctx); err != nil {
		return nil, withCode(exitStore, err)
	}
	return &core{
		sweep: app.Sweep,
		guard: app.Guard,
		audit: app.Audit,
		close: func() { app.Close(ctx) },
	}, nil
}

func newRootCmd(load coreLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reconciler",
		Short:         "Asset ownership repair and deletion checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newSweepCmd(load))
	cmd.AddCommand(newCanDeleteCmd(load))
	cmd.AddCommand(newIndexCheckCmd(load))
	return cmd
}

func Execute() {
	if err := newRootCmd(loadCore).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
