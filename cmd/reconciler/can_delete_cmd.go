package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/locvowork/asset_management/internal/domain"
)

func newCanDeleteCmd(load coreLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "can-delete",
		Short: "Check whether an employee or asset may be deleted",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "employee <id>",
		Short: "Check an employee against owned assets and reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanDelete(cmd, load, func(ctx context.Context, c *core) (domain.Decision, error) {
				return c.guard.CanDeleteEmployee(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "asset <kind> <id>",
		Short: "Check an asset against its owner and installed components",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanDelete(cmd, load, func(ctx context.Context, c *core) (domain.Decision, error) {
				return c.guard.CanDeleteAsset(ctx, args[0], args[1])
			})
		},
	})
	return cmd
}

// runCanDelete prints the decision and exits non-zero on Reject.
func runCanDelete(cmd *cobra.Command, load coreLoader, check func(context.Context, *core) (domain.Decision, error)) error {
	ctx := cmd.Context()
	c, err := load(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	d, err := check(ctx, c)
	if err != nil {
		return withCode(codeFor(err), err)
	}
	if err := writeJSONLine(cmd.OutOrStdout(), d); err != nil {
		return err
	}
	if !d.Allowed {
		return withCode(exitRejected, fmt.Errorf("deletion rejected: %s", d.Reason))
	}
	return nil
}
