package main

import (
	"github.com/spf13/cobra"

	"github.com/locvowork/asset_management/internal/domain"
)

func newSweepCmd(load coreLoader) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Repair the assignment mirror of every asset of one kind",
		Long: `Repair the assignment mirror of every asset of one kind.

For accounts only assignmentStatus is rewritten. Devices and components
carry their usage in status, so a device or component sweep moves status
between available and in_use. Assets under_repair or disposed are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := load(ctx)
			if err != nil {
				return err
			}
			defer c.close()

			res, err := c.sweep.ReconcileAssignmentStatus(ctx, kind)
			if err != nil {
				// an interrupted sweep still reports what it got through
				if res.Total > 0 {
					_ = writeJSONLine(cmd.OutOrStdout(), res)
				}
				return withCode(codeFor(err), err)
			}
			return writeJSONLine(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.KindAccount), "asset kind: device, component or account")
	return cmd
}
