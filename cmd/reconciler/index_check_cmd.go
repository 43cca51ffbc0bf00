package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newIndexCheckCmd(load coreLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "index-check <employeeId>",
		Short: "Compare the ownership index against the store for one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := load(ctx)
			if err != nil {
				return err
			}
			defer c.close()

			if c.audit == nil {
				return withCode(exitUsage, errors.New("ownership index is not configured, set ES_URL"))
			}

			drift, err := c.audit.CheckEmployee(ctx, args[0])
			if err != nil {
				return withCode(codeFor(err), err)
			}
			if err := writeJSONLine(cmd.OutOrStdout(), drift); err != nil {
				return err
			}
			if !drift.Consistent() {
				return withCode(exitRejected, fmt.Errorf("ownership index disagrees with the store for %s", drift.EmployeeID))
			}
			return nil
		},
	}
}
