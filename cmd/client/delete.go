package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/spf13/cobra"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TYPE ID",
		Short: "Delete an expense, income, budget or category by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType, err := parseEntityType(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				op, err := app.Ledger().Delete(ctx, entityType, args[1])
				if err != nil {
					return fmt.Errorf("delete %s: %w", entityType, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", entityType, args[1])
				printQueued(cmd, app, op)
				return nil
			})
		},
	}
}
