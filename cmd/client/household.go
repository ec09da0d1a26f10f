package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/spf13/cobra"
)

func newHouseholdCmd(opts *rootOptions) *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "household [HOUSEHOLD_ID]",
		Short: "Show household members and combined totals",
		Long: `household reads every member record of a household from the server and
sums their expenses and incomes, all time and for the current month.
Without an argument the household of this account's local record is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				householdID, err := resolveHouseholdID(ctx, app, args)
				if err != nil {
					return err
				}

				members, err := app.Household().Members(ctx, householdID)
				if err != nil {
					return fmt.Errorf("household members: %w", err)
				}
				totals, err := app.Household().Totals(ctx, householdID, time.Now())
				if err != nil {
					return fmt.Errorf("household totals: %w", err)
				}

				printHousehold(cmd.OutOrStdout(), householdID, members, totals, currency)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "currency used to display totals")
	return cmd
}

func resolveHouseholdID(ctx context.Context, app *client.App, args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	record, err := app.Ledger().Record(ctx)
	if err != nil {
		return "", err
	}
	if record.HouseholdID == nil || *record.HouseholdID == "" {
		return "", errNoHouseholdID
	}
	return *record.HouseholdID, nil
}

func printHousehold(w io.Writer, householdID string, members []string, t models.HouseholdTotals, currency string) {
	fmt.Fprintf(w, "Household %s: %d member(s)\n", householdID, len(members))
	for _, m := range members {
		fmt.Fprintf(w, "  %s\n", m)
	}
	fmt.Fprintf(w, "This month: expenses %s, income %s\n",
		utils.FormatAmount(t.MonthlyExpenses, currency), utils.FormatAmount(t.MonthlyIncome, currency))
	fmt.Fprintf(w, "All time:   expenses %s, income %s\n",
		utils.FormatAmount(t.TotalExpenses, currency), utils.FormatAmount(t.TotalIncome, currency))
}
