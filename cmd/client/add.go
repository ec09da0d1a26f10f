package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/spf13/cobra"
)

type transactionFlags struct {
	currency    string
	label       string
	description string
	date        string
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense, income, budget or category",
	}

	cmd.AddCommand(
		newAddExpenseCmd(opts),
		newAddIncomeCmd(opts),
		newAddBudgetCmd(opts),
		newAddCategoryCmd(opts),
	)
	return cmd
}

func newAddExpenseCmd(opts *rootOptions) *cobra.Command {
	f := &transactionFlags{}
	cmd := &cobra.Command{
		Use:   "expense AMOUNT",
		Short: "Record an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			date, err := parseDate(f.date, time.Now())
			if err != nil {
				return err
			}

			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				e := models.Expense{
					ID:          utils.NewUUIDGenerator().Generate(),
					Amount:      amount,
					Currency:    strings.ToUpper(f.currency),
					Category:    f.label,
					Description: f.description,
					Date:        date,
					CreatedBy:   app.Config().Sync.AccountID,
				}
				return create(ctx, cmd, app, models.EntityExpense, e, utils.FormatAmount(amount, e.Currency))
			})
		},
	}

	addTransactionFlags(cmd, f, "category", "expense category")
	return cmd
}

func newAddIncomeCmd(opts *rootOptions) *cobra.Command {
	f := &transactionFlags{}
	cmd := &cobra.Command{
		Use:   "income AMOUNT",
		Short: "Record an income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			date, err := parseDate(f.date, time.Now())
			if err != nil {
				return err
			}

			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				i := models.Income{
					ID:          utils.NewUUIDGenerator().Generate(),
					Amount:      amount,
					Currency:    strings.ToUpper(f.currency),
					Source:      f.label,
					Description: f.description,
					Date:        date,
					CreatedBy:   app.Config().Sync.AccountID,
				}
				return create(ctx, cmd, app, models.EntityIncome, i, utils.FormatAmount(amount, i.Currency))
			})
		},
	}

	addTransactionFlags(cmd, f, "source", "income source")
	return cmd
}

func addTransactionFlags(cmd *cobra.Command, f *transactionFlags, labelName, labelUsage string) {
	cmd.Flags().StringVar(&f.currency, "currency", "USD", "ISO 4217 currency code")
	cmd.Flags().StringVar(&f.label, labelName, "", labelUsage)
	cmd.Flags().StringVarP(&f.description, "note", "n", "", "free-form description")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", `date, e.g. "2026-03-01", "yesterday", "last friday" (default now)`)
}

func newAddBudgetCmd(opts *rootOptions) *cobra.Command {
	var currency, period string
	cmd := &cobra.Command{
		Use:   "budget CATEGORY LIMIT",
		Short: "Set a spending limit for a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				b := models.Budget{
					ID:       utils.NewUUIDGenerator().Generate(),
					Category: args[0],
					Limit:    limit,
					Currency: strings.ToUpper(currency),
					Period:   period,
				}
				return create(ctx, cmd, app, models.EntityBudget, b, fmt.Sprintf("%s per %s", utils.FormatAmount(limit, b.Currency), period))
			})
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")
	cmd.Flags().StringVar(&period, "period", "month", "budget period")
	return cmd
}

func newAddCategoryCmd(opts *rootOptions) *cobra.Command {
	var kind, color string
	cmd := &cobra.Command{
		Use:   "category NAME",
		Short: "Create a category label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				c := models.Category{
					ID:    utils.NewUUIDGenerator().Generate(),
					Name:  args[0],
					Kind:  kind,
					Color: color,
				}
				return create(ctx, cmd, app, models.EntityCategory, c, c.Name)
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "expense", "expense or income")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	return cmd
}

func create(ctx context.Context, cmd *cobra.Command, app *client.App, entityType models.EntityType, entity models.Entity, summary string) error {
	op, err := app.Ledger().Create(ctx, entityType, entity)
	if err != nil {
		return fmt.Errorf("add %s: %w", entityType, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", entityType, entity.EntityID(), summary)
	printQueued(cmd, app, op)
	return nil
}

func printQueued(cmd *cobra.Command, app *client.App, op models.SyncOperation) {
	fmt.Fprintf(cmd.OutOrStdout(), "Queued operation %s; %d pending, %s\n",
		op.ID, app.Manager().PendingCount(), connectionLabel(app.Online()))
}
