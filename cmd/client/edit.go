package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var errEntityNotFound = errors.New("no such entry in the local record")

type editFlags struct {
	amount      string
	label       string
	description string
	date        string
}

// parse fails when no field flag was set and parses amount and date.
func (f *editFlags) parse(cmd *cobra.Command, labelName string, now time.Time) (amount *decimal.Decimal, date *time.Time, err error) {
	if !cmd.Flags().Changed("amount") && !cmd.Flags().Changed(labelName) &&
		!cmd.Flags().Changed("note") && !cmd.Flags().Changed("date") {
		return nil, nil, errNothingToChange
	}
	if cmd.Flags().Changed("amount") {
		a, err := parseAmount(f.amount)
		if err != nil {
			return nil, nil, err
		}
		amount = &a
	}
	if cmd.Flags().Changed("date") {
		d, err := parseDate(f.date, now)
		if err != nil {
			return nil, nil, err
		}
		date = &d
	}
	return amount, date, nil
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change an existing expense or income",
	}
	cmd.AddCommand(
		newEditTransactionCmd(opts, models.EntityExpense, "category"),
		newEditTransactionCmd(opts, models.EntityIncome, "source"),
	)
	return cmd
}

func newEditTransactionCmd(opts *rootOptions, entityType models.EntityType, labelName string) *cobra.Command {
	f := &editFlags{}
	cmd := &cobra.Command{
		Use:   string(entityType) + " ID",
		Short: "Change an " + string(entityType),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, date, err := f.parse(cmd, labelName, time.Now())
			if err != nil {
				return err
			}
			labelSet := cmd.Flags().Changed(labelName)
			noteSet := cmd.Flags().Changed("note")

			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				record, err := app.Ledger().Record(ctx)
				if err != nil {
					return err
				}

				var updated models.Entity
				switch entityType {
				case models.EntityExpense:
					i := slices.IndexFunc(record.Expenses, func(e models.Expense) bool { return e.ID == args[0] })
					if i < 0 {
						return fmt.Errorf("%w: %s %s", errEntityNotFound, entityType, args[0])
					}
					e := record.Expenses[i]
					if amount != nil {
						e.Amount = *amount
					}
					if date != nil {
						e.Date = *date
					}
					if labelSet {
						e.Category = f.label
					}
					if noteSet {
						e.Description = f.description
					}
					updated = e
				case models.EntityIncome:
					i := slices.IndexFunc(record.Incomes, func(in models.Income) bool { return in.ID == args[0] })
					if i < 0 {
						return fmt.Errorf("%w: %s %s", errEntityNotFound, entityType, args[0])
					}
					in := record.Incomes[i]
					if amount != nil {
						in.Amount = *amount
					}
					if date != nil {
						in.Date = *date
					}
					if labelSet {
						in.Source = f.label
					}
					if noteSet {
						in.Description = f.description
					}
					updated = in
				}

				op, err := app.Ledger().Update(ctx, entityType, updated)
				if err != nil {
					return fmt.Errorf("edit %s: %w", entityType, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", entityType, args[0])
				printQueued(cmd, app, op)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&f.amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&f.label, labelName, "", "new "+labelName)
	cmd.Flags().StringVarP(&f.description, "note", "n", "", "new description")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "new date")
	return cmd
}
