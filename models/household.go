package models

import "github.com/shopspring/decimal"

// HouseholdTotals is the derived, never persisted aggregation of several
// members' records.
type HouseholdTotals struct {
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	Members         int             `json:"members"`
}
