// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"slices"
	"time"
)

// AggregateRecord is the single remote document holding one account's full
// financial dataset. The remote store keys it by AccountID.
type AggregateRecord struct {
	AccountID  string     `json:"accountId"`
	Expenses   []Expense  `json:"expenses,omitempty"`
	Incomes    []Income   `json:"incomes,omitempty"`
	Budgets    []Budget   `json:"budgets,omitempty"`
	Categories []Category `json:"categories,omitempty"`
	LastSync   time.Time  `json:"lastSync"`

	// Household metadata. A nil pointer means the field is absent, which the
	// merge resolver distinguishes from an explicit zero value.
	HouseholdID      *string `json:"householdId,omitempty"`
	IsHouseholdAdmin *bool   `json:"isHouseholdAdmin,omitempty"`
	DisplayName      *string `json:"displayName,omitempty"`
}

// NewAggregateRecord returns an empty record for accountID. It is what the
// adapter substitutes when the remote store has no document yet.
func NewAggregateRecord(accountID string) AggregateRecord {
	return AggregateRecord{AccountID: accountID}
}

// IsEmpty reports whether the record holds no entities at all.
func (r AggregateRecord) IsEmpty() bool {
	return len(r.Expenses) == 0 && len(r.Incomes) == 0 && len(r.Budgets) == 0 && len(r.Categories) == 0
}

// Clone returns a deep copy so callers can mutate collections without
// aliasing the original slices.
func (r AggregateRecord) Clone() AggregateRecord {
	out := r
	out.Expenses = slices.Clone(r.Expenses)
	out.Incomes = slices.Clone(r.Incomes)
	out.Budgets = slices.Clone(r.Budgets)
	out.Categories = slices.Clone(r.Categories)
	out.HouseholdID = clonePtr(r.HouseholdID)
	out.IsHouseholdAdmin = clonePtr(r.IsHouseholdAdmin)
	out.DisplayName = clonePtr(r.DisplayName)
	return out
}

// Count returns the number of entities in the collection named by t.
func (r AggregateRecord) Count(t EntityType) int {
	switch t {
	case EntityExpense:
		return len(r.Expenses)
	case EntityIncome:
		return len(r.Incomes)
	case EntityBudget:
		return len(r.Budgets)
	case EntityCategory:
		return len(r.Categories)
	}
	return 0
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. Handy for filling optional metadata fields.
func Ptr[T any](v T) *T {
	return &v
}
