// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType names one of the four collections of an [AggregateRecord].
type EntityType string

const (
	// EntityExpense identifies the expenses collection.
	EntityExpense EntityType = "expense"

	// EntityIncome identifies the incomes collection.
	EntityIncome EntityType = "income"

	// EntityBudget identifies the budgets collection.
	EntityBudget EntityType = "budget"

	// EntityCategory identifies the categories collection.
	EntityCategory EntityType = "category"
)

// EntityTypes lists every supported entity type in a stable order.
var EntityTypes = []EntityType{EntityExpense, EntityIncome, EntityBudget, EntityCategory}

// Valid reports whether t is one of the supported entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityExpense, EntityIncome, EntityBudget, EntityCategory:
		return true
	}
	return false
}

// Entity is implemented by every record stored in an aggregate collection.
type Entity interface {
	EntityID() string
}

// Expense is a single outgoing transaction.
type Expense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"createdBy,omitempty"`
}

// EntityID implements [Entity].
func (e Expense) EntityID() string { return e.ID }

// Income is a single incoming transaction.
type Income struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Source      string          `json:"source,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"createdBy,omitempty"`
}

// EntityID implements [Entity].
func (i Income) EntityID() string { return i.ID }

// Budget is a spending limit for one category over a period.
type Budget struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Currency string          `json:"currency,omitempty"`
	Period   string          `json:"period,omitempty"`
}

// EntityID implements [Entity].
func (b Budget) EntityID() string { return b.ID }

// Category is a user-defined label for expenses or incomes.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind,omitempty"`
	Color string `json:"color,omitempty"`
}

// EntityID implements [Entity].
func (c Category) EntityID() string { return c.ID }
