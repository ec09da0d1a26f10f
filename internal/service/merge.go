package service

import (
	"slices"
	"strings"
	"time"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// Merge reconciles a local and a remote version of one account's record.
// Neither input is modified.
//
//   - expenses and incomes: local followed by remote, duplicates kept
//   - budgets: local if it has any entry, remote otherwise
//   - categories: local plus remote entries whose name is new, compared
//     case-insensitively
//   - household metadata: remote unless the remote field is absent
//   - LastSync: now
func Merge(local, remote models.AggregateRecord, now time.Time) models.AggregateRecord {
	merged := models.AggregateRecord{
		AccountID:  remote.AccountID,
		Expenses:   concat(local.Expenses, remote.Expenses),
		Incomes:    concat(local.Incomes, remote.Incomes),
		Budgets:    slices.Clone(remote.Budgets),
		Categories: mergeCategories(local.Categories, remote.Categories),
		LastSync:   now,

		HouseholdID:      preferRemote(local.HouseholdID, remote.HouseholdID),
		IsHouseholdAdmin: preferRemote(local.IsHouseholdAdmin, remote.IsHouseholdAdmin),
		DisplayName:      preferRemote(local.DisplayName, remote.DisplayName),
	}
	if merged.AccountID == "" {
		merged.AccountID = local.AccountID
	}
	if len(local.Budgets) > 0 || len(remote.Budgets) == 0 {
		merged.Budgets = slices.Clone(local.Budgets)
	}

	return merged
}

func concat[T any](local, remote []T) []T {
	if len(remote) == 0 {
		return slices.Clone(local)
	}
	out := make([]T, 0, len(local)+len(remote))
	out = append(out, local...)
	return append(out, remote...)
}

func mergeCategories(local, remote []models.Category) []models.Category {
	out := slices.Clone(local)

	seen := make(map[string]struct{}, len(local)+len(remote))
	for _, c := range local {
		seen[categoryKey(c)] = struct{}{}
	}
	for _, c := range remote {
		key := categoryKey(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	return out
}

func categoryKey(c models.Category) string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

func preferRemote[T any](local, remote *T) *T {
	if remote != nil {
		v := *remote
		return &v
	}
	if local != nil {
		v := *local
		return &v
	}
	return nil
}
