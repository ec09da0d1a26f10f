package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Aggregate folds member records into household totals. It has no side
// effects.
//
// An entry counts towards the monthly totals when its date lies in
// [first day of now's month, now] in now's location. Member dates are not
// normalised to a common time zone, and amounts are summed regardless of
// currency.
func Aggregate(records []models.AggregateRecord, now time.Time) models.HouseholdTotals {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	inMonth := func(t time.Time) bool {
		return !t.Before(monthStart) && !t.After(now)
	}

	totals := models.HouseholdTotals{
		TotalExpenses:   decimal.Zero,
		TotalIncome:     decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		MonthlyIncome:   decimal.Zero,
		Members:         len(records),
	}
	for _, record := range records {
		for _, e := range record.Expenses {
			totals.TotalExpenses = totals.TotalExpenses.Add(e.Amount)
			if inMonth(e.Date) {
				totals.MonthlyExpenses = totals.MonthlyExpenses.Add(e.Amount)
			}
		}
		for _, i := range record.Incomes {
			totals.TotalIncome = totals.TotalIncome.Add(i.Amount)
			if inMonth(i.Date) {
				totals.MonthlyIncome = totals.MonthlyIncome.Add(i.Amount)
			}
		}
	}

	return totals
}

// maxConcurrentFetches bounds parallel record reads of one household.
const maxConcurrentFetches = 4

type householdService struct {
	remote adapter.RemoteStore

	logger *logger.Logger
}

// NewHouseholdService returns a HouseholdService reading through remote.
func NewHouseholdService(remote adapter.RemoteStore, logger *logger.Logger) HouseholdService {
	return &householdService{remote: remote, logger: logger}
}

// Members returns the sorted account ids of every record carrying
// householdID.
func (s *householdService) Members(ctx context.Context, householdID string) ([]string, error) {
	if householdID == "" {
		return nil, ErrNoHouseholdID
	}

	records, err := s.remote.QueryByField(ctx, adapter.RecordsCollection, adapter.FieldHouseholdID, householdID)
	if err != nil {
		return nil, fmt.Errorf("query household members: %w", classifyRemoteError(err))
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.AccountID != "" {
			ids = append(ids, r.AccountID)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Fetch reads every member's record concurrently. The result is in
// memberIDs order; a member without a record contributes an empty one.
func (s *householdService) Fetch(ctx context.Context, memberIDs []string) ([]models.AggregateRecord, error) {
	records := make([]models.AggregateRecord, len(memberIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, id := range memberIDs {
		g.Go(func() error {
			record, err := FetchRecord(gctx, s.remote, id)
			if err != nil {
				return fmt.Errorf("fetch member %s: %w", id, err)
			}
			records[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Err(err).Str("func", "*householdService.Fetch").Msg("error fetching household records")
		return nil, err
	}

	return records, nil
}

func (s *householdService) Totals(ctx context.Context, householdID string, now time.Time) (models.HouseholdTotals, error) {
	members, err := s.Members(ctx, householdID)
	if err != nil {
		return models.HouseholdTotals{}, err
	}

	records, err := s.Fetch(ctx, members)
	if err != nil {
		return models.HouseholdTotals{}, err
	}

	return Aggregate(records, now), nil
}
