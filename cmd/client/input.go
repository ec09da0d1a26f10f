package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/shopspring/decimal"
)

var (
	errUnknownDate     = errors.New("cannot understand date")
	errInvalidAmount   = errors.New("amount must be a non-negative number")
	errUnknownEntity   = errors.New("unknown entity type")
	errNoHouseholdID   = errors.New("no household id given and the local record has none")
	errNothingToChange = errors.New("nothing to change")
)

var dateParser = newDateParser()

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// parseDate accepts "2006-01-02" dates and English expressions such as
// "yesterday" or "last friday", relative to now. Empty input means now.
func parseDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now, nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, input, now.Location()); err == nil {
		return t, nil
	}

	r, err := dateParser.Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", errUnknownDate, input)
	}
	return r.Time, nil
}

func parseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", errInvalidAmount, input)
	}
	return amount, nil
}

func parseEntityType(input string) (models.EntityType, error) {
	t := models.EntityType(strings.ToLower(strings.TrimSpace(input)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", errUnknownEntity, input)
	}
	return t, nil
}
