package billing

import (
	"math"
	"sort"
)

// UsageCost is the derived electricity charge for one billing period.
type UsageCost struct {
	UsageKWh float64
	Cost     float64
}

// Readings holds the absolute meter values bounding one billing period.
type Readings struct {
	Previous float64
	Current  float64
}

// SortChronological orders invoices by (due_date, created_at) ascending.
// The input slice is not modified.
func SortChronological(history []Invoice) []Invoice {
	sorted := make([]Invoice, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].DueDate.Equal(sorted[j].DueDate) {
			return sorted[i].DueDate.Before(sorted[j].DueDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// PreviousReading derives the absolute meter value at the end of the most
// recent billing period: the contract's initial reading plus the sum of
// all stored usage deltas. With empty history it returns the initial
// reading. Stored deltas are folded in chronological order; since
// addition commutes the order only matters for ReadingsForEdit, but both
// share the same sort so the two paths can never drift.
func PreviousReading(contract Contract, history []Invoice) float64 {
	total := contract.InitialElectricityNum
	for _, inv := range SortChronological(history) {
		total += inv.ElectricityNum
	}
	return total
}

// UsageAndCost validates a user-entered absolute reading against the
// derived previous reading and computes the period's usage and cost.
// A nil current reading means the user has not entered one yet: the
// result is nil with no error rather than a false zero-cost charge.
// Cost is rounded half-up, the single canonical rounding rule.
func UsageAndCost(previous float64, current *float64, unitPrice float64) (*UsageCost, error) {
	if unitPrice < 0 {
		return nil, ErrNegativeUnitPrice
	}
	if current == nil {
		return nil, nil
	}
	if *current < previous {
		return nil, ErrReadingBelowPrevious
	}
	usage := *current - previous
	return &UsageCost{
		UsageKWh: usage,
		Cost:     math.Round(usage * unitPrice),
	}, nil
}

// ReadingsForEdit derives the absolute previous/current readings for an
// existing invoice at its chronological position in history, so an edit
// form can present meter values consistent with the invoice's period
// rather than the latest one. Returns ErrInvoiceNotFound when the target
// is missing from the fetched history (e.g. the fetch raced a delete);
// the caller decides how to degrade.
func ReadingsForEdit(contract Contract, history []Invoice, invoiceID string) (Readings, error) {
	previous := contract.InitialElectricityNum
	for _, inv := range SortChronological(history) {
		if inv.InvoiceID == invoiceID {
			return Readings{
				Previous: previous,
				Current:  previous + inv.ElectricityNum,
			}, nil
		}
		previous += inv.ElectricityNum
	}
	return Readings{}, ErrInvoiceNotFound
}
