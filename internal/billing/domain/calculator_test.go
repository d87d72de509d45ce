package billing

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

func TestPreviousReading_EmptyHistory(t *testing.T) {
	contract := Contract{InitialElectricityNum: 42}
	if got := PreviousReading(contract, nil); got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestPreviousReading_AppendIsIncremental(t *testing.T) {
	contract := Contract{InitialElectricityNum: 50}
	history := []Invoice{
		{InvoiceID: "inv-1", ElectricityNum: 20, DueDate: day(2024, time.January, 5), CreatedAt: day(2024, time.January, 1)},
		{InvoiceID: "inv-2", ElectricityNum: 30, DueDate: day(2024, time.February, 5), CreatedAt: day(2024, time.February, 1)},
	}
	before := PreviousReading(contract, history)

	appended := Invoice{InvoiceID: "inv-3", ElectricityNum: 15, DueDate: day(2024, time.March, 5), CreatedAt: day(2024, time.March, 1)}
	after := PreviousReading(contract, append(history, appended))
	if after != before+appended.ElectricityNum {
		t.Fatalf("expected %v, got %v", before+appended.ElectricityNum, after)
	}
}

func TestPreviousReading_MissingDeltasCountAsZero(t *testing.T) {
	contract := Contract{InitialElectricityNum: 10}
	history := []Invoice{
		{InvoiceID: "inv-1", DueDate: day(2024, time.January, 5)},
		{InvoiceID: "inv-2", ElectricityNum: 7, DueDate: day(2024, time.February, 5)},
	}
	if got := PreviousReading(contract, history); got != 17 {
		t.Fatalf("expected 17, got %v", got)
	}
}

func TestUsageAndCost_RoundTrip(t *testing.T) {
	cases := []struct {
		previous, current, unitPrice float64
	}{
		{0, 120, 3500},
		{120, 200, 3500},
		{50, 50, 1000},
		{33.5, 40.25, 2750},
	}
	for _, tc := range cases {
		uc, err := UsageAndCost(tc.previous, ptr(tc.current), tc.unitPrice)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := tc.previous + uc.UsageKWh; got != tc.current {
			t.Fatalf("round trip broken: previous=%v usage=%v current=%v", tc.previous, uc.UsageKWh, tc.current)
		}
	}
}

func TestUsageAndCost_RejectsBelowPrevious(t *testing.T) {
	uc, err := UsageAndCost(100, ptr(90), 3500)
	if !errors.Is(err, ErrReadingBelowPrevious) {
		t.Fatalf("expected ErrReadingBelowPrevious, got %v", err)
	}
	if uc != nil {
		t.Fatalf("expected no result, got %+v", uc)
	}
}

func TestUsageAndCost_NilCurrentProducesNoResult(t *testing.T) {
	uc, err := UsageAndCost(100, nil, 3500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc != nil {
		t.Fatalf("expected nil result for absent reading, got %+v", uc)
	}
}

func TestUsageAndCost_RoundsHalfUp(t *testing.T) {
	// 3 kWh at 1166.5 -> 3499.5 -> 3500
	uc, err := UsageAndCost(0, ptr(3), 1166.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc.Cost != 3500 {
		t.Fatalf("expected 3500, got %v", uc.Cost)
	}
}

func TestReadingsForEdit_Positions(t *testing.T) {
	contract := Contract{InitialElectricityNum: 50}
	history := []Invoice{
		// Deliberately out of order; the calculator must sort.
		{InvoiceID: "inv-2", ElectricityNum: 30, DueDate: day(2024, time.February, 5), CreatedAt: day(2024, time.February, 1)},
		{InvoiceID: "inv-1", ElectricityNum: 20, DueDate: day(2024, time.January, 5), CreatedAt: day(2024, time.January, 1)},
	}

	first, err := ReadingsForEdit(contract, history, "inv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Previous != 50 || first.Current != 70 {
		t.Fatalf("expected (50, 70), got (%v, %v)", first.Previous, first.Current)
	}

	second, err := ReadingsForEdit(contract, history, "inv-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Previous != 70 || second.Current != 100 {
		t.Fatalf("expected (70, 100), got (%v, %v)", second.Previous, second.Current)
	}
}

func TestReadingsForEdit_TieBrokenByCreatedAt(t *testing.T) {
	contract := Contract{InitialElectricityNum: 0}
	due := day(2024, time.March, 5)
	history := []Invoice{
		{InvoiceID: "later", ElectricityNum: 10, DueDate: due, CreatedAt: day(2024, time.March, 2)},
		{InvoiceID: "earlier", ElectricityNum: 5, DueDate: due, CreatedAt: day(2024, time.March, 1)},
	}
	got, err := ReadingsForEdit(contract, history, "later")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Previous != 5 || got.Current != 15 {
		t.Fatalf("expected (5, 15), got (%v, %v)", got.Previous, got.Current)
	}
}

func TestReadingsForEdit_NotFound(t *testing.T) {
	contract := Contract{InitialElectricityNum: 50}
	_, err := ReadingsForEdit(contract, nil, "inv-404")
	if !errors.Is(err, ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}

func TestTotal_MissingFieldsCountAsZero(t *testing.T) {
	inv := Invoice{Price: 2500000}
	if got := Total(inv); got != 2500000 {
		t.Fatalf("expected price alone, got %v", got)
	}
}

func TestTotal_AllComponents(t *testing.T) {
	inv := Invoice{
		Price:            2500000,
		WaterPrice:       80000,
		InternetPrice:    100000,
		GeneralPrice:     100000,
		ElectricityPrice: 420000,
	}
	if got := Total(inv); got != 3200000 {
		t.Fatalf("expected 3200000, got %v", got)
	}
}

func TestBillingScenario_TwoPeriods(t *testing.T) {
	contract := Contract{RRID: "rr-1", InitialElectricityNum: 0, ElectricityUnitPrice: 3500}

	// First invoice: previous = initial = 0, user enters 120.
	previous := PreviousReading(contract, nil)
	if previous != 0 {
		t.Fatalf("expected previous 0, got %v", previous)
	}
	first, err := UsageAndCost(previous, ptr(120), contract.ElectricityUnitPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.UsageKWh != 120 || first.Cost != 420000 {
		t.Fatalf("expected usage=120 cost=420000, got %+v", first)
	}

	history := []Invoice{{
		InvoiceID:      "inv-1",
		ElectricityNum: first.UsageKWh,
		DueDate:        day(2024, time.January, 5),
		CreatedAt:      day(2024, time.January, 1),
	}}

	// Second invoice: previous = 120, user enters 200.
	previous = PreviousReading(contract, history)
	if previous != 120 {
		t.Fatalf("expected previous 120, got %v", previous)
	}
	second, err := UsageAndCost(previous, ptr(200), contract.ElectricityUnitPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.UsageKWh != 80 || second.Cost != 280000 {
		t.Fatalf("expected usage=80 cost=280000, got %+v", second)
	}

	// Rejection: user enters 100 with previous 120.
	if _, err := UsageAndCost(previous, ptr(100), contract.ElectricityUnitPrice); !errors.Is(err, ErrReadingBelowPrevious) {
		t.Fatalf("expected ErrReadingBelowPrevious, got %v", err)
	}
}
