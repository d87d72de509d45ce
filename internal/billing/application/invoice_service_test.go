package application

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	billing "rentroll-cloud/internal/billing/domain"
	"rentroll-cloud/internal/billing/infrastructure/memory"
)

func newTestService(t *testing.T) (*InvoiceService, *memory.InvoiceRepository, *memory.ContractReader) {
	t.Helper()
	invoices := memory.NewInvoiceRepository()
	contracts := memory.NewContractReader()
	svc, err := NewInvoiceService(invoices, contracts, log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, invoices, contracts
}

func seedContract(invoices *memory.InvoiceRepository, contracts *memory.ContractReader) billing.Contract {
	contract := billing.Contract{
		RRID:                  "rr-1",
		InitialElectricityNum: 100,
		ElectricityUnitPrice:  3500,
		MonthlyRent:           2500000,
		WaterPrice:            80000,
		InternetPrice:         100000,
		GeneralPrice:          100000,
	}
	contracts.Put(contract, "owner-1", true)
	invoices.BindContractOwner(contract.RRID, "owner-1")
	return contract
}

func fptr(v float64) *float64 { return &v }

func TestCreate_DerivesElectricityFromHistory(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(220),
		DueDate:               time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ElectricityNum != 120 || first.ElectricityPrice != 420000 {
		t.Fatalf("expected usage=120 cost=420000, got %+v", first)
	}
	if first.Price != 2500000 || first.WaterPrice != 80000 {
		t.Fatalf("expected contract defaults, got %+v", first)
	}

	second, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(300),
		DueDate:               time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.ElectricityNum != 80 || second.ElectricityPrice != 280000 {
		t.Fatalf("expected usage=80 cost=280000, got %+v", second)
	}
}

func TestCreate_RejectsReadingBelowPrevious(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(90),
		DueDate:               time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, billing.ErrReadingBelowPrevious) {
		t.Fatalf("expected ErrReadingBelowPrevious, got %v", err)
	}
}

func TestCreate_NoReadingCreatesDraftWithoutCharge(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:    "rr-1",
		DueDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.ElectricityNum != 0 || inv.ElectricityPrice != 0 {
		t.Fatalf("expected no electricity charge, got %+v", inv)
	}
}

func TestCreate_UnknownContract(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		RRID:    "rr-404",
		DueDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, billing.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestUpdate_RecomputesAtInvoicePosition(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(220),
		DueDate:               time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(300),
		DueDate:               time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Re-enter the first period's reading as 250. Previous at that
	// position is the contract's initial reading of 100.
	updated, err := svc.Update(ctx, first.InvoiceID, UpdateInvoiceInput{
		CurrentElectricityNum: fptr(250),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ElectricityNum != 150 || updated.ElectricityPrice != 525000 {
		t.Fatalf("expected usage=150 cost=525000, got %+v", updated)
	}
}

func TestUpdate_RejectsReadingBelowPositionPrevious(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(220),
		DueDate:               time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Update(ctx, inv.InvoiceID, UpdateInvoiceInput{
		CurrentElectricityNum: fptr(50),
	})
	if !errors.Is(err, billing.ErrReadingBelowPrevious) {
		t.Fatalf("expected ErrReadingBelowPrevious, got %v", err)
	}
}

func TestUpdate_PartialFieldsLeaveReadingsAlone(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(220),
		DueDate:               time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.Update(ctx, inv.InvoiceID, UpdateInvoiceInput{
		WaterPrice: fptr(90000),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.WaterPrice != 90000 {
		t.Fatalf("expected water price 90000, got %v", updated.WaterPrice)
	}
	if updated.ElectricityNum != 120 || updated.ElectricityPrice != 420000 {
		t.Fatalf("electricity fields changed unexpectedly: %+v", updated)
	}
}

func TestReadingsForEdit_ReturnsAbsolutePair(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(220),
		DueDate:               time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:                  "rr-1",
		CurrentElectricityNum: fptr(300),
		DueDate:               time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, err := svc.ReadingsForEdit(ctx, first.InvoiceID)
	if err != nil {
		t.Fatalf("readings: %v", err)
	}
	if got.Previous != 100 || got.Current != 220 || got.Unverified {
		t.Fatalf("expected verified (100, 220), got %+v", got)
	}

	got, err = svc.ReadingsForEdit(ctx, second.InvoiceID)
	if err != nil {
		t.Fatalf("readings second: %v", err)
	}
	if got.Previous != 220 || got.Current != 300 {
		t.Fatalf("expected (220, 300), got %+v", got)
	}
}

func TestMarkPaid_DefaultsPaymentDateToCreation(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:    "rr-1",
		DueDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	paid, err := svc.MarkPaid(ctx, inv.InvoiceID, time.Time{})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !paid.IsPaid {
		t.Fatalf("expected paid")
	}
	if !paid.PaymentDate.Equal(inv.CreatedAt) {
		t.Fatalf("expected payment date %v, got %v", inv.CreatedAt, paid.PaymentDate)
	}
}

func TestGenerateMonthlyDrafts(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	second := billing.Contract{
		RRID:                 "rr-2",
		ElectricityUnitPrice: 3500,
		MonthlyRent:          1800000,
		WaterPrice:           80000,
	}
	contracts.Put(second, "owner-1", true)
	invoices.BindContractOwner(second.RRID, "owner-1")
	inactive := billing.Contract{RRID: "rr-3"}
	contracts.Put(inactive, "owner-1", false)

	due := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	drafts, err := svc.GenerateMonthlyDrafts(context.Background(), "owner-1", due)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	for _, d := range drafts {
		if d.ElectricityNum != 0 || d.ElectricityPrice != 0 {
			t.Fatalf("expected no electricity charge on draft, got %+v", d)
		}
		if !d.DueDate.Equal(due) {
			t.Fatalf("expected due %v, got %v", due, d.DueDate)
		}
	}
}

func TestListByOwner_PendingOnly(t *testing.T) {
	svc, invoices, contracts := newTestService(t)
	seedContract(invoices, contracts)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:    "rr-1",
		DueDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInvoiceInput{
		RRID:    "rr-1",
		DueDate: time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, first.InvoiceID, time.Time{}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	pending, err := svc.ListByOwner(ctx, "owner-1", true, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending invoice, got %d", len(pending))
	}
	if pending[0].InvoiceID == first.InvoiceID {
		t.Fatalf("paid invoice leaked into pending list")
	}
}

func TestDelete_UnknownInvoice(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.Delete(context.Background(), "inv-404"); !errors.Is(err, billing.ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}
