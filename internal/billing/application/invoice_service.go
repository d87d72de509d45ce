package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	billing "rentroll-cloud/internal/billing/domain"
	"rentroll-cloud/internal/observability/metrics"
)

// InvoiceService handles invoice workflows on top of the reading
// calculator.
type InvoiceService struct {
	invoices  billing.InvoiceRepository
	contracts billing.ContractReader
	logger    *log.Logger
}

// NewInvoiceService constructs a service.
func NewInvoiceService(invoices billing.InvoiceRepository, contracts billing.ContractReader, logger *log.Logger) (*InvoiceService, error) {
	if invoices == nil {
		return nil, errors.New("invoice service: nil invoice repo")
	}
	if contracts == nil {
		return nil, errors.New("invoice service: nil contract reader")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &InvoiceService{invoices: invoices, contracts: contracts, logger: logger}, nil
}

// CreateInvoiceInput carries invoice creation fields. Nil price fields
// fall back to the contract's configured prices. A nil current reading
// creates a draft with no electricity charge.
type CreateInvoiceInput struct {
	RRID                  string
	Price                 *float64
	WaterPrice            *float64
	InternetPrice         *float64
	GeneralPrice          *float64
	CurrentElectricityNum *float64
	DueDate               time.Time
}

// UpdateInvoiceInput carries invoice edit fields. Nil fields are left
// unchanged; a non-nil current reading recomputes usage and cost at the
// invoice's chronological position.
type UpdateInvoiceInput struct {
	Price                 *float64
	WaterPrice            *float64
	InternetPrice         *float64
	GeneralPrice          *float64
	CurrentElectricityNum *float64
	DueDate               *time.Time
}

// EditReadings is the absolute meter pair shown on an edit form.
type EditReadings struct {
	Previous   float64
	Current    float64
	Unverified bool
}

// Create derives usage and cost from the contract's reading history and
// persists a new invoice. Usage and cost are always recomputed here;
// client-supplied electricity amounts are never trusted.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*billing.Invoice, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceCreate(result, time.Since(start))
	}()

	if in.RRID == "" {
		result = metrics.ResultError
		return nil, errors.New("invoice service: rr_id required")
	}
	if in.DueDate.IsZero() {
		result = metrics.ResultError
		return nil, errors.New("invoice service: due_date required")
	}

	contract, err := s.contracts.BillingContract(ctx, in.RRID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if contract == nil {
		result = metrics.ResultError
		return nil, billing.ErrContractNotFound
	}

	history, err := s.invoices.ListByContract(ctx, in.RRID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	previous := billing.PreviousReading(*contract, history)
	uc, err := billing.UsageAndCost(previous, in.CurrentElectricityNum, contract.ElectricityUnitPrice)
	if err != nil {
		result = metrics.ResultError
		if errors.Is(err, billing.ErrReadingBelowPrevious) {
			metrics.IncReadingRejected()
			s.logger.Printf("invoice create rejected rr_id=%s previous=%.2f current=%.2f", in.RRID, previous, *in.CurrentElectricityNum)
		}
		return nil, err
	}

	now := time.Now().UTC()
	inv := &billing.Invoice{
		InvoiceID:     "inv-" + uuid.NewString(),
		RRID:          in.RRID,
		Price:         orDefault(in.Price, contract.MonthlyRent),
		WaterPrice:    orDefault(in.WaterPrice, contract.WaterPrice),
		InternetPrice: orDefault(in.InternetPrice, contract.InternetPrice),
		GeneralPrice:  orDefault(in.GeneralPrice, contract.GeneralPrice),
		DueDate:       in.DueDate.UTC(),
		CreatedAt:     now,
	}
	if uc != nil {
		inv.ElectricityNum = uc.UsageKWh
		inv.ElectricityPrice = uc.Cost
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return inv, nil
}

// Update applies partial edits to an invoice. When the current reading
// changes, the previous reading is re-derived at the invoice's own
// position in history so earlier periods stay untouched.
func (s *InvoiceService) Update(ctx context.Context, invoiceID string, in UpdateInvoiceInput) (*billing.Invoice, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceUpdate(result, time.Since(start))
	}()

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if inv == nil {
		result = metrics.ResultError
		return nil, billing.ErrInvoiceNotFound
	}

	if in.CurrentElectricityNum != nil {
		contract, err := s.contracts.BillingContract(ctx, inv.RRID)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		if contract == nil {
			result = metrics.ResultError
			return nil, billing.ErrContractNotFound
		}
		history, err := s.invoices.ListByContract(ctx, inv.RRID)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		previous, unverified := s.previousForEdit(*contract, history, invoiceID)
		if unverified {
			s.logger.Printf("invoice update unverified previous invoice_id=%s rr_id=%s", invoiceID, inv.RRID)
		}
		uc, err := billing.UsageAndCost(previous, in.CurrentElectricityNum, contract.ElectricityUnitPrice)
		if err != nil {
			result = metrics.ResultError
			if errors.Is(err, billing.ErrReadingBelowPrevious) {
				metrics.IncReadingRejected()
			}
			return nil, err
		}
		inv.ElectricityNum = uc.UsageKWh
		inv.ElectricityPrice = uc.Cost
	}

	if in.Price != nil {
		inv.Price = *in.Price
	}
	if in.WaterPrice != nil {
		inv.WaterPrice = *in.WaterPrice
	}
	if in.InternetPrice != nil {
		inv.InternetPrice = *in.InternetPrice
	}
	if in.GeneralPrice != nil {
		inv.GeneralPrice = *in.GeneralPrice
	}
	if in.DueDate != nil {
		inv.DueDate = in.DueDate.UTC()
	}

	if err := s.invoices.Update(ctx, inv); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return inv, nil
}

// ReadingsForEdit returns the absolute previous/current readings for an
// invoice's edit form. A missing history entry degrades to previous=0
// with the Unverified flag set instead of failing the form load.
func (s *InvoiceService) ReadingsForEdit(ctx context.Context, invoiceID string) (EditReadings, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return EditReadings{}, err
	}
	if inv == nil {
		return EditReadings{}, billing.ErrInvoiceNotFound
	}
	contract, err := s.contracts.BillingContract(ctx, inv.RRID)
	if err != nil {
		return EditReadings{}, err
	}
	if contract == nil {
		return EditReadings{}, billing.ErrContractNotFound
	}
	history, err := s.invoices.ListByContract(ctx, inv.RRID)
	if err != nil {
		return EditReadings{}, err
	}
	readings, err := billing.ReadingsForEdit(*contract, history, invoiceID)
	if err != nil {
		if errors.Is(err, billing.ErrInvoiceNotFound) {
			metrics.IncReadingFallback()
			s.logger.Printf("readings fallback invoice_id=%s rr_id=%s", invoiceID, inv.RRID)
			return EditReadings{
				Previous:   0,
				Current:    inv.ElectricityNum,
				Unverified: true,
			}, nil
		}
		return EditReadings{}, err
	}
	return EditReadings{Previous: readings.Previous, Current: readings.Current}, nil
}

// MarkPaid marks an invoice paid. A zero payment date defaults to the
// invoice's creation time.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID string, paymentDate time.Time) (*billing.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, billing.ErrInvoiceNotFound
	}
	if inv.IsPaid {
		return inv, nil
	}
	inv.IsPaid = true
	if paymentDate.IsZero() {
		paymentDate = inv.CreatedAt
	}
	inv.PaymentDate = paymentDate.UTC()
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes an invoice.
func (s *InvoiceService) Delete(ctx context.Context, invoiceID string) error {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return billing.ErrInvoiceNotFound
	}
	return s.invoices.Delete(ctx, invoiceID)
}

// Get returns one invoice.
func (s *InvoiceService) Get(ctx context.Context, invoiceID string) (*billing.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, billing.ErrInvoiceNotFound
	}
	return inv, nil
}

// ListByContract returns a contract's invoices in chronological order.
func (s *InvoiceService) ListByContract(ctx context.Context, rrID string) ([]billing.Invoice, error) {
	if rrID == "" {
		return nil, errors.New("invoice service: rr_id required")
	}
	history, err := s.invoices.ListByContract(ctx, rrID)
	if err != nil {
		return nil, err
	}
	return billing.SortChronological(history), nil
}

// ListByOwner returns invoices across the owner's houses, newest
// first. An empty ownerID spans all owners; handlers only grant that
// scope to admins.
func (s *InvoiceService) ListByOwner(ctx context.Context, ownerID string, onlyPending bool, limit, offset int) ([]billing.Invoice, error) {
	return s.invoices.ListByOwner(ctx, ownerID, onlyPending, limit, offset)
}

// GenerateMonthlyDrafts creates one draft invoice per active contract
// with the contract's configured prices and no electricity charge.
// Readings are entered later through Update.
func (s *InvoiceService) GenerateMonthlyDrafts(ctx context.Context, ownerID string, dueDate time.Time) ([]billing.Invoice, error) {
	if ownerID == "" {
		return nil, errors.New("invoice service: owner_id required")
	}
	if dueDate.IsZero() {
		dueDate = firstOfNextMonth(time.Now().UTC())
	}
	active, err := s.contracts.ListActiveBillingContracts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	drafts := make([]billing.Invoice, 0, len(active))
	for _, contract := range active {
		inv := billing.Invoice{
			InvoiceID:     "inv-" + uuid.NewString(),
			RRID:          contract.RRID,
			Price:         contract.MonthlyRent,
			WaterPrice:    contract.WaterPrice,
			InternetPrice: contract.InternetPrice,
			GeneralPrice:  contract.GeneralPrice,
			DueDate:       dueDate.UTC(),
			CreatedAt:     now,
		}
		if err := s.invoices.Create(ctx, &inv); err != nil {
			return drafts, err
		}
		drafts = append(drafts, inv)
	}
	s.logger.Printf("monthly drafts generated owner_id=%s count=%d", ownerID, len(drafts))
	return drafts, nil
}

func (s *InvoiceService) previousForEdit(contract billing.Contract, history []billing.Invoice, invoiceID string) (float64, bool) {
	readings, err := billing.ReadingsForEdit(contract, history, invoiceID)
	if err != nil {
		metrics.IncReadingFallback()
		return 0, true
	}
	return readings.Previous, false
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
