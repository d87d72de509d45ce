package memory

import (
	"context"
	"sort"
	"sync"

	billing "rentroll-cloud/internal/billing/domain"
)

// InvoiceRepository is an in-memory invoice store used in tests and
// local development.
type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]billing.Invoice
	// ownerByContract maps rr_id to owner_id so ListByOwner can scope
	// without a directory lookup.
	ownerByContract map[string]string
}

// NewInvoiceRepository constructs an empty store.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		invoices:        make(map[string]billing.Invoice),
		ownerByContract: make(map[string]string),
	}
}

// BindContractOwner records which owner a contract belongs to.
func (r *InvoiceRepository) BindContractOwner(rrID, ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ownerByContract[rrID] = ownerID
}

func (r *InvoiceRepository) Create(_ context.Context, inv *billing.Invoice) error {
	if inv == nil {
		return billing.ErrInvoiceNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[inv.InvoiceID] = *inv
	return nil
}

func (r *InvoiceRepository) Update(_ context.Context, inv *billing.Invoice) error {
	if inv == nil {
		return billing.ErrInvoiceNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[inv.InvoiceID]; !ok {
		return billing.ErrInvoiceNotFound
	}
	r.invoices[inv.InvoiceID] = *inv
	return nil
}

func (r *InvoiceRepository) Delete(_ context.Context, invoiceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, invoiceID)
	return nil
}

func (r *InvoiceRepository) GetByID(_ context.Context, invoiceID string) (*billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepository) ListByContract(_ context.Context, rrID string) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []billing.Invoice
	for _, inv := range r.invoices {
		if inv.RRID == rrID {
			result = append(result, inv)
		}
	}
	return result, nil
}

func (r *InvoiceRepository) ListByOwner(_ context.Context, ownerID string, onlyPending bool, limit, offset int) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var result []billing.Invoice
	for _, inv := range r.invoices {
		if ownerID != "" && r.ownerByContract[inv.RRID] != ownerID {
			continue
		}
		if onlyPending && inv.IsPaid {
			continue
		}
		result = append(result, inv)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.After(result[j].DueDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
