package billing

import "context"

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, invoiceID string) error
	GetByID(ctx context.Context, invoiceID string) (*Invoice, error)
	ListByContract(ctx context.Context, rrID string) ([]Invoice, error)
	ListByOwner(ctx context.Context, ownerID string, onlyPending bool, limit, offset int) ([]Invoice, error)
}

// ContractReader exposes the billing projection of contracts owned by
// the directory module.
type ContractReader interface {
	BillingContract(ctx context.Context, rrID string) (*Contract, error)
	ListActiveBillingContracts(ctx context.Context, ownerID string) ([]Contract, error)
}
