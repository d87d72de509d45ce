package memory

import (
	"context"
	"sync"

	billing "rentroll-cloud/internal/billing/domain"
)

// ContractReader serves billing projections of contracts from memory.
type ContractReader struct {
	mu        sync.RWMutex
	contracts map[string]billing.Contract
	owners    map[string]string
	active    map[string]bool
}

// NewContractReader constructs an empty reader.
func NewContractReader() *ContractReader {
	return &ContractReader{
		contracts: make(map[string]billing.Contract),
		owners:    make(map[string]string),
		active:    make(map[string]bool),
	}
}

// Put stores a contract projection for an owner.
func (r *ContractReader) Put(c billing.Contract, ownerID string, isActive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[c.RRID] = c
	r.owners[c.RRID] = ownerID
	r.active[c.RRID] = isActive
}

func (r *ContractReader) BillingContract(_ context.Context, rrID string) (*billing.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[rrID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ContractReader) ListActiveBillingContracts(_ context.Context, ownerID string) ([]billing.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []billing.Contract
	for rrID, c := range r.contracts {
		if r.owners[rrID] == ownerID && r.active[rrID] {
			result = append(result, c)
		}
	}
	return result, nil
}
