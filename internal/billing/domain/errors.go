package billing

import "errors"

var (
	// ErrReadingBelowPrevious is returned when a current meter reading is
	// below the derived previous reading. Callers must re-prompt; the
	// calculator never clamps.
	ErrReadingBelowPrevious = errors.New("billing: current reading must be >= previous reading")
	// ErrInvoiceNotFound is returned when the target invoice is missing
	// from the fetched history.
	ErrInvoiceNotFound = errors.New("billing: invoice not found in history")
	// ErrNegativeUnitPrice is returned when a unit price is negative.
	ErrNegativeUnitPrice = errors.New("billing: negative unit price")
	// ErrContractNotFound is returned when a contract cannot be loaded.
	ErrContractNotFound = errors.New("billing: contract not found")
)
