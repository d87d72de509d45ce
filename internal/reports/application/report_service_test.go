package application

import (
	"strings"
	"testing"
)

func TestInvoiceTotalExprCoversAllCharges(t *testing.T) {
	// The SQL total must sum the same five charges the domain Total
	// sums; a missing column here would silently understate revenue.
	columns := []string{
		"i.price",
		"i.water_price",
		"i.internet_price",
		"i.general_price",
		"i.electricity_price",
	}
	for _, column := range columns {
		if !strings.Contains(InvoiceTotalExpr, column) {
			t.Fatalf("total expression missing %s: %s", column, InvoiceTotalExpr)
		}
	}
}
