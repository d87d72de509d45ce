package billing

import "time"

// Contract is the billing projection of a tenancy contract. The full
// aggregate lives in the directory module; billing only needs the meter
// baseline and the unit prices agreed in the contract.
type Contract struct {
	RRID                  string
	InitialElectricityNum float64
	ElectricityUnitPrice  float64
	MonthlyRent           float64
	WaterPrice            float64
	InternetPrice         float64
	GeneralPrice          float64
}

// Invoice represents one billing period's charges for a contract.
// ElectricityNum is the kWh consumed in the period (a delta), never an
// absolute meter reading; absolute readings are derived from history.
type Invoice struct {
	InvoiceID        string
	RRID             string
	Price            float64
	WaterPrice       float64
	InternetPrice    float64
	GeneralPrice     float64
	ElectricityPrice float64
	ElectricityNum   float64
	DueDate          time.Time
	IsPaid           bool
	PaymentDate      time.Time
	CreatedAt        time.Time
}

// Total returns the invoice grand total, treating missing fields as 0.
// This is the single total implementation used by list views, detail
// responses, exports and reports.
func Total(inv Invoice) float64 {
	return inv.Price + inv.WaterPrice + inv.InternetPrice + inv.GeneralPrice + inv.ElectricityPrice
}
