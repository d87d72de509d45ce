package interfaces

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	reportapp "rentroll-cloud/internal/reports/application"
)

func TestBuildReportXLSX(t *testing.T) {
	stats := &reportapp.RevenueStats{
		TotalRevenue:          6400000,
		PaidCount:             2,
		PendingCount:          1,
		PendingAmount:         3200000,
		AverageMonthlyRevenue: 3200000,
	}
	revenue := []reportapp.MonthRevenue{
		{Month: "2024-02", Revenue: 3200000, InvoiceCount: 1},
		{Month: "2024-01", Revenue: 3200000, InvoiceCount: 1},
	}
	occupancy := []reportapp.HouseOccupancy{
		{HouseID: "house-1", HouseName: "Lakeside", TotalRooms: 4, OccupiedRooms: 3, OccupancyRate: 0.75},
	}
	tenants := []reportapp.TenantRow{
		{RRID: "rr-1", TenantName: "Nguyen Van A", RoomName: "101", HouseName: "Lakeside", MonthlyRent: 2500000, StartDate: "2024-01-01"},
	}

	data, err := BuildReportXLSX(stats, revenue, occupancy, tenants)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"summary", "revenue", "occupancy", "tenants"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Fatalf("missing sheet %s", sheet)
		}
	}
	got, err := f.GetCellValue("revenue", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "2024-02" {
		t.Fatalf("expected 2024-02 in revenue!A2, got %q", got)
	}
	tenant, err := f.GetCellValue("tenants", "B2")
	if err != nil {
		t.Fatalf("read tenant cell: %v", err)
	}
	if tenant != "Nguyen Van A" {
		t.Fatalf("expected tenant name, got %q", tenant)
	}
}
