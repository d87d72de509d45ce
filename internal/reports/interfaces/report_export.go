package interfaces

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	reportapp "rentroll-cloud/internal/reports/application"
)

// BuildReportXLSX renders the owner report workbook: a summary sheet
// plus revenue, occupancy and tenant sheets.
func BuildReportXLSX(stats *reportapp.RevenueStats, revenue []reportapp.MonthRevenue, occupancy []reportapp.HouseOccupancy, tenants []reportapp.TenantRow) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	revenueSheet := "revenue"
	occupancySheet := "occupancy"
	tenantSheet := "tenants"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(revenueSheet)
	f.NewSheet(occupancySheet)
	f.NewSheet(tenantSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Owner Report")
	if stats != nil {
		_ = f.SetCellValue(summarySheet, "A3", "Total Revenue")
		_ = f.SetCellValue(summarySheet, "B3", stats.TotalRevenue)
		_ = f.SetCellValue(summarySheet, "A4", "Paid Invoices")
		_ = f.SetCellValue(summarySheet, "B4", stats.PaidCount)
		_ = f.SetCellValue(summarySheet, "A5", "Pending Invoices")
		_ = f.SetCellValue(summarySheet, "B5", stats.PendingCount)
		_ = f.SetCellValue(summarySheet, "A6", "Pending Amount")
		_ = f.SetCellValue(summarySheet, "B6", stats.PendingAmount)
		_ = f.SetCellValue(summarySheet, "A7", "Average Monthly Revenue")
		_ = f.SetCellValue(summarySheet, "B7", stats.AverageMonthlyRevenue)
	}

	_ = f.SetCellValue(revenueSheet, "A1", "Month")
	_ = f.SetCellValue(revenueSheet, "B1", "Revenue")
	_ = f.SetCellValue(revenueSheet, "C1", "Invoices")
	for i, row := range revenue {
		n := i + 2
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("A%d", n), row.Month)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("B%d", n), row.Revenue)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("C%d", n), row.InvoiceCount)
	}

	_ = f.SetCellValue(occupancySheet, "A1", "House")
	_ = f.SetCellValue(occupancySheet, "B1", "Rooms")
	_ = f.SetCellValue(occupancySheet, "C1", "Occupied")
	_ = f.SetCellValue(occupancySheet, "D1", "Rate")
	for i, row := range occupancy {
		n := i + 2
		_ = f.SetCellValue(occupancySheet, fmt.Sprintf("A%d", n), row.HouseName)
		_ = f.SetCellValue(occupancySheet, fmt.Sprintf("B%d", n), row.TotalRooms)
		_ = f.SetCellValue(occupancySheet, fmt.Sprintf("C%d", n), row.OccupiedRooms)
		_ = f.SetCellValue(occupancySheet, fmt.Sprintf("D%d", n), row.OccupancyRate)
	}

	_ = f.SetCellValue(tenantSheet, "A1", "Contract")
	_ = f.SetCellValue(tenantSheet, "B1", "Tenant")
	_ = f.SetCellValue(tenantSheet, "C1", "Phone")
	_ = f.SetCellValue(tenantSheet, "D1", "Room")
	_ = f.SetCellValue(tenantSheet, "E1", "House")
	_ = f.SetCellValue(tenantSheet, "F1", "Monthly Rent")
	_ = f.SetCellValue(tenantSheet, "G1", "Since")
	for i, row := range tenants {
		n := i + 2
		_ = f.SetCellValue(tenantSheet, fmt.Sprintf("A%d", n), row.RRID)
		_ = f.SetCellValue(tenantSheet, fmt.Sprintf("B%d", n), row.TenantName)
		_ = f.SetCellValue(tenantSheet, fmt.Sprintf("C%d", n), row.TenantPhone)
		_ = f.SetCellValue(tenantSheet, fmt.Sprintf("D%d", n), row.RoomName)
		_ = f.SetCellValue(tenantSheet, fmt.Sprintf("E%d", n), row.HouseName)
		_ = f.SetCellValue(tenantSheet, fmt.Sprintf("F%d", n), row.MonthlyRent)
		_ = f.SetCellValue(tenantSheet, fmt.Sprintf("G%d", n), row.StartDate)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
