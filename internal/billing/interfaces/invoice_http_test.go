package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"rentroll-cloud/internal/auth"
	billingapp "rentroll-cloud/internal/billing/application"
	billing "rentroll-cloud/internal/billing/domain"
	"rentroll-cloud/internal/billing/infrastructure/memory"
)

func newTestHandler(t *testing.T) *InvoiceHandler {
	t.Helper()
	invoices := memory.NewInvoiceRepository()
	contracts := memory.NewContractReader()
	contract := billing.Contract{
		RRID:                  "rr-1",
		InitialElectricityNum: 100,
		ElectricityUnitPrice:  3500,
		MonthlyRent:           2500000,
		WaterPrice:            80000,
	}
	contracts.Put(contract, "owner-1", true)
	invoices.BindContractOwner("rr-1", "owner-1")
	svc, err := billingapp.NewInvoiceService(invoices, contracts, log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewInvoiceHandler(svc, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestInvoiceHandler_CreateAndReadings(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/invoices", `{
		"rr_id": "rr-1",
		"current_electricity_num": 220,
		"due_date": "2024-01-05"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created["electricity_num"].(float64) != 120 {
		t.Fatalf("expected usage 120, got %v", created["electricity_num"])
	}
	if created["electricity_price"].(float64) != 420000 {
		t.Fatalf("expected cost 420000, got %v", created["electricity_price"])
	}

	id := created["invoice_id"].(string)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id+"/readings", nil)
	readingsRec := httptest.NewRecorder()
	handler.ServeHTTP(readingsRec, req)
	if readingsRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", readingsRec.Code)
	}
	var readings map[string]any
	if err := json.Unmarshal(readingsRec.Body.Bytes(), &readings); err != nil {
		t.Fatalf("decode readings: %v", err)
	}
	if readings["previous_electricity_num"].(float64) != 100 || readings["current_electricity_num"].(float64) != 220 {
		t.Fatalf("expected (100, 220), got %v", readings)
	}
	if readings["unverified"].(bool) {
		t.Fatalf("expected verified readings")
	}
}

func TestInvoiceHandler_RejectsLowReading(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/invoices", `{
		"rr_id": "rr-1",
		"current_electricity_num": 90,
		"due_date": "2024-01-05"
	}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvoiceHandler_UnknownInvoice(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/inv-404", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestInvoiceHandler_PayDefaultsPaymentDate(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/invoices", `{
		"rr_id": "rr-1",
		"due_date": "2024-01-05"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created["invoice_id"].(string)

	payRec := postJSON(t, handler, "/api/v1/invoices/"+id+"/pay", `{}`)
	if payRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", payRec.Code, payRec.Body.String())
	}
	var paid map[string]any
	_ = json.Unmarshal(payRec.Body.Bytes(), &paid)
	if paid["is_paid"] != true {
		t.Fatalf("expected paid invoice, got %v", paid)
	}
	if paid["payment_date"] == nil || paid["payment_date"] == "" {
		t.Fatalf("expected defaulted payment_date, got %v", paid["payment_date"])
	}
}

func TestInvoiceHandler_PDFExport(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/v1/invoices", `{
		"rr_id": "rr-1",
		"current_electricity_num": 220,
		"due_date": "2024-01-05"
	}`)
	var created map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created["invoice_id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id+"/export.pdf", nil)
	pdfRec := httptest.NewRecorder()
	handler.ServeHTTP(pdfRec, req)
	if pdfRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", pdfRec.Code)
	}
	if ct := pdfRec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected pdf content type, got %s", ct)
	}
	if !bytes.HasPrefix(pdfRec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF payload")
	}
}

func TestInvoiceHandler_AdminListSpansOwners(t *testing.T) {
	invoices := memory.NewInvoiceRepository()
	contracts := memory.NewContractReader()
	contracts.Put(billing.Contract{RRID: "rr-a", ElectricityUnitPrice: 3500}, "owner-a", true)
	contracts.Put(billing.Contract{RRID: "rr-b", ElectricityUnitPrice: 3500}, "owner-b", true)
	invoices.BindContractOwner("rr-a", "owner-a")
	invoices.BindContractOwner("rr-b", "owner-b")
	svc, err := billingapp.NewInvoiceService(invoices, contracts, log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewInvoiceHandler(svc, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	due := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	for _, rrID := range []string{"rr-a", "rr-b"} {
		if _, err := svc.Create(context.Background(), billingapp.CreateInvoiceInput{RRID: rrID, DueDate: due}); err != nil {
			t.Fatalf("create invoice for %s: %v", rrID, err)
		}
	}

	listAs := func(ctx context.Context, query string) []map[string]any {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices"+query, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var items []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return items
	}

	adminCtx := auth.WithIdentity(context.Background(), "admin-1", auth.RoleAdmin, "root")
	if items := listAs(adminCtx, ""); len(items) != 2 {
		t.Fatalf("admin expected all 2 invoices, got %d", len(items))
	}
	if items := listAs(adminCtx, "?owner_id=owner-a"); len(items) != 1 || items[0]["rr_id"] != "rr-a" {
		t.Fatalf("admin scoped to owner-a expected 1 invoice, got %v", items)
	}

	ownerCtx := auth.WithIdentity(context.Background(), "owner-a", auth.RoleOwner, "user-a")
	if items := listAs(ownerCtx, "?owner_id=owner-b"); len(items) != 1 || items[0]["rr_id"] != "rr-a" {
		t.Fatalf("owner must stay pinned to own invoices, got %v", items)
	}
}

func TestWriteInvoicesCSV(t *testing.T) {
	var buf bytes.Buffer
	list := []billing.Invoice{{
		InvoiceID:        "inv-1",
		RRID:             "rr-1",
		Price:            2500000,
		ElectricityPrice: 420000,
		ElectricityNum:   120,
	}}
	if err := WriteInvoicesCSV(&buf, list); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "invoice_id,rr_id") {
		t.Fatalf("missing header: %s", out)
	}
	if !strings.Contains(out, "inv-1,rr-1,2500000") {
		t.Fatalf("missing row: %s", out)
	}
}
