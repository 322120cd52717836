package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"invoicebay/backend/internal/domain"
	"invoicebay/backend/internal/store"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(
		filepath.Join(dir, "products.csv"),
		filepath.Join(dir, "invoices.csv"),
		filepath.Join(dir, "settings.json"),
	)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, dir
}

func sampleRecord(id string) domain.InvoiceRecord {
	return domain.InvoiceRecord{
		InvoiceID:        id,
		Date:             "2026-03-14 09:26:53",
		CustomerName:     "Acme Traders",
		CustomerEmail:    "billing@acme.example",
		Products:         []string{"Toilet Cleaner 5L", "Handwash 5L"},
		Quantities:       []int{2, 3},
		MRPs:             []float64{500, 500},
		DiscountPercents: []float64{10, 50},
		Prices:           []float64{450, 250},
		Subtotal:         1650,
		Tax:              0,
		Total:            1650,
	}
}

func TestNewSeedsMissingCatalog(t *testing.T) {
	s, dir := newTestStore(t)

	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 21 {
		t.Fatalf("seeded catalog has %d products, want 21", len(products))
	}
	if products[0].Name != "Toilet Cleaner 5L" || products[0].DefaultDiscount != 10 {
		t.Fatalf("unexpected first catalog row: %+v", products[0])
	}

	data, err := os.ReadFile(filepath.Join(dir, "products.csv"))
	if err != nil {
		t.Fatalf("catalog file not written: %v", err)
	}
	if !strings.Contains(string(data), "product_name") {
		t.Fatalf("catalog file missing header: %q", string(data)[:80])
	}
}

func TestNewLoadsExistingCatalog(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "products.csv")
	csv := "product_id,product_name,product_tax_rate,product_mrp,product_default_discount\n" +
		"1,Custom Cleaner,0.05,100,20\n"
	if err := os.WriteFile(catalogPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	s, err := New(catalogPath, filepath.Join(dir, "invoices.csv"), filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	p, err := s.GetProductByName(context.Background(), "Custom Cleaner")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.TaxRate != 0.05 || p.MRP != 100 || p.DefaultDiscount != 20 {
		t.Fatalf("catalog row mangled: %+v", p)
	}
}

func TestGetProductByNameNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.GetProductByName(context.Background(), "No Such Product"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAppendInvoicePreservesOrderAndPriorRows(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := sampleRecord("INV-20260314092653-ab12")
	second := sampleRecord("INV-20260314092754-cd34")

	if err := s.AppendInvoice(ctx, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := s.AppendInvoice(ctx, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	records, err := s.ListInvoices(ctx)
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].InvoiceID != first.InvoiceID || records[1].InvoiceID != second.InvoiceID {
		t.Fatalf("insertion order not preserved: %s, %s", records[0].InvoiceID, records[1].InvoiceID)
	}
}

func TestInvoiceRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	want := sampleRecord("INV-20260314092653-ef56")
	if err := s.AppendInvoice(ctx, want); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.GetInvoiceByID(ctx, want.InvoiceID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if got.CustomerName != want.CustomerName || got.Date != want.Date {
		t.Fatalf("header fields mangled: %+v", got)
	}
	if len(got.Products) != 2 || got.Products[1] != "Handwash 5L" {
		t.Fatalf("products column mangled: %+v", got.Products)
	}
	if len(got.Quantities) != 2 || got.Quantities[0] != 2 {
		t.Fatalf("quantities column mangled: %+v", got.Quantities)
	}
	if len(got.MRPs) != 2 || got.MRPs[0] != 500 || got.Prices[1] != 250 {
		t.Fatalf("pricing columns mangled: %+v", got)
	}
	if got.Total != 1650 {
		t.Fatalf("total = %v, want 1650", got.Total)
	}
}

func TestOldSchemaRowRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	record := domain.InvoiceRecord{
		InvoiceID:    "INV-20250101120000-gh78",
		Date:         "2025-01-01 12:00:00",
		CustomerName: "Acme Traders",
		Products:     []string{"Handwash 5L"},
		Quantities:   []int{3},
		Subtotal:     750,
		Total:        750,
	}
	if err := s.AppendInvoice(ctx, record); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.GetInvoiceByID(ctx, record.InvoiceID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if len(got.MRPs) != 0 || len(got.DiscountPercents) != 0 || len(got.Prices) != 0 {
		t.Fatalf("old-schema row grew pricing arrays: %+v", got)
	}
}

func TestGetInvoiceByIDNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.GetInvoiceByID(context.Background(), "INV-00000000000000-zzzz"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListInvoicesMissingFileIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	records, err := s.ListInvoices(context.Background())
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestLoadSettingsWritesDefaultsOnFirstUse(t *testing.T) {
	s, dir := newTestStore(t)

	settings, err := s.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.CompanyName != "Inglo Imex Private Limited" {
		t.Fatalf("defaults not applied: %+v", settings)
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.json")); err != nil {
		t.Fatalf("defaults not persisted: %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	want := domain.CompanySettings{
		CompanyName:    "Northwind Supplies",
		CompanyAddress: "12 Dock Road",
		CompanyPhone:   "555-0100",
		InvoiceTerms:   "Net 15.",
	}
	if err := s.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	got, err := s.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got != want {
		t.Fatalf("settings round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadSettingsRecoversFromCorruptFile(t *testing.T) {
	s, dir := newTestStore(t)

	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt settings: %v", err)
	}

	settings, err := s.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.CompanyName != "Inglo Imex Private Limited" {
		t.Fatalf("expected defaults after corruption, got %+v", settings)
	}
}
