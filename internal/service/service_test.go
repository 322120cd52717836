package service

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"invoicebay/backend/internal/cache"
	"invoicebay/backend/internal/domain"
	"invoicebay/backend/internal/store"
	"invoicebay/backend/internal/store/memory"
)

func newTestService() (*Service, *memory.Store) {
	repo := memory.NewSeeded()
	return New(repo, cache.NoopDocumentCache{}, time.Minute), repo
}

func addLine(t *testing.T, svc *Service, sessionID string, req domain.AddLineRequest) domain.CartView {
	t.Helper()
	view, err := svc.AddLine(context.Background(), sessionID, req)
	if err != nil {
		t.Fatalf("add line %q: %v", req.ProductName, err)
	}
	return view
}

func TestAddLineUsesCatalogDefaults(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	view := addLine(t, svc, session.SessionID, domain.AddLineRequest{
		ProductName: "Toilet Cleaner 5L",
		Quantity:    2,
	})

	if len(view.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(view.Lines))
	}
	line := view.Lines[0]
	if line.DiscountPercent != 10 {
		t.Fatalf("discount = %v, want catalog default 10", line.DiscountPercent)
	}
	if math.Abs(line.UnitPrice-450) > 1e-9 {
		t.Fatalf("unit price = %v, want 450", line.UnitPrice)
	}
	if math.Abs(view.Subtotal-900) > 1e-9 || view.Tax != 0 || math.Abs(view.Total-900) > 1e-9 {
		t.Fatalf("totals = %v/%v/%v, want 900/0/900", view.Subtotal, view.Tax, view.Total)
	}
}

func TestAddLineExplicitDiscountOverridesDefault(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	discount := 25.0
	view := addLine(t, svc, session.SessionID, domain.AddLineRequest{
		ProductName:     "Toilet Cleaner 5L",
		DiscountPercent: &discount,
		Quantity:        1,
	})

	if got := view.Lines[0].UnitPrice; math.Abs(got-375) > 1e-9 {
		t.Fatalf("unit price = %v, want 375 at 25%%", got)
	}
}

func TestAddLineDefaultsQuantityToOne(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	view := addLine(t, svc, session.SessionID, domain.AddLineRequest{
		ProductName: "Handwash 5L",
	})

	if view.Lines[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", view.Lines[0].Quantity)
	}
}

func TestAddLineRejectsBadInput(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	badDiscount := 120.0
	cases := []struct {
		name    string
		req     domain.AddLineRequest
		wantErr error
	}{
		{"negative quantity", domain.AddLineRequest{ProductName: "Handwash 5L", Quantity: -1}, store.ErrValidation},
		{"discount above 100", domain.AddLineRequest{ProductName: "Handwash 5L", DiscountPercent: &badDiscount, Quantity: 1}, store.ErrValidation},
		{"unknown product", domain.AddLineRequest{ProductName: "No Such Product", Quantity: 1}, store.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddLine(context.Background(), session.SessionID, tc.req); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAddLineUnknownSession(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddLine(context.Background(), "nope", domain.AddLineRequest{ProductName: "Handwash 5L", Quantity: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddLineSameProductTwiceKeepsSeparateLines(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	addLine(t, svc, session.SessionID, domain.AddLineRequest{ProductName: "Handwash 5L", Quantity: 1})
	view := addLine(t, svc, session.SessionID, domain.AddLineRequest{ProductName: "Handwash 5L", Quantity: 2})

	if len(view.Lines) != 2 {
		t.Fatalf("expected 2 separate lines, got %d", len(view.Lines))
	}
}

func TestRemoveLine(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	addLine(t, svc, session.SessionID, domain.AddLineRequest{ProductName: "Handwash 5L", Quantity: 1})
	addLine(t, svc, session.SessionID, domain.AddLineRequest{ProductName: "Toilet Cleaner 5L", Quantity: 1})

	view, err := svc.RemoveLine(context.Background(), session.SessionID, 0)
	if err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].ProductName != "Toilet Cleaner 5L" {
		t.Fatalf("wrong line removed: %+v", view.Lines)
	}

	if _, err := svc.RemoveLine(context.Background(), session.SessionID, 5); !errors.Is(err, store.ErrIndexRange) {
		t.Fatalf("err = %v, want ErrIndexRange", err)
	}
}

func TestRemoveLineFromEmptyCart(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	if _, err := svc.RemoveLine(context.Background(), session.SessionID, 0); !errors.Is(err, store.ErrIndexRange) {
		t.Fatalf("err = %v, want ErrIndexRange", err)
	}
}

func TestFinalizePersistsAndClearsCart(t *testing.T) {
	svc, repo := newTestService()
	session := svc.CreateSession(context.Background())

	addLine(t, svc, session.SessionID, domain.AddLineRequest{ProductName: "Toilet Cleaner 5L", Quantity: 2})

	resp, err := svc.Finalize(context.Background(), session.SessionID, domain.Customer{
		Name:  "Acme Traders",
		Email: "billing@acme.example",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	record := resp.Invoice
	if record.CustomerName != "Acme Traders" {
		t.Fatalf("customer = %q", record.CustomerName)
	}
	if len(record.Products) != 1 || len(record.MRPs) != 1 || len(record.Prices) != 1 {
		t.Fatalf("record arrays not flattened: %+v", record)
	}
	if record.MRPs[0] != 500 || record.DiscountPercents[0] != 10 || record.Prices[0] != 450 {
		t.Fatalf("per-line pricing not stored: %+v", record)
	}
	if math.Abs(record.Subtotal-900) > 1e-9 || record.Total != record.Subtotal+record.Tax {
		t.Fatalf("totals = %v/%v/%v", record.Subtotal, record.Tax, record.Total)
	}
	if resp.PDFFileName != "Invoice_"+record.InvoiceID+".pdf" {
		t.Fatalf("pdf file name = %q", resp.PDFFileName)
	}

	stored, err := repo.ListInvoices(context.Background())
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(stored) != 1 || stored[0].InvoiceID != record.InvoiceID {
		t.Fatalf("record not appended: %+v", stored)
	}

	view, err := svc.Cart(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("cart after finalize: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("cart not cleared after finalize: %d lines", len(view.Lines))
	}
}

func TestFinalizeRejectsMissingName(t *testing.T) {
	svc, repo := newTestService()
	session := svc.CreateSession(context.Background())
	addLine(t, svc, session.SessionID, domain.AddLineRequest{ProductName: "Handwash 5L", Quantity: 1})

	_, err := svc.Finalize(context.Background(), session.SessionID, domain.Customer{Name: "   "})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	// The failed attempt must leave both the cart and the store untouched.
	view, err := svc.Cart(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("cart changed after rejected finalize: %d lines", len(view.Lines))
	}
	stored, _ := repo.ListInvoices(context.Background())
	if len(stored) != 0 {
		t.Fatalf("store changed after rejected finalize: %d records", len(stored))
	}
}

func TestFinalizeRejectsEmptyCart(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	_, err := svc.Finalize(context.Background(), session.SessionID, domain.Customer{Name: "Acme Traders"})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDiscardSession(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())

	if err := svc.DiscardSession(context.Background(), session.SessionID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := svc.Cart(context.Background(), session.SessionID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after discard", err)
	}
	if err := svc.DiscardSession(context.Background(), session.SessionID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second discard err = %v, want ErrNotFound", err)
	}
}

func TestInvoicePDFRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	session := svc.CreateSession(context.Background())
	addLine(t, svc, session.SessionID, domain.AddLineRequest{ProductName: "Toilet Cleaner 5L", Quantity: 2})

	resp, err := svc.Finalize(context.Background(), session.SessionID, domain.Customer{Name: "Acme Traders"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	fileName, data, err := svc.InvoicePDF(context.Background(), resp.Invoice.InvoiceID)
	if err != nil {
		t.Fatalf("invoice pdf: %v", err)
	}
	if fileName != resp.PDFFileName {
		t.Fatalf("file name = %q, want %q", fileName, resp.PDFFileName)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("document does not start with %%PDF header")
	}
}

func TestInvoicePDFOldSchemaUsesCurrentDefaults(t *testing.T) {
	svc, repo := newTestService()

	record := domain.InvoiceRecord{
		InvoiceID:    "INV-20250101120000-mn34",
		Date:         "2025-01-01 12:00:00",
		CustomerName: "Acme Traders",
		Products:     []string{"Handwash 5L"},
		Quantities:   []int{3},
		Subtotal:     750,
		Total:        750,
	}
	if err := repo.AppendInvoice(context.Background(), record); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.SetDefaultDiscount("Handwash 5L", 20); err != nil {
		t.Fatalf("set discount: %v", err)
	}

	_, data, err := svc.InvoicePDF(context.Background(), record.InvoiceID)
	if err != nil {
		t.Fatalf("invoice pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty document")
	}
}

func TestInvoicePDFUnknownInvoice(t *testing.T) {
	svc, _ := newTestService()

	if _, _, err := svc.InvoicePDF(context.Background(), "INV-00000000000000-zzzz"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveSettingsRequiresCompanyName(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.SaveSettings(context.Background(), domain.CompanySettings{}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	saved, err := svc.SaveSettings(context.Background(), domain.CompanySettings{
		CompanyName:    "  Northwind Supplies  ",
		CompanyAddress: "12 Dock Road",
	})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if saved.CompanyName != "Northwind Supplies" {
		t.Fatalf("company name not trimmed: %q", saved.CompanyName)
	}

	loaded, err := svc.Settings(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if loaded.CompanyAddress != "12 Dock Road" {
		t.Fatalf("settings not persisted: %+v", loaded)
	}
}

func TestActorContext(t *testing.T) {
	ctx := WithActor(context.Background(), domain.Actor{Username: "admin"})
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Username != "admin" {
		t.Fatalf("actor = %+v ok=%v", actor, ok)
	}
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatalf("expected no actor on a bare context")
	}
}
