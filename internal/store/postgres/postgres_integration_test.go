package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"invoicebay/backend/internal/domain"
)

func sampleInvoice(invoiceID string, productName string) domain.InvoiceRecord {
	return domain.InvoiceRecord{
		InvoiceID:        invoiceID,
		Date:             time.Now().Format(domain.DateLayout),
		CustomerName:     "Acme Traders",
		Products:         []string{productName},
		Quantities:       []int{2},
		MRPs:             []float64{500},
		DiscountPercents: []float64{10},
		Prices:           []float64{450},
		Subtotal:         900,
		Tax:              0,
		Total:            900,
	}
}

func TestInvoiceRoundTripAgainstPostgres(t *testing.T) {
	databaseURL := os.Getenv("INVOICEBAY_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set INVOICEBAY_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	invoiceID := fmt.Sprintf("INV-%s-it01", time.Now().Format("20060102150405"))
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM invoices WHERE invoice_id = $1`, invoiceID)
	})

	products, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("catalog not seeded")
	}

	product, err := s.GetProductByName(ctx, "Toilet Cleaner 5L")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	invoice := sampleInvoice(invoiceID, product.Name)
	if err := s.AppendInvoice(ctx, invoice); err != nil {
		t.Fatalf("append invoice: %v", err)
	}

	got, err := s.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if got.CustomerName != invoice.CustomerName || len(got.Products) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.MRPs) != 1 || got.MRPs[0] != 500 || got.Prices[0] != 450 {
		t.Fatalf("pricing columns mangled: %+v", got)
	}
}
