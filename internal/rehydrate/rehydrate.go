// Package rehydrate reconstructs line items from a stored invoice record so
// past invoices can be re-rendered.
//
// Two record shapes exist. New-schema records carry per-line mrp, discount
// and price arrays; those values are used verbatim, with only the tax rate
// re-resolved from the current catalog. Old-schema records carry product
// names and quantities only, so mrp, discount and price are re-derived from
// the current catalog defaults. If a default discount changed since the
// invoice was written, a regenerated old-schema invoice will not match its
// stored totals. That drift is a documented property of the record format,
// kept on purpose; it is not corrected by storing price history.
package rehydrate

import (
	"context"
	"fmt"

	"invoicebay/backend/internal/domain"
	"invoicebay/backend/internal/pricing"
	"invoicebay/backend/internal/store"
)

// Schema tags the two historical invoice record shapes.
type Schema int

const (
	SchemaOld Schema = iota
	SchemaNew
)

func (s Schema) String() string {
	if s == SchemaNew {
		return "new"
	}
	return "old"
}

// Catalog is the subset of the repository needed to resolve product names.
type Catalog interface {
	GetProductByName(ctx context.Context, name string) (*domain.Product, error)
}

// SchemaOf dispatches on the presence of per-line pricing detail.
func SchemaOf(record domain.InvoiceRecord) Schema {
	if len(record.MRPs) > 0 {
		return SchemaNew
	}
	return SchemaOld
}

// Lines rebuilds the ordered line items of a stored record. A product name
// no longer present in the catalog fails the whole rehydration.
func Lines(ctx context.Context, record domain.InvoiceRecord, catalog Catalog) ([]domain.LineItem, error) {
	if len(record.Products) != len(record.Quantities) {
		return nil, fmt.Errorf("invoice %s: products/quantities length mismatch: %w",
			record.InvoiceID, store.ErrValidation)
	}

	switch SchemaOf(record) {
	case SchemaNew:
		return newSchemaLines(ctx, record, catalog)
	default:
		return oldSchemaLines(ctx, record, catalog)
	}
}

func newSchemaLines(ctx context.Context, record domain.InvoiceRecord, catalog Catalog) ([]domain.LineItem, error) {
	n := len(record.Products)
	if len(record.MRPs) != n || len(record.DiscountPercents) != n || len(record.Prices) != n {
		return nil, fmt.Errorf("invoice %s: pricing array length mismatch: %w",
			record.InvoiceID, store.ErrValidation)
	}

	lines := make([]domain.LineItem, 0, n)
	for i, name := range record.Products {
		product, err := catalog.GetProductByName(ctx, name)
		if err != nil {
			return nil, err
		}
		qty := record.Quantities[i]
		price := record.Prices[i]
		amount, taxAmount := pricing.LineAmounts(price, qty, product.TaxRate)
		lines = append(lines, domain.LineItem{
			ProductID:       product.ID,
			ProductName:     name,
			MRP:             record.MRPs[i],
			DiscountPercent: record.DiscountPercents[i],
			UnitPrice:       price,
			Quantity:        qty,
			TaxRate:         product.TaxRate,
			TaxAmount:       taxAmount,
			Amount:          amount,
		})
	}
	return lines, nil
}

func oldSchemaLines(ctx context.Context, record domain.InvoiceRecord, catalog Catalog) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, 0, len(record.Products))
	for i, name := range record.Products {
		product, err := catalog.GetProductByName(ctx, name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pricing.NewLine(*product, product.DefaultDiscount, record.Quantities[i]))
	}
	return lines, nil
}
