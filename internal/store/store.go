package store

import (
	"context"
	"errors"

	"invoicebay/backend/internal/domain"
)

var (
	// ErrNotFound covers catalog and invoice lookups that miss.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers rejected user input, e.g. a missing customer
	// name at finalize time. Nothing is persisted on this error.
	ErrValidation = errors.New("validation failed")
	// ErrIndexRange covers out-of-range cart line removal.
	ErrIndexRange = errors.New("index out of range")
)

// Repository is the persistence contract for the catalog, the invoice
// collection and the company settings singleton. Invoice records are
// append-only: no update or delete operation exists.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByName(ctx context.Context, name string) (*domain.Product, error)

	AppendInvoice(ctx context.Context, record domain.InvoiceRecord) error
	ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error)
	GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.InvoiceRecord, error)

	LoadSettings(ctx context.Context) (domain.CompanySettings, error)
	SaveSettings(ctx context.Context, settings domain.CompanySettings) error
}
