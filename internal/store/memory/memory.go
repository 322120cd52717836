// Package memory is an in-memory Repository used by tests and by dev mode
// when no data directory is configured.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"invoicebay/backend/internal/domain"
	"invoicebay/backend/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	invoices []domain.InvoiceRecord
	settings domain.CompanySettings
}

// NewSeeded returns a store preloaded with the seed catalog and default
// company settings, mirroring what the CSV backend creates on first run.
func NewSeeded() *Store {
	return &Store{
		products: store.SeedCatalog(),
		settings: store.DefaultSettings(),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *Store) GetProductByName(_ context.Context, name string) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Name == name {
			found := p
			return &found, nil
		}
	}
	return nil, fmt.Errorf("product %q: %w", name, store.ErrNotFound)
}

// SetDefaultDiscount rewrites one catalog row's default discount. Tests use
// it to simulate catalog drift between invoice creation and regeneration.
func (s *Store) SetDefaultDiscount(name string, discountPercent float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].Name == name {
			s.products[i].DefaultDiscount = discountPercent
			return nil
		}
	}
	return fmt.Errorf("product %q: %w", name, store.ErrNotFound)
}

func (s *Store) AppendInvoice(_ context.Context, record domain.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, record)
	return nil
}

func (s *Store) ListInvoices(_ context.Context) ([]domain.InvoiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.InvoiceRecord, len(s.invoices))
	copy(out, s.invoices)
	return out, nil
}

func (s *Store) GetInvoiceByID(_ context.Context, invoiceID string) (*domain.InvoiceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.invoices {
		if s.invoices[i].InvoiceID == invoiceID {
			found := s.invoices[i]
			return &found, nil
		}
	}
	return nil, fmt.Errorf("invoice %q: %w", invoiceID, store.ErrNotFound)
}

func (s *Store) LoadSettings(_ context.Context) (domain.CompanySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.CompanySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}
