// Package csvfile persists the catalog and invoice collection as CSV files
// and the company settings as a JSON document. This is the default backend
// for single-operator deployments.
//
// AppendInvoice rewrites the whole invoice file (read all rows, append one,
// write all back). There is no cross-process locking, so two concurrent
// writers can lose an update; acceptable for a single-operator tool.
package csvfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"

	"invoicebay/backend/internal/domain"
	"invoicebay/backend/internal/store"
)

type Store struct {
	mu           sync.Mutex
	catalogPath  string
	invoicesPath string
	settingsPath string

	// Catalog is reference data, loaded once at construction.
	products      []domain.Product
	productByName map[string]domain.Product
}

// catalogRow mirrors the catalog file columns.
type catalogRow struct {
	ProductID              int     `csv:"product_id"`
	ProductName            string  `csv:"product_name"`
	ProductTaxRate         float64 `csv:"product_tax_rate"`
	ProductMRP             float64 `csv:"product_mrp"`
	ProductDefaultDiscount float64 `csv:"product_default_discount"`
}

// invoiceRow mirrors the invoice file columns. The five list-valued columns
// hold JSON arrays so they round-trip through a strict parser. Old-schema
// rows leave mrps, discount_percentages and prices empty.
type invoiceRow struct {
	InvoiceID        string  `csv:"invoice_id"`
	Date             string  `csv:"date"`
	CustomerName     string  `csv:"customer_name"`
	CustomerEmail    string  `csv:"customer_email"`
	CustomerPhone    string  `csv:"customer_phone"`
	CustomerAddress  string  `csv:"customer_address"`
	Products         string  `csv:"products"`
	Quantities       string  `csv:"quantities"`
	MRPs             string  `csv:"mrps"`
	DiscountPercents string  `csv:"discount_percentages"`
	Prices           string  `csv:"prices"`
	Subtotal         float64 `csv:"subtotal"`
	Tax              float64 `csv:"tax"`
	Total            float64 `csv:"total"`
}

// New opens (or initializes) the three backing files. A missing or
// unreadable catalog is recreated with the seed rows; the invoice file is
// created lazily on first append.
func New(catalogPath string, invoicesPath string, settingsPath string) (*Store, error) {
	s := &Store{
		catalogPath:  catalogPath,
		invoicesPath: invoicesPath,
		settingsPath: settingsPath,
	}

	products, err := s.loadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.products = products
	s.productByName = make(map[string]domain.Product, len(products))
	for _, p := range products {
		s.productByName[p.Name] = p
	}
	return s, nil
}

func (s *Store) loadCatalog() ([]domain.Product, error) {
	rows := []catalogRow{}
	data, err := os.ReadFile(s.catalogPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s.writeSeedCatalog()
	case err != nil:
		return nil, err
	}

	if err := gocsv.UnmarshalString(string(data), &rows); err != nil {
		log.Printf("[csvfile] WARN: catalog %s unreadable (%v), recreating from seed", s.catalogPath, err)
		return s.writeSeedCatalog()
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.Product{
			ID:              row.ProductID,
			Name:            row.ProductName,
			TaxRate:         row.ProductTaxRate,
			MRP:             row.ProductMRP,
			DefaultDiscount: row.ProductDefaultDiscount,
		})
	}
	return products, nil
}

func (s *Store) writeSeedCatalog() ([]domain.Product, error) {
	seed := store.SeedCatalog()
	rows := make([]catalogRow, 0, len(seed))
	for _, p := range seed {
		rows = append(rows, catalogRow{
			ProductID:              p.ID,
			ProductName:            p.Name,
			ProductTaxRate:         p.TaxRate,
			ProductMRP:             p.MRP,
			ProductDefaultDiscount: p.DefaultDiscount,
		})
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.catalogPath, []byte(out)); err != nil {
		return nil, err
	}
	log.Printf("[csvfile] seeded catalog with %d products at %s", len(seed), s.catalogPath)
	return seed, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *Store) GetProductByName(_ context.Context, name string) (*domain.Product, error) {
	p, ok := s.productByName[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("product %q: %w", name, store.ErrNotFound)
	}
	found := p
	return &found, nil
}

func (s *Store) AppendInvoice(_ context.Context, record domain.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readInvoiceRows()
	if err != nil {
		return fmt.Errorf("read invoice store: %w", err)
	}

	row, err := toInvoiceRow(record)
	if err != nil {
		return err
	}
	rows = append(rows, row)

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fmt.Errorf("encode invoice store: %w", err)
	}
	if err := writeFileAtomic(s.invoicesPath, []byte(out)); err != nil {
		return fmt.Errorf("write invoice store: %w", err)
	}
	return nil
}

func (s *Store) ListInvoices(_ context.Context) ([]domain.InvoiceRecord, error) {
	s.mu.Lock()
	rows, err := s.readInvoiceRows()
	s.mu.Unlock()
	if err != nil {
		log.Printf("[csvfile] WARN: invoice store %s unreadable (%v), treating as empty", s.invoicesPath, err)
		return []domain.InvoiceRecord{}, nil
	}

	records := make([]domain.InvoiceRecord, 0, len(rows))
	for _, row := range rows {
		record, err := fromInvoiceRow(row)
		if err != nil {
			return nil, fmt.Errorf("invoice %s: %w", row.InvoiceID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.InvoiceRecord, error) {
	records, err := s.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].InvoiceID == invoiceID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("invoice %q: %w", invoiceID, store.ErrNotFound)
}

func (s *Store) LoadSettings(_ context.Context) (domain.CompanySettings, error) {
	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[csvfile] WARN: settings %s unreadable (%v), recreating defaults", s.settingsPath, err)
		}
		return s.writeDefaultSettings()
	}

	var settings domain.CompanySettings
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Printf("[csvfile] WARN: settings %s corrupt (%v), recreating defaults", s.settingsPath, err)
		return s.writeDefaultSettings()
	}
	return settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.CompanySettings) error {
	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := writeFileAtomic(s.settingsPath, data); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (s *Store) writeDefaultSettings() (domain.CompanySettings, error) {
	defaults := store.DefaultSettings()
	if err := s.SaveSettings(context.Background(), defaults); err != nil {
		return domain.CompanySettings{}, err
	}
	return defaults, nil
}

func (s *Store) readInvoiceRows() ([]invoiceRow, error) {
	rows := []invoiceRow{}
	data, err := os.ReadFile(s.invoicesPath)
	if errors.Is(err, os.ErrNotExist) {
		return rows, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return rows, nil
	}
	if err := gocsv.UnmarshalString(string(data), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func toInvoiceRow(record domain.InvoiceRecord) (invoiceRow, error) {
	row := invoiceRow{
		InvoiceID:       record.InvoiceID,
		Date:            record.Date,
		CustomerName:    record.CustomerName,
		CustomerEmail:   record.CustomerEmail,
		CustomerPhone:   record.CustomerPhone,
		CustomerAddress: record.CustomerAddress,
		Subtotal:        record.Subtotal,
		Tax:             record.Tax,
		Total:           record.Total,
	}

	var err error
	if row.Products, err = encodeList(record.Products); err != nil {
		return invoiceRow{}, err
	}
	if row.Quantities, err = encodeList(record.Quantities); err != nil {
		return invoiceRow{}, err
	}
	if len(record.MRPs) > 0 {
		if row.MRPs, err = encodeList(record.MRPs); err != nil {
			return invoiceRow{}, err
		}
		if row.DiscountPercents, err = encodeList(record.DiscountPercents); err != nil {
			return invoiceRow{}, err
		}
		if row.Prices, err = encodeList(record.Prices); err != nil {
			return invoiceRow{}, err
		}
	}
	return row, nil
}

func fromInvoiceRow(row invoiceRow) (domain.InvoiceRecord, error) {
	record := domain.InvoiceRecord{
		InvoiceID:       row.InvoiceID,
		Date:            row.Date,
		CustomerName:    row.CustomerName,
		CustomerEmail:   row.CustomerEmail,
		CustomerPhone:   row.CustomerPhone,
		CustomerAddress: row.CustomerAddress,
		Subtotal:        row.Subtotal,
		Tax:             row.Tax,
		Total:           row.Total,
	}

	if err := decodeList(row.Products, &record.Products); err != nil {
		return domain.InvoiceRecord{}, fmt.Errorf("products column: %w", err)
	}
	if err := decodeList(row.Quantities, &record.Quantities); err != nil {
		return domain.InvoiceRecord{}, fmt.Errorf("quantities column: %w", err)
	}
	if err := decodeList(row.MRPs, &record.MRPs); err != nil {
		return domain.InvoiceRecord{}, fmt.Errorf("mrps column: %w", err)
	}
	if err := decodeList(row.DiscountPercents, &record.DiscountPercents); err != nil {
		return domain.InvoiceRecord{}, fmt.Errorf("discount_percentages column: %w", err)
	}
	if err := decodeList(row.Prices, &record.Prices); err != nil {
		return domain.InvoiceRecord{}, fmt.Errorf("prices column: %w", err)
	}
	return record, nil
}

// encodeList serializes a list-valued column as a JSON array. JSON is a
// strict, round-trippable format; nothing here evaluates expressions.
func encodeList(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string, out any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

// writeFileAtomic writes via a temp file and rename so a failed write never
// truncates the existing store.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
