// Package postgres is an optional Repository backend for deployments that
// prefer a database over local CSV files. Selected when DATABASE_URL is set.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"invoicebay/backend/internal/domain"
	"invoicebay/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS catalog_products (
			product_id INT PRIMARY KEY,
			product_name TEXT NOT NULL UNIQUE,
			product_tax_rate DOUBLE PRECISION NOT NULL,
			product_mrp DOUBLE PRECISION NOT NULL,
			product_default_discount DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			seq BIGSERIAL PRIMARY KEY,
			invoice_id TEXT NOT NULL UNIQUE,
			date TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL DEFAULT '',
			customer_phone TEXT NOT NULL DEFAULT '',
			customer_address TEXT NOT NULL DEFAULT '',
			products TEXT NOT NULL,
			quantities TEXT NOT NULL,
			mrps TEXT,
			discount_percentages TEXT,
			prices TEXT,
			subtotal DOUBLE PRECISION NOT NULL,
			tax DOUBLE PRECISION NOT NULL,
			total DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS company_settings (
			id INT PRIMARY KEY CHECK (id = 1),
			payload TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return s.seedCatalog(ctx)
}

func (s *Store) seedCatalog(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM catalog_products`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, p := range store.SeedCatalog() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO catalog_products (product_id, product_name, product_tax_rate, product_mrp, product_default_discount)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (product_id) DO NOTHING
		`, p.ID, p.Name, p.TaxRate, p.MRP, p.DefaultDiscount)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, product_tax_rate, product_mrp, product_default_discount
		FROM catalog_products
		ORDER BY product_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.TaxRate, &p.MRP, &p.DefaultDiscount); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT product_id, product_name, product_tax_rate, product_mrp, product_default_discount
		FROM catalog_products
		WHERE product_name = $1
	`, name).Scan(&p.ID, &p.Name, &p.TaxRate, &p.MRP, &p.DefaultDiscount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %q: %w", name, store.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) AppendInvoice(ctx context.Context, record domain.InvoiceRecord) error {
	products, err := json.Marshal(record.Products)
	if err != nil {
		return err
	}
	quantities, err := json.Marshal(record.Quantities)
	if err != nil {
		return err
	}
	var mrps, discounts, prices sql.NullString
	if len(record.MRPs) > 0 {
		mrps.String, mrps.Valid = marshalString(record.MRPs), true
		discounts.String, discounts.Valid = marshalString(record.DiscountPercents), true
		prices.String, prices.Valid = marshalString(record.Prices), true
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (invoice_id, date, customer_name, customer_email, customer_phone, customer_address,
			products, quantities, mrps, discount_percentages, prices, subtotal, tax, total)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, record.InvoiceID, record.Date, record.CustomerName, record.CustomerEmail, record.CustomerPhone,
		record.CustomerAddress, string(products), string(quantities), mrps, discounts, prices,
		record.Subtotal, record.Tax, record.Total)
	return err
}

func (s *Store) ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT invoice_id, date, customer_name, customer_email, customer_phone, customer_address,
			products, quantities, mrps, discount_percentages, prices, subtotal, tax, total
		FROM invoices
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.InvoiceRecord, 0, 64)
	for rows.Next() {
		record, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.InvoiceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT invoice_id, date, customer_name, customer_email, customer_phone, customer_address,
			products, quantities, mrps, discount_percentages, prices, subtotal, tax, total
		FROM invoices
		WHERE invoice_id = $1
	`, invoiceID)
	record, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %q: %w", invoiceID, store.ErrNotFound)
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) LoadSettings(ctx context.Context) (domain.CompanySettings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM company_settings WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := store.DefaultSettings()
		if err := s.SaveSettings(ctx, defaults); err != nil {
			return domain.CompanySettings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return domain.CompanySettings{}, err
	}

	var settings domain.CompanySettings
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return domain.CompanySettings{}, err
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.CompanySettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO company_settings (id, payload) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload
	`, string(payload))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (domain.InvoiceRecord, error) {
	var record domain.InvoiceRecord
	var products, quantities string
	var mrps, discounts, prices sql.NullString

	err := row.Scan(&record.InvoiceID, &record.Date, &record.CustomerName, &record.CustomerEmail,
		&record.CustomerPhone, &record.CustomerAddress, &products, &quantities, &mrps, &discounts,
		&prices, &record.Subtotal, &record.Tax, &record.Total)
	if err != nil {
		return domain.InvoiceRecord{}, err
	}

	if err := json.Unmarshal([]byte(products), &record.Products); err != nil {
		return domain.InvoiceRecord{}, fmt.Errorf("invoice %s products: %w", record.InvoiceID, err)
	}
	if err := json.Unmarshal([]byte(quantities), &record.Quantities); err != nil {
		return domain.InvoiceRecord{}, fmt.Errorf("invoice %s quantities: %w", record.InvoiceID, err)
	}
	if mrps.Valid {
		if err := json.Unmarshal([]byte(mrps.String), &record.MRPs); err != nil {
			return domain.InvoiceRecord{}, fmt.Errorf("invoice %s mrps: %w", record.InvoiceID, err)
		}
		if err := json.Unmarshal([]byte(discounts.String), &record.DiscountPercents); err != nil {
			return domain.InvoiceRecord{}, fmt.Errorf("invoice %s discounts: %w", record.InvoiceID, err)
		}
		if err := json.Unmarshal([]byte(prices.String), &record.Prices); err != nil {
			return domain.InvoiceRecord{}, fmt.Errorf("invoice %s prices: %w", record.InvoiceID, err)
		}
	}
	return record, nil
}

func marshalString(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
