package store

import "invoicebay/backend/internal/domain"

// SeedCatalog returns the fixed 21-row product catalog written when no
// catalog exists yet. Row order is the catalog display order.
func SeedCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Toilet Cleaner 5L", TaxRate: 0, MRP: 500, DefaultDiscount: 10},
		{ID: 2, Name: "Handwash 5L", TaxRate: 0, MRP: 500, DefaultDiscount: 50},
		{ID: 3, Name: "Glass Cleaner 5L", TaxRate: 0, MRP: 500, DefaultDiscount: 50},
		{ID: 4, Name: "Floor Cleaner 5L", TaxRate: 0, MRP: 500, DefaultDiscount: 50},
		{ID: 5, Name: "Shampoo 20ml Bottles", TaxRate: 0, MRP: 6, DefaultDiscount: 25},
		{ID: 6, Name: "Shampoo 30ml Bottles", TaxRate: 0, MRP: 8, DefaultDiscount: 25},
		{ID: 7, Name: "Shampoo 5L", TaxRate: 0, MRP: 800, DefaultDiscount: 50},
		{ID: 8, Name: "Shower Gel 20ml Bottles", TaxRate: 0, MRP: 6, DefaultDiscount: 25},
		{ID: 9, Name: "Shower Gel 30ml Bottles", TaxRate: 0, MRP: 8, DefaultDiscount: 50},
		{ID: 10, Name: "Shower Gel 5L", TaxRate: 0, MRP: 800, DefaultDiscount: 50},
		{ID: 11, Name: "Moisturiser 20ml Bottles", TaxRate: 0, MRP: 7, DefaultDiscount: 50},
		{ID: 12, Name: "Moisturiser 30ml Bottles", TaxRate: 0, MRP: 9, DefaultDiscount: 50},
		{ID: 13, Name: "Conditioner 20ml Bottles", TaxRate: 0, MRP: 7, DefaultDiscount: 50},
		{ID: 14, Name: "Conditioner 30ml Bottles", TaxRate: 0, MRP: 9, DefaultDiscount: 50},
		{ID: 15, Name: "Air Freshener 300ml", TaxRate: 0, MRP: 149, DefaultDiscount: 50},
		{ID: 16, Name: "Air Freshener 5L", TaxRate: 0, MRP: 2000, DefaultDiscount: 50},
		{ID: 17, Name: "Samples", TaxRate: 0, MRP: 0, DefaultDiscount: 50},
		{ID: 18, Name: "Liquid Soap Dispensers", TaxRate: 0, MRP: 400, DefaultDiscount: 50},
		{ID: 19, Name: "Soap 10gms", TaxRate: 0, MRP: 4.6, DefaultDiscount: 50},
		{ID: 20, Name: "Soap 15gms", TaxRate: 0, MRP: 5.4, DefaultDiscount: 50},
		{ID: 21, Name: "Soap 20gms", TaxRate: 0, MRP: 6, DefaultDiscount: 50},
	}
}

// DefaultSettings returns the company settings written on first run.
func DefaultSettings() domain.CompanySettings {
	return domain.CompanySettings{
		CompanyName:    "Inglo Imex Private Limited",
		CompanyAddress: "Sector 8 Dwarka, New Delhi 110077",
		CompanyPhone:   "(+91) 87006-01262",
		CompanyEmail:   "ingloimexsales@gmail.com",
		CompanyWebsite: "www.yourcompany.com",
		InvoiceTerms:   "Payment is due within 30 days of the order date.",
	}
}
