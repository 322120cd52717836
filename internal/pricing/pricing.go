// Package pricing holds the pure money math for carts and invoices.
// All values stay unrounded float64; rounding to two decimals happens
// only when a value is formatted for display or PDF output.
package pricing

import "invoicebay/backend/internal/domain"

// UnitPrice returns the discounted price for one unit. The discount range
// is not enforced here; callers validate user input before building lines.
func UnitPrice(mrp float64, discountPercent float64) float64 {
	return mrp * (1 - discountPercent/100)
}

// LineAmounts derives the extended amount and its tax for a line.
func LineAmounts(unitPrice float64, quantity int, taxRate float64) (amount float64, taxAmount float64) {
	amount = unitPrice * float64(quantity)
	taxAmount = amount * taxRate
	return amount, taxAmount
}

// InvoiceTotals sums a cart in line order. total is exactly subtotal+tax.
func InvoiceTotals(lines []domain.LineItem) (subtotal float64, tax float64, total float64) {
	for _, line := range lines {
		subtotal += line.Amount
		tax += line.TaxAmount
	}
	return subtotal, tax, subtotal + tax
}

// NewLine builds a fully derived line item from a catalog product and the
// caller-chosen discount and quantity.
func NewLine(product domain.Product, discountPercent float64, quantity int) domain.LineItem {
	price := UnitPrice(product.MRP, discountPercent)
	amount, taxAmount := LineAmounts(price, quantity, product.TaxRate)
	return domain.LineItem{
		ProductID:       product.ID,
		ProductName:     product.Name,
		MRP:             product.MRP,
		DiscountPercent: discountPercent,
		UnitPrice:       price,
		Quantity:        quantity,
		TaxRate:         product.TaxRate,
		TaxAmount:       taxAmount,
		Amount:          amount,
	}
}
