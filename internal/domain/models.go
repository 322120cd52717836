package domain

// Product is an immutable catalog entry keyed by its name. The catalog is
// loaded once per session from the catalog file (or the Postgres catalog
// table) and never mutated by invoicing operations.
type Product struct {
	ID              int     `json:"product_id"`
	Name            string  `json:"product_name"`
	TaxRate         float64 `json:"product_tax_rate"`
	MRP             float64 `json:"product_mrp"`
	DefaultDiscount float64 `json:"product_default_discount"`
}

// LineItem is one product entry in a cart or invoice. UnitPrice, TaxAmount
// and Amount are derived: unit_price = mrp * (1 - discount/100),
// amount = unit_price * qty, tax_amount = amount * tax_rate.
type LineItem struct {
	ProductID       int     `json:"product_id"`
	ProductName     string  `json:"product_name"`
	MRP             float64 `json:"mrp"`
	DiscountPercent float64 `json:"discount_percent"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	TaxRate         float64 `json:"tax_rate"`
	TaxAmount       float64 `json:"tax_amount"`
	Amount          float64 `json:"amount"`
}

// InvoiceRecord is the durable, append-only invoice row. Line detail is
// flattened into parallel arrays. Records written before per-line pricing
// was stored carry only Products and Quantities ("old schema"); MRPs,
// DiscountPercents and Prices are empty for those rows.
type InvoiceRecord struct {
	InvoiceID        string    `json:"invoice_id"`
	Date             string    `json:"date"`
	CustomerName     string    `json:"customer_name"`
	CustomerEmail    string    `json:"customer_email"`
	CustomerPhone    string    `json:"customer_phone"`
	CustomerAddress  string    `json:"customer_address"`
	Products         []string  `json:"products"`
	Quantities       []int     `json:"quantities"`
	MRPs             []float64 `json:"mrps,omitempty"`
	DiscountPercents []float64 `json:"discount_percentages,omitempty"`
	Prices           []float64 `json:"prices,omitempty"`
	Subtotal         float64   `json:"subtotal"`
	Tax              float64   `json:"tax"`
	Total            float64   `json:"total"`
}

// Customer identifies the billed party on a finalized invoice. Only Name is
// required; the remaining fields are rendered as given.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CompanySettings is the process-wide configuration singleton, loaded at
// startup with load-or-default-then-persist semantics and mutated only via
// an explicit save.
type CompanySettings struct {
	CompanyName     string `json:"company_name"`
	CompanyAddress  string `json:"company_address"`
	CompanyPhone    string `json:"company_phone"`
	CompanyEmail    string `json:"company_email"`
	CompanyWebsite  string `json:"company_website"`
	CompanyLogoPath string `json:"company_logo_path,omitempty"`
	InvoiceTerms    string `json:"invoice_terms"`
}

type AddLineRequest struct {
	ProductName     string   `json:"product_name"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	Quantity        int      `json:"quantity"`
}

type CartView struct {
	SessionID string     `json:"session_id"`
	Lines     []LineItem `json:"lines"`
	Subtotal  float64    `json:"subtotal"`
	Tax       float64    `json:"tax"`
	Total     float64    `json:"total"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type FinalizeRequest struct {
	Customer Customer `json:"customer"`
}

type FinalizeResponse struct {
	Invoice     InvoiceRecord `json:"invoice"`
	PDFFileName string        `json:"pdf_file_name"`
}

type InvoiceListResponse struct {
	Invoices []InvoiceRecord `json:"invoices"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor is the authenticated operator attached to a request context.
type Actor struct {
	Username string
}

// DateLayout is the stored form of InvoiceRecord.Date.
const DateLayout = "2006-01-02 15:04:05"
