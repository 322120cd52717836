package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoicebay/backend/internal/cache"
	"invoicebay/backend/internal/domain"
	"invoicebay/backend/internal/invoiceid"
	"invoicebay/backend/internal/pdf"
	"invoicebay/backend/internal/pricing"
	"invoicebay/backend/internal/rehydrate"
	"invoicebay/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// cartSession owns the ordered line items of one invoicing session. Each
// session is created explicitly and its cart is never shared with another.
type cartSession struct {
	lines []domain.LineItem
}

type Service struct {
	repo   store.Repository
	pdfs   cache.DocumentCache
	pdfTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*cartSession
}

func New(repo store.Repository, pdfs cache.DocumentCache, pdfTTL time.Duration) *Service {
	if pdfs == nil {
		pdfs = cache.NoopDocumentCache{}
	}
	if pdfTTL <= 0 {
		pdfTTL = time.Hour
	}
	return &Service{
		repo:     repo,
		pdfs:     pdfs,
		pdfTTL:   pdfTTL,
		sessions: make(map[string]*cartSession),
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateSession(_ context.Context) domain.SessionResponse {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &cartSession{}
	s.mu.Unlock()
	return domain.SessionResponse{SessionID: id}
}

func (s *Service) DiscardSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("session %q: %w", sessionID, store.ErrNotFound)
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Service) Cart(_ context.Context, sessionID string) (domain.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.CartView{}, fmt.Errorf("session %q: %w", sessionID, store.ErrNotFound)
	}
	return cartView(sessionID, session), nil
}

// AddLine appends a line built from the named catalog product. A nil
// discount falls back to the product's default; adding the same product
// twice yields two separate lines.
func (s *Service) AddLine(ctx context.Context, sessionID string, req domain.AddLineRequest) (domain.CartView, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return domain.CartView{}, fmt.Errorf("quantity must be at least 1: %w", store.ErrValidation)
	}
	if req.DiscountPercent != nil && (*req.DiscountPercent < 0 || *req.DiscountPercent > 100) {
		return domain.CartView{}, fmt.Errorf("discount must be within [0,100]: %w", store.ErrValidation)
	}

	product, err := s.repo.GetProductByName(ctx, req.ProductName)
	if err != nil {
		return domain.CartView{}, err
	}

	discount := product.DefaultDiscount
	if req.DiscountPercent != nil {
		discount = *req.DiscountPercent
	}
	line := pricing.NewLine(*product, discount, req.Quantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.CartView{}, fmt.Errorf("session %q: %w", sessionID, store.ErrNotFound)
	}
	session.lines = append(session.lines, line)
	return cartView(sessionID, session), nil
}

// RemoveLine drops the line at the given position. No state changes when
// the index is out of range.
func (s *Service) RemoveLine(_ context.Context, sessionID string, index int) (domain.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.CartView{}, fmt.Errorf("session %q: %w", sessionID, store.ErrNotFound)
	}
	if index < 0 || index >= len(session.lines) {
		return domain.CartView{}, fmt.Errorf("line %d of %d: %w", index, len(session.lines), store.ErrIndexRange)
	}
	session.lines = append(session.lines[:index], session.lines[index+1:]...)
	return cartView(sessionID, session), nil
}

// Finalize turns the session cart into a persisted invoice record. The cart
// is cleared only after the append succeeds; on any error the cart and the
// store are left untouched.
func (s *Service) Finalize(ctx context.Context, sessionID string, customer domain.Customer) (domain.FinalizeResponse, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return domain.FinalizeResponse{}, fmt.Errorf("customer name is required: %w", store.ErrValidation)
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return domain.FinalizeResponse{}, fmt.Errorf("session %q: %w", sessionID, store.ErrNotFound)
	}
	lines := make([]domain.LineItem, len(session.lines))
	copy(lines, session.lines)
	s.mu.Unlock()

	if len(lines) == 0 {
		return domain.FinalizeResponse{}, fmt.Errorf("cart is empty: %w", store.ErrValidation)
	}

	record := buildRecord(lines, customer, time.Now())
	if err := s.repo.AppendInvoice(ctx, record); err != nil {
		return domain.FinalizeResponse{}, err
	}

	s.mu.Lock()
	if session, ok := s.sessions[sessionID]; ok {
		session.lines = nil
	}
	s.mu.Unlock()

	// Render the document now so the first download is served from cache.
	// The invoice is already durable, so a render failure only logs.
	if settings, err := s.repo.LoadSettings(ctx); err != nil {
		log.Printf("[service] WARN: settings for invoice %s: %v", record.InvoiceID, err)
	} else if data, err := pdf.Render(record, lines, settings); err != nil {
		log.Printf("[service] WARN: render invoice %s: %v", record.InvoiceID, err)
	} else if err := s.pdfs.Set(ctx, record.InvoiceID, data, s.pdfTTL); err != nil {
		log.Printf("[service] WARN: pdf cache set %s: %v", record.InvoiceID, err)
	}

	log.Printf("[service] invoice %s saved for %s (total %.2f)", record.InvoiceID, record.CustomerName, record.Total)
	return domain.FinalizeResponse{
		Invoice:     record,
		PDFFileName: pdf.FileName(record.InvoiceID),
	}, nil
}

// buildRecord flattens the cart into the new-schema parallel-array form.
func buildRecord(lines []domain.LineItem, customer domain.Customer, now time.Time) domain.InvoiceRecord {
	record := domain.InvoiceRecord{
		InvoiceID:        invoiceid.At(now),
		Date:             now.Format(domain.DateLayout),
		CustomerName:     strings.TrimSpace(customer.Name),
		CustomerEmail:    strings.TrimSpace(customer.Email),
		CustomerPhone:    strings.TrimSpace(customer.Phone),
		CustomerAddress:  strings.TrimSpace(customer.Address),
		Products:         make([]string, 0, len(lines)),
		Quantities:       make([]int, 0, len(lines)),
		MRPs:             make([]float64, 0, len(lines)),
		DiscountPercents: make([]float64, 0, len(lines)),
		Prices:           make([]float64, 0, len(lines)),
	}
	for _, line := range lines {
		record.Products = append(record.Products, line.ProductName)
		record.Quantities = append(record.Quantities, line.Quantity)
		record.MRPs = append(record.MRPs, line.MRP)
		record.DiscountPercents = append(record.DiscountPercents, line.DiscountPercent)
		record.Prices = append(record.Prices, line.UnitPrice)
	}
	record.Subtotal, record.Tax, record.Total = pricing.InvoiceTotals(lines)
	return record
}

func (s *Service) ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error) {
	return s.repo.ListInvoices(ctx)
}

func (s *Service) GetInvoice(ctx context.Context, invoiceID string) (*domain.InvoiceRecord, error) {
	return s.repo.GetInvoiceByID(ctx, invoiceID)
}

// InvoicePDF renders (or serves from cache) the document for a stored
// invoice. Old-schema records are rehydrated from current catalog defaults,
// so regenerated totals for those can differ from the stored ones.
func (s *Service) InvoicePDF(ctx context.Context, invoiceID string) (string, []byte, error) {
	record, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return "", nil, err
	}

	fileName := pdf.FileName(record.InvoiceID)
	if data, ok, err := s.pdfs.Get(ctx, record.InvoiceID); err == nil && ok {
		return fileName, data, nil
	} else if err != nil {
		log.Printf("[service] WARN: pdf cache get %s: %v", record.InvoiceID, err)
	}

	lines, err := rehydrate.Lines(ctx, *record, s.repo)
	if err != nil {
		return "", nil, err
	}
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return "", nil, err
	}

	// Old-schema records have no stored totals detail per line; present the
	// recomputed sums so the table and the totals rows agree.
	view := *record
	if rehydrate.SchemaOf(*record) == rehydrate.SchemaOld {
		view.Subtotal, view.Tax, view.Total = pricing.InvoiceTotals(lines)
	}

	data, err := pdf.Render(view, lines, settings)
	if err != nil {
		return "", nil, err
	}
	if err := s.pdfs.Set(ctx, record.InvoiceID, data, s.pdfTTL); err != nil {
		log.Printf("[service] WARN: pdf cache set %s: %v", record.InvoiceID, err)
	}
	return fileName, data, nil
}

func (s *Service) Settings(ctx context.Context) (domain.CompanySettings, error) {
	return s.repo.LoadSettings(ctx)
}

func (s *Service) SaveSettings(ctx context.Context, settings domain.CompanySettings) (domain.CompanySettings, error) {
	settings.CompanyName = strings.TrimSpace(settings.CompanyName)
	if settings.CompanyName == "" {
		return domain.CompanySettings{}, fmt.Errorf("company name is required: %w", store.ErrValidation)
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return domain.CompanySettings{}, err
	}
	return settings, nil
}

func cartView(sessionID string, session *cartSession) domain.CartView {
	view := domain.CartView{
		SessionID: sessionID,
		Lines:     make([]domain.LineItem, len(session.lines)),
	}
	copy(view.Lines, session.lines)
	view.Subtotal, view.Tax, view.Total = pricing.InvoiceTotals(session.lines)
	return view
}
