package cache

import (
	"context"
	"time"
)

// DocumentCache holds rendered invoice PDFs keyed by invoice id so repeat
// downloads of past invoices skip rehydration and layout.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type NoopDocumentCache struct{}

func (NoopDocumentCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopDocumentCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
