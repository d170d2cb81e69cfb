package cache

import (
	"context"
	"time"
)

// ReportCache stores JSON-encodable report payloads under string keys.
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string, _ any) (bool, error) {
	return false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ any, _ time.Duration) error {
	return nil
}

func (NoopReportCache) DeletePrefix(_ context.Context, _ string) error {
	return nil
}
