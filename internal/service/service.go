package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"masapos/backend/internal/cache"
	"masapos/backend/internal/domain"
	"masapos/backend/internal/salesession"
	"masapos/backend/internal/store"
	"masapos/backend/pkg/logger"
)

var (
	ErrInvalidFilter = errors.New("invalid date filter")
	ErrForbidden     = errors.New("admin role required")
	ErrPartialDelete = errors.New("some records could not be deleted")
	ErrDeleteFailed  = errors.New("no records could be deleted")
)

const (
	reportKeyPrefix          = "pos:sales-report:"
	defaultDeleteConcurrency = 4
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	MaxGap            time.Duration
	ClosingMinItems   int
	DeleteConcurrency int
	CacheTTL          time.Duration
}

type Service struct {
	repo        store.SalesRepository
	cache       cache.ReportCache
	cacheTTL    time.Duration
	segmenter   salesession.Segmenter
	policy      string
	deleteLimit int
}

// New wires the engine to a record source. ClosingMinItems of 0 turns the
// closing-sale rule off and leaves only the gap rule.
func New(repo store.SalesRepository, reportCache cache.ReportCache, opts Options) *Service {
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}
	if opts.MaxGap <= 0 {
		opts.MaxGap = salesession.DefaultMaxGap
	}
	if opts.ClosingMinItems < 0 {
		opts.ClosingMinItems = salesession.DefaultClosingMinItems
	}
	if opts.DeleteConcurrency < 1 {
		opts.DeleteConcurrency = defaultDeleteConcurrency
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 20 * time.Second
	}

	var closing salesession.ClosingPolicy = salesession.NeverClosing
	if opts.ClosingMinItems > 0 {
		closing = salesession.MinItemsClosing(opts.ClosingMinItems)
	}

	return &Service{
		repo:        repo,
		cache:       reportCache,
		cacheTTL:    opts.CacheTTL,
		segmenter:   salesession.Segmenter{MaxGap: opts.MaxGap, Closing: closing},
		policy:      fmt.Sprintf("gap=%s;closing=%d", opts.MaxGap, opts.ClosingMinItems),
		deleteLimit: opts.DeleteConcurrency,
	}
}

func (s *Service) Sessions(ctx context.Context, filter domain.ReportFilter) (domain.SessionListResponse, error) {
	bounds, err := parseFilter(filter)
	if err != nil {
		return domain.SessionListResponse{}, err
	}

	var resp domain.SessionListResponse
	key := s.cacheKey("sessions", bounds)
	if s.cached(ctx, key, &resp) {
		return resp, nil
	}

	records, err := s.filteredRecords(ctx, bounds)
	if err != nil {
		return domain.SessionListResponse{}, err
	}
	entries := s.segmenter.Reconstruct(records)

	grouped := 0
	for _, entry := range entries {
		if entry.IsGrouped {
			grouped++
		}
	}
	resp = domain.SessionListResponse{
		Filter:  bounds.filter(),
		Entries: entries,
		Grouped: grouped,
		Records: len(records),
	}
	s.store(ctx, key, resp)
	return resp, nil
}

func (s *Service) ProductReport(ctx context.Context, filter domain.ReportFilter) (domain.ProductReportResponse, error) {
	bounds, err := parseFilter(filter)
	if err != nil {
		return domain.ProductReportResponse{}, err
	}

	var resp domain.ProductReportResponse
	key := s.cacheKey("products", bounds)
	if s.cached(ctx, key, &resp) {
		return resp, nil
	}

	entries, err := s.entries(ctx, bounds)
	if err != nil {
		return domain.ProductReportResponse{}, err
	}
	resp = domain.ProductReportResponse{
		Filter: bounds.filter(),
		Stats:  salesession.ComputeProductStats(entries),
	}
	s.store(ctx, key, resp)
	return resp, nil
}

func (s *Service) StaffReport(ctx context.Context, filter domain.ReportFilter) (domain.StaffReportResponse, error) {
	bounds, err := parseFilter(filter)
	if err != nil {
		return domain.StaffReportResponse{}, err
	}

	var resp domain.StaffReportResponse
	key := s.cacheKey("staff", bounds)
	if s.cached(ctx, key, &resp) {
		return resp, nil
	}

	entries, err := s.entries(ctx, bounds)
	if err != nil {
		return domain.StaffReportResponse{}, err
	}
	resp = domain.StaffReportResponse{
		Filter: bounds.filter(),
		Staff:  salesession.ComputeStaffStats(entries),
	}
	s.store(ctx, key, resp)
	return resp, nil
}

// SaleDetails expands one stored record. Legacy rows come back with parsed lines.
func (s *Service) SaleDetails(ctx context.Context, id string) (domain.SaleDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.SaleDetails{}, store.ErrNotFound
	}
	record, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.SaleDetails{}, err
	}
	items := salesession.LineItems(*record)
	if items == nil {
		items = []domain.LineItem{}
	}
	return domain.SaleDetails{Sale: *record, Items: items}, nil
}

// DeleteEntry deletes a reconstructed entry. The id is resolved against the same filtered
// reconstruction the caller listed, so a grouped entry cascades only to the records it
// showed and any other id deletes exactly that record.
func (s *Service) DeleteEntry(ctx context.Context, id string, filter domain.ReportFilter) (domain.DeleteResult, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.DeleteResult{}, ErrForbidden
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.DeleteResult{}, store.ErrNotFound
	}
	bounds, err := parseFilter(filter)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	records, err := s.filteredRecords(ctx, bounds)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	ids, err := s.resolveEntry(records, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	result, err := s.DeleteRecords(ctx, ids)
	result.EntryID = id
	return result, err
}

func (s *Service) resolveEntry(records []domain.SaleRecord, id string) ([]string, error) {
	for _, entry := range s.segmenter.Reconstruct(records) {
		if entry.ID == id {
			return entry.RecordIDs(), nil
		}
	}
	for _, record := range records {
		if record.ID == id {
			return []string{id}, nil
		}
	}
	return nil, store.ErrNotFound
}

// DeleteRecords deletes every id concurrently. Failures do not stop the other
// deletes and nothing is rolled back.
func (s *Service) DeleteRecords(ctx context.Context, ids []string) (domain.DeleteResult, error) {
	ids = uniqueIDs(ids)
	result := domain.DeleteResult{
		Requested: ids,
		Deleted:   []string{},
	}
	if len(ids) == 0 {
		result.Status = domain.DeleteStatusFailed
		return result, fmt.Errorf("%w: nothing requested", ErrDeleteFailed)
	}

	errs := make([]error, len(ids))
	var group errgroup.Group
	group.SetLimit(s.deleteLimit)
	for i, id := range ids {
		group.Go(func() error {
			errs[i] = s.repo.DeleteSale(ctx, id)
			return nil
		})
	}
	_ = group.Wait()

	for i, id := range ids {
		if errs[i] != nil {
			logger.Log.Warn().Err(errs[i]).Str("record_id", id).Msg("sale record delete failed")
			result.Failed = append(result.Failed, domain.DeleteFailure{ID: id, Error: errs[i].Error()})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}

	if len(result.Deleted) > 0 {
		if err := s.cache.DeletePrefix(ctx, reportKeyPrefix); err != nil {
			logger.Log.Warn().Err(err).Msg("report cache invalidation failed")
		}
	}

	switch {
	case len(result.Failed) == 0:
		result.Status = domain.DeleteStatusDeleted
		return result, nil
	case len(result.Deleted) == 0:
		result.Status = domain.DeleteStatusFailed
		return result, fmt.Errorf("%w: %d of %d records", ErrDeleteFailed, len(result.Failed), len(ids))
	default:
		result.Status = domain.DeleteStatusPartial
		return result, fmt.Errorf("%w: %d of %d records", ErrPartialDelete, len(result.Failed), len(ids))
	}
}

func (s *Service) entries(ctx context.Context, bounds dateBounds) ([]domain.SaleEntry, error) {
	records, err := s.filteredRecords(ctx, bounds)
	if err != nil {
		return nil, err
	}
	return s.segmenter.Reconstruct(records), nil
}

// filteredRecords applies the date filter before reconstruction so a session is
// never split by the filter window.
func (s *Service) filteredRecords(ctx context.Context, bounds dateBounds) ([]domain.SaleRecord, error) {
	records, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	if bounds.open() {
		return records, nil
	}

	kept := make([]domain.SaleRecord, 0, len(records))
	for _, record := range records {
		if bounds.contains(record.SaleDate) {
			kept = append(kept, record)
		}
	}
	return kept, nil
}

func (s *Service) cacheKey(kind string, bounds dateBounds) string {
	filter := bounds.filter()
	hash := sha1.Sum([]byte(strings.Join([]string{filter.From, filter.To, s.policy}, "|")))
	return reportKeyPrefix + kind + ":" + hex.EncodeToString(hash[:])
}

func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
