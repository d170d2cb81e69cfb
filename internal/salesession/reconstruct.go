package salesession

import (
	"slices"
	"strings"

	"masapos/backend/internal/domain"
)

type tableKey struct {
	name      string
	tableType string
}

// ReconstructSessions runs the default policy: 30 minute gap, closing sale at 2+ items.
func ReconstructSessions(records []domain.SaleRecord) []domain.SaleEntry {
	return DefaultSegmenter().Reconstruct(records)
}

// Reconstruct partitions records per table, segments and aggregates every table, then
// merges the result with records that cannot be sessioned and orders everything newest
// first. Equal timestamps keep their input order.
func (s Segmenter) Reconstruct(records []domain.SaleRecord) []domain.SaleEntry {
	tables := newOrderedMap[tableKey, []domain.SaleRecord]()
	loose := make([]domain.SaleEntry, 0)

	for _, record := range records {
		if !sessionable(record) {
			loose = append(loose, domain.SaleEntry{SaleRecord: record})
			continue
		}
		key := tableKey{
			name:      strings.TrimSpace(record.TableName),
			tableType: strings.TrimSpace(record.TableType),
		}
		bucket := tables.getOrInsert(key, func() []domain.SaleRecord { return nil })
		*bucket = append(*bucket, record)
	}

	entries := make([]domain.SaleEntry, 0, len(records))
	tables.each(func(_ tableKey, bucket *[]domain.SaleRecord) {
		for _, session := range s.Segment(*bucket) {
			entries = append(entries, Aggregate(session))
		}
	})
	entries = append(entries, loose...)

	slices.SortStableFunc(entries, func(a, b domain.SaleEntry) int {
		return strings.Compare(effectiveKey(b), effectiveKey(a))
	})
	return entries
}

// sessionable records carry everything the segmenter needs; the rest are standalone.
// Expenses are never part of a table session.
func sessionable(record domain.SaleRecord) bool {
	return !IsExpense(record) &&
		strings.TrimSpace(record.TableName) != "" &&
		strings.TrimSpace(record.SaleDate) != "" &&
		strings.TrimSpace(record.SaleTime) != "" &&
		strings.TrimSpace(record.PaymentMethod) != ""
}

func effectiveKey(entry domain.SaleEntry) string {
	if entry.IsGrouped {
		return SortKey(entry.LastSaleDate, entry.LastSaleTime)
	}
	return SortKey(entry.SaleDate, entry.SaleTime)
}
