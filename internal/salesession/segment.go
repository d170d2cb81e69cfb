package salesession

import (
	"slices"
	"strings"
	"time"

	"masapos/backend/internal/domain"
)

const (
	DefaultMaxGap          = 30 * time.Minute
	DefaultClosingMinItems = 2
)

// ClosingPolicy decides whether the previous record of a table settled the whole table,
// in which case the next record opens a new session. It stands in for a session id the
// store does not have.
type ClosingPolicy func(prev domain.SaleRecord) bool

// MinItemsClosing treats a payment covering at least n items as a closing sale.
// n <= 0 disables the rule.
func MinItemsClosing(n int) ClosingPolicy {
	if n <= 0 {
		return NeverClosing
	}
	return func(prev domain.SaleRecord) bool {
		return ItemCount(prev) >= n
	}
}

// NeverClosing leaves session boundaries to the gap rule alone.
func NeverClosing(domain.SaleRecord) bool {
	return false
}

// Segmenter partitions the records of one table into sessions.
type Segmenter struct {
	MaxGap  time.Duration
	Closing ClosingPolicy
}

// DefaultSegmenter splits on a 30 minute gap or after a payment of 2+ items.
func DefaultSegmenter() Segmenter {
	return Segmenter{
		MaxGap:  DefaultMaxGap,
		Closing: MinItemsClosing(DefaultClosingMinItems),
	}
}

// Segment sorts a copy of the records chronologically and splits it whenever the previous
// record was a closing sale or the gap to it exceeds MaxGap. An unparseable timestamp
// keeps the record in the current session.
func (s Segmenter) Segment(records []domain.SaleRecord) [][]domain.SaleRecord {
	if len(records) == 0 {
		return nil
	}
	closing := s.Closing
	if closing == nil {
		closing = NeverClosing
	}
	maxGap := s.MaxGap
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}

	ordered := sortChronological(records)
	sessions := make([][]domain.SaleRecord, 0, 4)
	current := make([]domain.SaleRecord, 0, 4)

	for _, record := range ordered {
		if len(current) == 0 {
			current = append(current, record)
			continue
		}
		prev := current[len(current)-1]
		if closing(prev) || exceedsGap(prev, record, maxGap) {
			sessions = append(sessions, current)
			current = []domain.SaleRecord{record}
			continue
		}
		current = append(current, record)
	}
	if len(current) > 0 {
		sessions = append(sessions, current)
	}
	return sessions
}

func exceedsGap(prev domain.SaleRecord, next domain.SaleRecord, maxGap time.Duration) bool {
	prevAt, ok := ParseDateTime(prev.SaleDate, prev.SaleTime)
	if !ok {
		return false
	}
	nextAt, ok := ParseDateTime(next.SaleDate, next.SaleTime)
	if !ok {
		return false
	}
	return nextAt.Sub(prevAt) > maxGap
}

func sortChronological(records []domain.SaleRecord) []domain.SaleRecord {
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b domain.SaleRecord) int {
		return strings.Compare(SortKey(a.SaleDate, a.SaleTime), SortKey(b.SaleDate, b.SaleTime))
	})
	return ordered
}
