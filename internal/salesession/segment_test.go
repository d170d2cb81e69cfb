package salesession

import (
	"testing"
	"time"

	"masapos/backend/internal/domain"
)

func TestSegmentClosingSaleEndsSession(t *testing.T) {
	records := []domain.SaleRecord{
		tableSale("r1", "5", "09:50:00", "10", line("Tea", 1, "10")),
		tableSale("r2", "5", "10:00:00", "90", line("Tea", 1, "10"), line("Cake", 1, "30"), line("Soda", 1, "50")),
		tableSale("r3", "5", "10:05:00", "10", line("Tea", 1, "10")),
	}

	sessions := DefaultSegmenter().Segment(records)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if len(sessions[0]) != 2 || sessions[0][0].ID != "r1" || sessions[0][1].ID != "r2" {
		t.Fatalf("expected first session [r1 r2], got %+v", sessions[0])
	}
	if len(sessions[1]) != 1 || sessions[1][0].ID != "r3" {
		t.Fatalf("expected second session [r3], got %+v", sessions[1])
	}
}

func TestSegmentGapOverThirtyMinutesSplits(t *testing.T) {
	records := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10")),
		tableSale("r2", "5", "10:50:00", "10", line("Tea", 1, "10")),
	}

	sessions := DefaultSegmenter().Segment(records)
	if len(sessions) != 2 {
		t.Fatalf("expected gap to split into 2 sessions, got %d", len(sessions))
	}
}

func TestSegmentGapOfExactlyThirtyMinutesStays(t *testing.T) {
	records := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10")),
		tableSale("r2", "5", "10:30:00", "10", line("Tea", 1, "10")),
	}

	sessions := DefaultSegmenter().Segment(records)
	if len(sessions) != 1 {
		t.Fatalf("expected a 30 minute gap to stay in one session, got %d", len(sessions))
	}
}

func TestSegmentUnparseableTimeFailsOpen(t *testing.T) {
	broken := tableSale("r2", "5", "late", "10", line("Tea", 1, "10"))
	records := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10")),
		broken,
	}

	sessions := DefaultSegmenter().Segment(records)
	if len(sessions) != 1 || len(sessions[0]) != 2 {
		t.Fatalf("expected malformed time to keep records together, got %+v", sessions)
	}
}

func TestSegmentSortsInputChronologically(t *testing.T) {
	records := []domain.SaleRecord{
		tableSale("r2", "5", "10:10:00", "10", line("Tea", 1, "10")),
		tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10")),
	}

	sessions := DefaultSegmenter().Segment(records)
	if len(sessions) != 1 || sessions[0][0].ID != "r1" || sessions[0][1].ID != "r2" {
		t.Fatalf("expected records in chronological order, got %+v", sessions)
	}
	if records[0].ID != "r2" {
		t.Fatalf("expected caller slice to stay untouched")
	}
}

func TestSegmentLegacyItemCountTriggersClosing(t *testing.T) {
	first := tableSale("r1", "5", "10:00:00", "40")
	first.ItemsArray = nil
	first.Items = "Tea x1, Cake x1"
	records := []domain.SaleRecord{
		first,
		tableSale("r2", "5", "10:05:00", "10", line("Tea", 1, "10")),
	}

	sessions := DefaultSegmenter().Segment(records)
	if len(sessions) != 2 {
		t.Fatalf("expected legacy two-item record to close the session, got %d sessions", len(sessions))
	}
}

func TestSegmentClosingPolicyIsPluggable(t *testing.T) {
	records := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "40", line("Tea", 1, "10"), line("Cake", 1, "30")),
		tableSale("r2", "5", "10:05:00", "10", line("Tea", 1, "10")),
	}

	segmenter := Segmenter{MaxGap: 45 * time.Minute, Closing: MinItemsClosing(0)}
	sessions := segmenter.Segment(records)
	if len(sessions) != 1 {
		t.Fatalf("expected disabled closing rule to keep one session, got %d", len(sessions))
	}

	segmenter.Closing = MinItemsClosing(3)
	if got := len(segmenter.Segment(records)); got != 1 {
		t.Fatalf("expected threshold 3 not to close on 2 items, got %d sessions", got)
	}
}

func TestItemCountFallsBackToLegacyTokens(t *testing.T) {
	record := domain.SaleRecord{Items: "Tea x2, Cake x1 (İKRAM), "}
	if got := ItemCount(record); got != 2 {
		t.Fatalf("expected 2 legacy tokens, got %d", got)
	}
	record.ItemsArray = []domain.LineItem{}
	if got := ItemCount(record); got != 0 {
		t.Fatalf("expected present empty items_array to win, got %d", got)
	}
}
