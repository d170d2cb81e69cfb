package service

import (
	"fmt"
	"strings"
	"time"

	"masapos/backend/internal/domain"
	"masapos/backend/internal/salesession"
)

const filterDateLayout = "2006-01-02"

// dateBounds is an inclusive day range; zero times are unbounded.
type dateBounds struct {
	from time.Time
	to   time.Time
}

func parseFilter(filter domain.ReportFilter) (dateBounds, error) {
	var bounds dateBounds
	if raw := strings.TrimSpace(filter.From); raw != "" {
		day, ok := salesession.ParseDate(raw)
		if !ok {
			return dateBounds{}, fmt.Errorf("%w: from %q", ErrInvalidFilter, raw)
		}
		bounds.from = day
	}
	if raw := strings.TrimSpace(filter.To); raw != "" {
		day, ok := salesession.ParseDate(raw)
		if !ok {
			return dateBounds{}, fmt.Errorf("%w: to %q", ErrInvalidFilter, raw)
		}
		bounds.to = day
	}
	if !bounds.from.IsZero() && !bounds.to.IsZero() && bounds.from.After(bounds.to) {
		return dateBounds{}, fmt.Errorf("%w: from is after to", ErrInvalidFilter)
	}
	return bounds, nil
}

func (b dateBounds) open() bool {
	return b.from.IsZero() && b.to.IsZero()
}

// contains excludes records whose date cannot be read.
func (b dateBounds) contains(saleDate string) bool {
	day, ok := salesession.ParseDate(saleDate)
	if !ok {
		return false
	}
	if !b.from.IsZero() && day.Before(b.from) {
		return false
	}
	if !b.to.IsZero() && day.After(b.to) {
		return false
	}
	return true
}

func (b dateBounds) filter() domain.ReportFilter {
	var out domain.ReportFilter
	if !b.from.IsZero() {
		out.From = b.from.Format(filterDateLayout)
	}
	if !b.to.IsZero() {
		out.To = b.to.Format(filterDateLayout)
	}
	return out
}
