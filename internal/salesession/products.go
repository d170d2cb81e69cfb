package salesession

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"masapos/backend/internal/domain"
)

const rankSize = 5

var hundred = decimal.NewFromInt(100)

type productAccumulator struct {
	products *orderedMap[string, domain.ProductStat]
	revenue  decimal.Decimal
	units    int
	gifts    int
}

func newProductAccumulator() *productAccumulator {
	return &productAccumulator{
		products: newOrderedMap[string, domain.ProductStat](),
		revenue:  decimal.Zero,
	}
}

// add counts gift units but never their revenue.
func (a *productAccumulator) add(line pricedLine) {
	if !countable(line.item) {
		return
	}
	name := strings.TrimSpace(line.item.ProductName)
	stat := a.products.getOrInsert(name, func() domain.ProductStat {
		return domain.ProductStat{ProductName: name, Revenue: decimal.Zero, SharePercent: decimal.Zero}
	})
	stat.Count += line.item.Quantity
	a.units += line.item.Quantity
	if line.item.IsGift {
		stat.GiftCount += line.item.Quantity
		a.gifts += line.item.Quantity
	} else {
		stat.Revenue = stat.Revenue.Add(line.revenue)
		a.revenue = a.revenue.Add(line.revenue)
	}
	stat.Estimated = stat.Estimated || line.item.Estimated
}

func countable(item domain.LineItem) bool {
	return strings.TrimSpace(item.ProductName) != "" && item.Quantity >= 1
}

// list returns stats in first-seen order with their revenue share filled in.
func (a *productAccumulator) list() []domain.ProductStat {
	stats := make([]domain.ProductStat, 0, a.products.len())
	a.products.each(func(_ string, stat *domain.ProductStat) {
		out := *stat
		out.SharePercent = percentOf(out.Revenue, a.revenue)
		stats = append(stats, out)
	})
	return stats
}

// IsExpense reports records that never count as product sales.
func IsExpense(record domain.SaleRecord) bool {
	return record.IsExpense || strings.TrimSpace(record.PaymentMethod) == domain.PaymentMethodExpense
}

// saleSources returns the stored records behind an entry, minus expenses. Lines are
// priced per record so legacy revenue inside a group matches the record totals.
func saleSources(entry domain.SaleEntry) []domain.SaleRecord {
	if !entry.IsGrouped || len(entry.OriginalSales) == 0 {
		return []domain.SaleRecord{entry.SaleRecord}
	}
	sources := make([]domain.SaleRecord, 0, len(entry.OriginalSales))
	for _, record := range entry.OriginalSales {
		if !IsExpense(record) {
			sources = append(sources, record)
		}
	}
	return sources
}

// ComputeProductStats folds the reconstructed result set into ranked product views.
// Revenue for legacy rows without unit prices is an estimate (see LegacyLineItems).
func ComputeProductStats(entries []domain.SaleEntry) domain.ProductStatsView {
	acc := newProductAccumulator()
	sales := 0
	for _, entry := range entries {
		if IsExpense(entry.SaleRecord) {
			continue
		}
		sales++
		for _, record := range saleSources(entry) {
			for _, line := range pricedLines(record) {
				acc.add(line)
			}
		}
	}

	products := acc.list()
	byCount := func(a, b domain.ProductStat) int { return cmp.Compare(a.Count, b.Count) }
	byRevenue := func(a, b domain.ProductStat) int { return a.Revenue.Cmp(b.Revenue) }

	return domain.ProductStatsView{
		TopByCount:      rank(products, byCount, true),
		BottomByCount:   rank(products, byCount, false),
		TopByRevenue:    rank(products, byRevenue, true),
		BottomByRevenue: rank(products, byRevenue, false),
		Products:        products,
		TotalRevenue:    acc.revenue,
		TotalUnits:      acc.units,
		GiftUnits:       acc.gifts,
		SaleCount:       sales,
	}
}

func rank(stats []domain.ProductStat, compare func(a, b domain.ProductStat) int, descending bool) []domain.ProductStat {
	ranked := slices.Clone(stats)
	slices.SortStableFunc(ranked, func(a, b domain.ProductStat) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	if len(ranked) > rankSize {
		ranked = ranked[:rankSize]
	}
	return ranked
}

// percentOf is 0 when total is 0.
func percentOf(part decimal.Decimal, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Round(2)
}
