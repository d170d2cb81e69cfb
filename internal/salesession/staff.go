package salesession

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"masapos/backend/internal/domain"
)

type staffAccumulator struct {
	name     string
	sales    int
	products *productAccumulator
}

// ComputeStaffStats attributes every line to item.staff_name, falling back to the record's
// staff_name. Lines with no attribution are left out. A grouped entry counts as one sale
// per staff member, while its lines are attributed through OriginalSales so each partial
// payment keeps its own waiter.
func ComputeStaffStats(entries []domain.SaleEntry) []domain.StaffStat {
	staff := newOrderedMap[string, staffAccumulator]()

	for _, entry := range entries {
		if IsExpense(entry.SaleRecord) {
			continue
		}
		seen := newOrderedSet()
		for _, record := range saleSources(entry) {
			fallback := strings.TrimSpace(record.StaffName)
			for _, line := range pricedLines(record) {
				name := strings.TrimSpace(line.item.StaffName)
				if name == "" {
					name = fallback
				}
				if name == "" || !countable(line.item) {
					continue
				}
				acc := staff.getOrInsert(name, func() staffAccumulator {
					return staffAccumulator{name: name, products: newProductAccumulator()}
				})
				acc.products.add(line)
				seen.add(name)
			}
		}
		for _, name := range seen.values() {
			acc := staff.getOrInsert(name, nil)
			acc.sales++
		}
	}

	stats := make([]domain.StaffStat, 0, staff.len())
	staff.each(func(_ string, acc *staffAccumulator) {
		products := acc.products.list()
		slices.SortStableFunc(products, func(a, b domain.ProductStat) int {
			return cmp.Compare(b.Count, a.Count)
		})
		stats = append(stats, domain.StaffStat{
			StaffName:      acc.name,
			TotalRevenue:   acc.products.revenue,
			TotalSales:     acc.sales,
			TotalItemsSold: acc.products.units,
			TotalGiftItems: acc.products.gifts,
			AverageSale:    averageOf(acc.products.revenue, acc.sales),
			Products:       products,
		})
	})

	slices.SortStableFunc(stats, func(a, b domain.StaffStat) int {
		return b.TotalRevenue.Cmp(a.TotalRevenue)
	})
	return stats
}

func averageOf(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}
