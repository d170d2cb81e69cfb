package salesession

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"masapos/backend/internal/domain"
)

const (
	paymentMethodSeparator = " + "
	paymentMethodTotalFlag = " (Toplam)"
	staffSeparator         = ", "
)

type itemKey struct {
	product string
	price   string
}

// Aggregate reduces one session. A single record passes through untouched; two or more
// become one grouped entry that keeps every record in OriginalSales.
//
// Duplicate lines merge on (product id or name, unit price). The gift flag is OR'd, so a
// product given away in any partial payment reports its whole merged quantity as gift.
// The merged lines are for display; the reducers price each record in OriginalSales.
func Aggregate(session []domain.SaleRecord) domain.SaleEntry {
	if len(session) == 0 {
		return domain.SaleEntry{}
	}
	if len(session) == 1 {
		return domain.SaleEntry{SaleRecord: session[0]}
	}

	first := session[0]
	last := session[len(session)-1]

	total := decimal.Zero
	methods := newOrderedSet()
	staff := newOrderedSet()
	items := newOrderedMap[itemKey, domain.LineItem]()
	expense := true

	for _, record := range session {
		total = total.Add(record.TotalAmount)
		methods.add(strings.TrimSpace(record.PaymentMethod))
		staff.add(strings.TrimSpace(record.StaffName))
		expense = expense && record.IsExpense

		for _, line := range LineItems(record) {
			merged := items.getOrInsert(mergeKey(line), func() domain.LineItem {
				seed := line
				seed.Quantity = 0
				seed.IsGift = false
				return seed
			})
			merged.Quantity += line.Quantity
			merged.IsGift = merged.IsGift || line.IsGift
			merged.Estimated = merged.Estimated || line.Estimated
		}
	}

	mergedItems := make([]domain.LineItem, 0, items.len())
	items.each(func(_ itemKey, item *domain.LineItem) {
		mergedItems = append(mergedItems, *item)
	})

	return domain.SaleEntry{
		SaleRecord: domain.SaleRecord{
			ID:            first.ID,
			TableName:     first.TableName,
			TableType:     first.TableType,
			SaleDate:      first.SaleDate,
			SaleTime:      first.SaleTime,
			PaymentMethod: joinPaymentMethods(methods.values()),
			TotalAmount:   total,
			ItemsArray:    mergedItems,
			StaffName:     strings.Join(staff.values(), staffSeparator),
			IsExpense:     expense,
		},
		LastSaleDate:  last.SaleDate,
		LastSaleTime:  last.SaleTime,
		IsGrouped:     true,
		OriginalSales: slices.Clone(session),
	}
}

func mergeKey(line domain.LineItem) itemKey {
	product := strings.TrimSpace(line.ProductID)
	if product == "" {
		product = strings.TrimSpace(line.ProductName)
	}
	return itemKey{product: product, price: line.Price.String()}
}

func joinPaymentMethods(methods []string) string {
	joined := strings.Join(methods, paymentMethodSeparator)
	if len(methods) > 1 {
		joined += paymentMethodTotalFlag
	}
	return joined
}
