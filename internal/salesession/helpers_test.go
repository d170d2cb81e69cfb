package salesession

import (
	"testing"

	"github.com/shopspring/decimal"

	"masapos/backend/internal/domain"
)

func dec(val string) decimal.Decimal {
	return decimal.RequireFromString(val)
}

func line(name string, qty int, price string) domain.LineItem {
	return domain.LineItem{ProductName: name, Quantity: qty, Price: dec(price)}
}

func gift(name string, qty int, price string) domain.LineItem {
	item := line(name, qty, price)
	item.IsGift = true
	return item
}

func tableSale(id string, table string, clock string, total string, items ...domain.LineItem) domain.SaleRecord {
	if items == nil {
		items = []domain.LineItem{}
	}
	return domain.SaleRecord{
		ID:            id,
		TableName:     table,
		TableType:     domain.TableTypeInside,
		SaleDate:      "01.01.2024",
		SaleTime:      clock,
		PaymentMethod: "Nakit",
		TotalAmount:   dec(total),
		ItemsArray:    items,
	}
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected %s %s, got %s", label, want, got.String())
	}
}

func entryIDs(entries []domain.SaleEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids
}
