package salesession

import (
	"testing"

	"masapos/backend/internal/domain"
)

func TestAggregateSingleRecordPassesThrough(t *testing.T) {
	record := tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10"))

	entry := Aggregate([]domain.SaleRecord{record})
	if entry.IsGrouped {
		t.Fatalf("expected single record to stay standalone")
	}
	if entry.ID != "r1" || len(entry.OriginalSales) != 0 {
		t.Fatalf("unexpected standalone entry %+v", entry)
	}
}

func TestAggregateMergesTeaAndCakeScenario(t *testing.T) {
	session := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10")),
		tableSale("r2", "5", "10:10:00", "40", line("Tea", 1, "10"), line("Cake", 1, "30")),
	}

	entry := Aggregate(session)
	if !entry.IsGrouped {
		t.Fatalf("expected grouped entry")
	}
	assertDecimal(t, "total_amount", entry.TotalAmount, "50")
	if len(entry.ItemsArray) != 2 {
		t.Fatalf("expected 2 merged lines, got %+v", entry.ItemsArray)
	}
	if entry.ItemsArray[0].ProductName != "Tea" || entry.ItemsArray[0].Quantity != 2 {
		t.Fatalf("expected Tea x2 first, got %+v", entry.ItemsArray[0])
	}
	if entry.ItemsArray[1].ProductName != "Cake" || entry.ItemsArray[1].Quantity != 1 {
		t.Fatalf("expected Cake x1 second, got %+v", entry.ItemsArray[1])
	}
	if entry.ID != "r1" || entry.SaleTime != "10:00:00" || entry.LastSaleTime != "10:10:00" {
		t.Fatalf("unexpected identity/timestamps %s %s %s", entry.ID, entry.SaleTime, entry.LastSaleTime)
	}
	if len(entry.OriginalSales) != 2 || entry.OriginalSales[1].ID != "r2" {
		t.Fatalf("expected full provenance, got %+v", entry.OriginalSales)
	}
}

func TestAggregateSumInvariant(t *testing.T) {
	session := []domain.SaleRecord{
		tableSale("r1", "7", "12:00:00", "12.35", line("Soup", 1, "12.35")),
		tableSale("r2", "7", "12:05:00", "0.10", line("Bread", 1, "0.10")),
		tableSale("r3", "7", "12:09:00", "7.55", line("Water", 1, "7.55")),
	}

	entry := Aggregate(session)
	assertDecimal(t, "total_amount", entry.TotalAmount, "20.00")
}

func TestAggregateJoinsPaymentMethodsAndStaff(t *testing.T) {
	first := tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10"))
	first.StaffName = "Ayşe"
	second := tableSale("r2", "5", "10:05:00", "10", line("Tea", 1, "10"))
	second.PaymentMethod = "Kredi Kartı"
	second.StaffName = "Mehmet"
	third := tableSale("r3", "5", "10:09:00", "10", line("Tea", 1, "10"))
	third.StaffName = "Ayşe"

	entry := Aggregate([]domain.SaleRecord{first, second, third})
	if entry.PaymentMethod != "Nakit + Kredi Kartı (Toplam)" {
		t.Fatalf("unexpected payment method %q", entry.PaymentMethod)
	}
	if entry.StaffName != "Ayşe, Mehmet" {
		t.Fatalf("unexpected staff %q", entry.StaffName)
	}

	same := Aggregate([]domain.SaleRecord{first, third})
	if same.PaymentMethod != "Nakit" {
		t.Fatalf("expected a single method without suffix, got %q", same.PaymentMethod)
	}
}

func TestAggregateGiftFlagIsOrAcrossDuplicates(t *testing.T) {
	session := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "0", gift("Tea", 1, "10")),
		tableSale("r2", "5", "10:05:00", "10", line("Tea", 1, "10")),
	}

	entry := Aggregate(session)
	if len(entry.ItemsArray) != 1 {
		t.Fatalf("expected one merged line, got %+v", entry.ItemsArray)
	}
	if !entry.ItemsArray[0].IsGift || entry.ItemsArray[0].Quantity != 2 {
		t.Fatalf("expected merged gift Tea x2, got %+v", entry.ItemsArray[0])
	}
}

func TestAggregateKeepsDifferentPricesApart(t *testing.T) {
	session := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "10", line("Tea", 1, "10")),
		tableSale("r2", "5", "10:05:00", "12", line("Tea", 1, "12.00")),
		tableSale("r3", "5", "10:06:00", "10", line("Tea", 1, "10.00")),
	}

	entry := Aggregate(session)
	if len(entry.ItemsArray) != 2 {
		t.Fatalf("expected price to split merge keys, got %+v", entry.ItemsArray)
	}
	if entry.ItemsArray[0].Quantity != 2 {
		t.Fatalf("expected 10 and 10.00 to share a key, got %+v", entry.ItemsArray[0])
	}
}

func TestAggregateMergesOnProductIDBeforeName(t *testing.T) {
	a := line("Çay", 1, "10")
	a.ProductID = "p-1"
	b := line("Tea", 1, "10")
	b.ProductID = "p-1"
	session := []domain.SaleRecord{
		tableSale("r1", "5", "10:00:00", "10", a),
		tableSale("r2", "5", "10:05:00", "10", b),
	}

	entry := Aggregate(session)
	if len(entry.ItemsArray) != 1 || entry.ItemsArray[0].ProductName != "Çay" {
		t.Fatalf("expected product id to merge lines under the first name, got %+v", entry.ItemsArray)
	}
}

func TestAggregateConvertsLegacyRecords(t *testing.T) {
	legacy := tableSale("r1", "5", "10:00:00", "30")
	legacy.ItemsArray = nil
	legacy.Items = "Tea x3"
	session := []domain.SaleRecord{
		legacy,
		tableSale("r2", "5", "10:05:00", "10", line("Tea", 1, "10")),
	}

	entry := Aggregate(session)
	if len(entry.ItemsArray) != 1 {
		t.Fatalf("expected legacy Tea to merge with priced Tea, got %+v", entry.ItemsArray)
	}
	if entry.ItemsArray[0].Quantity != 4 || !entry.ItemsArray[0].Estimated {
		t.Fatalf("expected estimated Tea x4, got %+v", entry.ItemsArray[0])
	}
}
