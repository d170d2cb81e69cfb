package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"masapos/backend/internal/domain"
	"masapos/backend/internal/store"
)

func TestSalesRoundTripAndDelete(t *testing.T) {
	databaseURL := os.Getenv("MASAPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set MASAPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	stamp := time.Now().UnixNano()
	structuredID := fmt.Sprintf("sale-it-%d-a", stamp)
	legacyID := fmt.Sprintf("sale-it-%d-b", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ANY($1)`, []string{structuredID, legacyID})
	})

	if _, err := s.CreateSale(ctx, domain.SaleRecord{
		ID: structuredID, TableName: "Masa 1", TableType: domain.TableTypeInside,
		SaleDate: "01.01.2024", SaleTime: "10:00:00", PaymentMethod: "Nakit",
		TotalAmount: decimal.RequireFromString("25.50"),
		ItemsArray: []domain.LineItem{
			{ProductID: "p1", ProductName: "Çay", Price: decimal.RequireFromString("5.50"), Quantity: 1},
			{ProductName: "Simit", Price: decimal.RequireFromString("20"), Quantity: 1, IsGift: true},
		},
	}); err != nil {
		t.Fatalf("create structured sale: %v", err)
	}
	if _, err := s.CreateSale(ctx, domain.SaleRecord{
		ID: legacyID, TableName: "Masa 1", SaleDate: "01.01.2024", SaleTime: "10:05:00",
		PaymentMethod: "Nakit", TotalAmount: decimal.RequireFromString("10"), Items: "Çay x2",
	}); err != nil {
		t.Fatalf("create legacy sale: %v", err)
	}

	got, err := s.GetSale(ctx, structuredID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if len(got.ItemsArray) != 2 || !got.ItemsArray[1].IsGift {
		t.Fatalf("unexpected items %+v", got.ItemsArray)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("unexpected total %s", got.TotalAmount)
	}

	legacy, err := s.GetSale(ctx, legacyID)
	if err != nil {
		t.Fatalf("get legacy sale: %v", err)
	}
	if legacy.HasItemsArray() || legacy.Items != "Çay x2" {
		t.Fatalf("expected legacy row to stay legacy, got %+v", legacy)
	}

	if err := s.DeleteSale(ctx, structuredID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	if _, err := s.GetSale(ctx, structuredID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := s.DeleteSale(ctx, structuredID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
