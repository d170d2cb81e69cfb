package httpapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"masapos/backend/internal/domain"
)

// reportTable is one section of an exported report: a CSV block or an XLSX sheet.
type reportTable struct {
	name   string
	header []string
	rows   [][]any
}

var productHeader = []string{"product_name", "count", "gift_count", "revenue", "share_percent", "estimated"}

func productRows(stats []domain.ProductStat) [][]any {
	rows := make([][]any, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, []any{stat.ProductName, stat.Count, stat.GiftCount, stat.Revenue, stat.SharePercent, stat.Estimated})
	}
	return rows
}

func productTables(view domain.ProductStatsView) []reportTable {
	return []reportTable{
		{name: "products", header: productHeader, rows: productRows(view.Products)},
		{name: "top_by_count", header: productHeader, rows: productRows(view.TopByCount)},
		{name: "bottom_by_count", header: productHeader, rows: productRows(view.BottomByCount)},
		{name: "top_by_revenue", header: productHeader, rows: productRows(view.TopByRevenue)},
		{name: "bottom_by_revenue", header: productHeader, rows: productRows(view.BottomByRevenue)},
		{name: "summary", header: []string{"key", "value"}, rows: [][]any{
			{"total_revenue", view.TotalRevenue},
			{"total_units", view.TotalUnits},
			{"gift_units", view.GiftUnits},
			{"sale_count", view.SaleCount},
		}},
	}
}

func staffTables(stats []domain.StaffStat) []reportTable {
	staff := reportTable{
		name:   "staff",
		header: []string{"staff_name", "total_sales", "total_items_sold", "total_gift_items", "total_revenue", "average_sale"},
	}
	products := reportTable{
		name:   "staff_products",
		header: append([]string{"staff_name"}, productHeader...),
	}
	for _, stat := range stats {
		staff.rows = append(staff.rows, []any{
			stat.StaffName, stat.TotalSales, stat.TotalItemsSold, stat.TotalGiftItems, stat.TotalRevenue, stat.AverageSale,
		})
		for _, row := range productRows(stat.Products) {
			products.rows = append(products.rows, append([]any{stat.StaffName}, row...))
		}
	}
	return []reportTable{staff, products}
}

// tablesToCSV writes every table with its name in a leading section column.
func tablesToCSV(tables []reportTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, table := range tables {
		if err := w.Write(append([]string{"section"}, table.header...)); err != nil {
			return nil, err
		}
		for _, row := range table.rows {
			record := make([]string, 0, len(row)+1)
			record = append(record, table.name)
			for _, val := range row {
				record = append(record, csvValue(val))
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.StringFixed(2)
	default:
		return fmt.Sprint(v)
	}
}

// tablesToXLSX writes one sheet per table with a bold header row.
func tablesToXLSX(tables []reportTable) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), table.name); err != nil {
				return nil, fmt.Errorf("error renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(table.name); err != nil {
			return nil, fmt.Errorf("error creating sheet %s: %w", table.name, err)
		}

		header := make([]any, 0, len(table.header))
		for _, h := range table.header {
			header = append(header, h)
		}
		if err := f.SetSheetRow(table.name, "A1", &header); err != nil {
			return nil, err
		}
		_ = f.SetRowStyle(table.name, 1, 1, headerStyle)

		for r, row := range table.rows {
			cells := make([]any, 0, len(row))
			for _, val := range row {
				cells = append(cells, xlsxValue(val))
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(table.name, cell, &cells); err != nil {
				return nil, err
			}
		}

		last, err := excelize.ColumnNumberToName(len(table.header))
		if err == nil {
			_ = f.SetColWidth(table.name, "A", last, 18)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing xlsx: %w", err)
	}
	return &buf, nil
}

func xlsxValue(val any) any {
	if d, ok := val.(decimal.Decimal); ok {
		return d.Round(2).InexactFloat64()
	}
	return val
}
