package salesession

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"masapos/backend/internal/domain"
)

var legacyItemPattern = regexp.MustCompile(`^(.+?)\s+x(\d+)(?:\s*\(([^)]*)\))?$`)

type legacyLine struct {
	name     string
	quantity int
	gift     bool
}

// ItemCount is len(items_array) when present, otherwise the number of comma
// separated tokens in the legacy items text.
func ItemCount(record domain.SaleRecord) int {
	if record.HasItemsArray() {
		return len(record.ItemsArray)
	}
	count := 0
	for _, token := range strings.Split(record.Items, ",") {
		if strings.TrimSpace(token) != "" {
			count++
		}
	}
	return count
}

// parseLegacyItems reads "Name xN, Name xN (İKRAM)". Tokens that do not match are skipped.
func parseLegacyItems(raw string) []legacyLine {
	lines := make([]legacyLine, 0, 4)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		match := legacyItemPattern.FindStringSubmatch(token)
		if match == nil {
			continue
		}
		qty, err := strconv.Atoi(match[2])
		if err != nil || qty < 1 {
			continue
		}
		name := strings.TrimSpace(match[1])
		if name == "" {
			continue
		}
		lines = append(lines, legacyLine{
			name:     name,
			quantity: qty,
			gift:     isGiftMarker(match[3]),
		})
	}
	return lines
}

func isGiftMarker(raw string) bool {
	marker := strings.ToUpper(strings.TrimSpace(raw))
	return marker == "İKRAM" || marker == "IKRAM"
}

// LegacyLineItems converts the legacy text of a record into line items. Legacy rows carry
// no unit price, so every line gets total_amount / non-gift quantity as an estimate.
func LegacyLineItems(record domain.SaleRecord) []domain.LineItem {
	parsed := parseLegacyItems(record.Items)
	unit := legacyUnitPrice(record.TotalAmount, parsed)

	items := make([]domain.LineItem, 0, len(parsed))
	for _, line := range parsed {
		items = append(items, domain.LineItem{
			ProductName: line.name,
			Price:       unit,
			Quantity:    line.quantity,
			IsGift:      line.gift,
			Estimated:   true,
		})
	}
	return items
}

// LineItems returns the structured lines of a record, parsing the legacy text when needed.
func LineItems(record domain.SaleRecord) []domain.LineItem {
	if record.HasItemsArray() {
		return record.ItemsArray
	}
	return LegacyLineItems(record)
}

func legacyUnitPrice(total decimal.Decimal, lines []legacyLine) decimal.Decimal {
	qty := paidQuantity(lines)
	if qty == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(qty))).Round(2)
}

func paidQuantity(lines []legacyLine) int {
	qty := 0
	for _, line := range lines {
		if !line.gift {
			qty += line.quantity
		}
	}
	return qty
}

type pricedLine struct {
	item    domain.LineItem
	revenue decimal.Decimal
}

// pricedLines attaches realised revenue to every line of a record. Gift lines earn zero.
// Legacy revenue is the record total split by quantity; the rounding remainder goes to
// the last paid line so the lines always sum to total_amount.
func pricedLines(record domain.SaleRecord) []pricedLine {
	if record.HasItemsArray() {
		lines := make([]pricedLine, 0, len(record.ItemsArray))
		for _, item := range record.ItemsArray {
			revenue := decimal.Zero
			if !item.IsGift {
				revenue = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			}
			lines = append(lines, pricedLine{item: item, revenue: revenue})
		}
		return lines
	}

	items := LegacyLineItems(record)
	lines := make([]pricedLine, len(items))
	paid := 0
	lastPaid := -1
	for i, item := range items {
		lines[i] = pricedLine{item: item, revenue: decimal.Zero}
		if !item.IsGift {
			paid += item.Quantity
			lastPaid = i
		}
	}
	if paid == 0 {
		return lines
	}

	allocated := decimal.Zero
	totalQty := decimal.NewFromInt(int64(paid))
	for i, item := range items {
		if item.IsGift {
			continue
		}
		if i == lastPaid {
			lines[i].revenue = record.TotalAmount.Sub(allocated)
			break
		}
		share := record.TotalAmount.Mul(decimal.NewFromInt(int64(item.Quantity))).Div(totalQty).Round(2)
		lines[i].revenue = share
		allocated = allocated.Add(share)
	}
	return lines
}
