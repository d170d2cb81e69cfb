package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is one completed payment as stored. Records are append-only and never
// carry an explicit session identifier.
type SaleRecord struct {
	ID            string          `json:"id"`
	TableName     string          `json:"table_name,omitempty"`
	TableType     string          `json:"table_type,omitempty"`
	SaleDate      string          `json:"sale_date"`
	SaleTime      string          `json:"sale_time"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemsArray    []LineItem      `json:"items_array,omitempty"`
	Items         string          `json:"items,omitempty"`
	StaffName     string          `json:"staff_name,omitempty"`
	IsExpense     bool            `json:"isExpense,omitempty"`
}

// HasItemsArray reports whether the record carries structured lines. A nil slice means
// the record predates items_array and only has the legacy text form.
func (r SaleRecord) HasItemsArray() bool {
	return r.ItemsArray != nil
}

type LineItem struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	IsGift      bool            `json:"isGift,omitempty"`
	StaffName   string          `json:"staff_name,omitempty"`
	// Estimated marks a unit price derived from the record total (legacy rows).
	Estimated bool `json:"estimated,omitempty"`
}

// SaleEntry is one row of the reconstructed result set: either a GroupedSale
// (IsGrouped, with OriginalSales provenance) or a StandaloneSale passed through as is.
type SaleEntry struct {
	SaleRecord
	LastSaleDate  string       `json:"last_sale_date,omitempty"`
	LastSaleTime  string       `json:"last_sale_time,omitempty"`
	IsGrouped     bool         `json:"isGrouped,omitempty"`
	OriginalSales []SaleRecord `json:"original_sales,omitempty"`
}

// RecordIDs lists the stored records behind the entry.
func (e SaleEntry) RecordIDs() []string {
	if !e.IsGrouped {
		return []string{e.ID}
	}
	ids := make([]string, 0, len(e.OriginalSales))
	for _, sale := range e.OriginalSales {
		ids = append(ids, sale.ID)
	}
	return ids
}

type SaleDetails struct {
	Sale  SaleRecord `json:"sale"`
	Items []LineItem `json:"items"`
}

type ProductStat struct {
	ProductName  string          `json:"product_name"`
	Count        int             `json:"count"`
	GiftCount    int             `json:"gift_count"`
	Revenue      decimal.Decimal `json:"revenue"`
	SharePercent decimal.Decimal `json:"share_percent"`
	Estimated    bool            `json:"estimated,omitempty"`
}

type ProductStatsView struct {
	TopByCount      []ProductStat   `json:"top_by_count"`
	BottomByCount   []ProductStat   `json:"bottom_by_count"`
	TopByRevenue    []ProductStat   `json:"top_by_revenue"`
	BottomByRevenue []ProductStat   `json:"bottom_by_revenue"`
	Products        []ProductStat   `json:"products"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalUnits      int             `json:"total_units"`
	GiftUnits       int             `json:"gift_units"`
	SaleCount       int             `json:"sale_count"`
}

type StaffStat struct {
	StaffName      string          `json:"staff_name"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalSales     int             `json:"total_sales"`
	TotalItemsSold int             `json:"total_items_sold"`
	TotalGiftItems int             `json:"total_gift_items"`
	AverageSale    decimal.Decimal `json:"average_sale"`
	Products       []ProductStat   `json:"products"`
}

type ReportFilter struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type SessionListResponse struct {
	Filter  ReportFilter `json:"filter"`
	Entries []SaleEntry  `json:"entries"`
	Grouped int          `json:"grouped"`
	Records int          `json:"records"`
}

type ProductReportResponse struct {
	Filter ReportFilter     `json:"filter"`
	Stats  ProductStatsView `json:"stats"`
}

type StaffReportResponse struct {
	Filter ReportFilter `json:"filter"`
	Staff  []StaffStat  `json:"staff"`
}

type DeleteFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type DeleteResult struct {
	EntryID   string          `json:"entry_id,omitempty"`
	Requested []string        `json:"requested"`
	Deleted   []string        `json:"deleted"`
	Failed    []DeleteFailure `json:"failed,omitempty"`
	Status    string          `json:"status"`
}

const (
	DeleteStatusDeleted = "deleted"
	DeleteStatusPartial = "partial"
	DeleteStatusFailed  = "failed"
)

const (
	TableTypeInside  = "inside"
	TableTypeOutside = "outside"
)

// PaymentMethodExpense marks cash-out records that are not product sales.
const PaymentMethodExpense = "Masraf"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
