package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPeriod = errors.New("period must be one of today, month, year, all")
	ErrInvalidType   = errors.New("report type must be one of sales, inventory, full")
	ErrInvalidFormat = errors.New("format must be csv or json")
)

// Period selects how far back a report looks.
type Period string

const (
	PeriodToday Period = "today"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodMonth, nil
	case PeriodToday, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// Since returns the start of the calendar day, month or year containing now,
// in now's location. PeriodAll yields the zero time.
func Since(p Period, now time.Time) time.Time {
	y, m, d := now.Date()
	loc := now.Location()
	switch p {
	case PeriodToday:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
	return time.Time{}
}

// Type picks which sections a report carries.
type Type string

const (
	TypeSales     Type = "sales"
	TypeInventory Type = "inventory"
	TypeFull      Type = "full"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(s)); t {
	case TypeSales, TypeInventory, TypeFull:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Input is the already-fetched data a snapshot is built from.
type Input struct {
	Orders    []*order.Order
	Products  []*catalog.Product
	Suppliers []*supplier.Supplier
}

// Snapshot is a computed report. Sections not selected by Type are nil.
type Snapshot struct {
	Type        Type              `json:"type"`
	Period      Period            `json:"period"`
	Since       *time.Time        `json:"since,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Sales       *SalesSummary     `json:"sales,omitempty"`
	Inventory   *InventorySummary `json:"inventory,omitempty"`
	Profit      *ProfitSummary    `json:"profit,omitempty"`
	Suppliers   *SupplierSummary  `json:"suppliers,omitempty"`
}

// SalesSummary counts every order by status. Revenue figures and OrderCount
// only include orders that were not cancelled or returned.
type SalesSummary struct {
	OrdersByStatus    map[order.Status]int       `json:"orders_by_status"`
	TotalOrders       int                        `json:"total_orders"`
	OrderCount        int                        `json:"order_count"`
	TotalRevenue      decimal.Decimal            `json:"total_revenue"`
	AverageOrderValue decimal.Decimal            `json:"average_order_value"`
	RevenueByDay      map[string]decimal.Decimal `json:"revenue_by_day"`
	RevenueByMonth    map[string]decimal.Decimal `json:"revenue_by_month"`
}

type InventorySummary struct {
	ProductCount    int              `json:"product_count"`
	ActiveCount     int              `json:"active_count"`
	TotalStock      int              `json:"total_stock"`
	InventoryValue  decimal.Decimal  `json:"inventory_value"`
	LowStockCount   int              `json:"low_stock_count"`
	OutOfStockCount int              `json:"out_of_stock_count"`
	LowStock        []StockAlert     `json:"low_stock"`
	Categories      []CategoryRollup `json:"categories"`
}

type StockAlert struct {
	ProductID     uuid.UUID        `json:"product_id"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand,omitempty"`
	Category      catalog.Category `json:"category"`
	StockQuantity int              `json:"stock_quantity"`
}

type CategoryRollup struct {
	Category       catalog.Category `json:"category"`
	ProductCount   int              `json:"product_count"`
	TotalStock     int              `json:"total_stock"`
	InventoryValue decimal.Decimal  `json:"inventory_value"`
	LowStockCount  int              `json:"low_stock_count"`
}

// ProfitSummary approximates cost of goods from order line items matched to
// the products' current cost price. Lines whose product no longer exists are
// counted in UnmatchedItems and contribute no cost.
type ProfitSummary struct {
	Revenue        decimal.Decimal `json:"revenue"`
	CostOfGoods    decimal.Decimal `json:"cost_of_goods"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	MarginPercent  decimal.Decimal `json:"margin_percent"`
	UnmatchedItems int             `json:"unmatched_items"`
}

type SupplierSummary struct {
	Total    int                     `json:"total"`
	ByStatus map[supplier.Status]int `json:"by_status"`
}
