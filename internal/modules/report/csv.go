package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
	"github.com/shopspring/decimal"
)

// WriteCSV renders the snapshot's sections one after another, each under an
// upper-case title row and separated by a blank line. Fields are quoted by
// encoding/csv whenever they contain a comma, quote or newline.
func WriteCSV(w io.Writer, snap *Snapshot) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{strings.ToUpper(string(snap.Type)) + " REPORT"},
		{"Period", string(snap.Period)},
		{"Generated", snap.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if snap.Since != nil {
		rows = append(rows, []string{"Since", snap.Since.Format(dayLayout)})
	}

	if s := snap.Sales; s != nil {
		rows = append(rows, []string{}, []string{"ORDERS SUMMARY"}, []string{"Status", "Count"})
		for _, st := range order.Statuses() {
			rows = append(rows, []string{string(st), strconv.Itoa(s.OrdersByStatus[st])})
		}
		rows = append(rows,
			[]string{"Total Orders", strconv.Itoa(s.TotalOrders)},
			[]string{"Revenue Orders", strconv.Itoa(s.OrderCount)},
			[]string{"Total Revenue", money(s.TotalRevenue)},
			[]string{"Average Order Value", money(s.AverageOrderValue)},
		)

		rows = append(rows, []string{}, []string{"DAILY REVENUE BREAKDOWN"}, []string{"Date", "Revenue"})
		rows = append(rows, sortedRevenue(s.RevenueByDay)...)

		rows = append(rows, []string{}, []string{"MONTHLY REVENUE BREAKDOWN"}, []string{"Month", "Revenue"})
		rows = append(rows, sortedRevenue(s.RevenueByMonth)...)
	}

	if inv := snap.Inventory; inv != nil {
		rows = append(rows, []string{}, []string{"INVENTORY SUMMARY"},
			[]string{"Total Products", strconv.Itoa(inv.ProductCount)},
			[]string{"Active Products", strconv.Itoa(inv.ActiveCount)},
			[]string{"Total Stock", strconv.Itoa(inv.TotalStock)},
			[]string{"Inventory Value", money(inv.InventoryValue)},
			[]string{"Low Stock", strconv.Itoa(inv.LowStockCount)},
			[]string{"Out of Stock", strconv.Itoa(inv.OutOfStockCount)},
		)

		rows = append(rows, []string{}, []string{"LOW STOCK ALERTS"},
			[]string{"Product", "Brand", "Category", "Stock"})
		for _, a := range inv.LowStock {
			rows = append(rows, []string{a.Name, a.Brand, string(a.Category), strconv.Itoa(a.StockQuantity)})
		}

		rows = append(rows, []string{}, []string{"CATEGORY BREAKDOWN"},
			[]string{"Category", "Products", "Stock", "Inventory Value", "Low Stock"})
		for _, c := range inv.Categories {
			rows = append(rows, []string{
				c.Category.DisplayName(),
				strconv.Itoa(c.ProductCount),
				strconv.Itoa(c.TotalStock),
				money(c.InventoryValue),
				strconv.Itoa(c.LowStockCount),
			})
		}
	}

	if p := snap.Profit; p != nil {
		rows = append(rows, []string{}, []string{"PROFIT SUMMARY"},
			[]string{"Revenue", money(p.Revenue)},
			[]string{"Cost of Goods", money(p.CostOfGoods)},
			[]string{"Gross Profit", money(p.GrossProfit)},
			[]string{"Margin %", p.MarginPercent.StringFixed(2)},
			[]string{"Unmatched Items", strconv.Itoa(p.UnmatchedItems)},
		)
	}

	if s := snap.Suppliers; s != nil {
		rows = append(rows, []string{}, []string{"SUPPLIER SUMMARY"}, []string{"Status", "Count"})
		for _, st := range []supplier.Status{supplier.StatusPending, supplier.StatusApproved, supplier.StatusSuspended, supplier.StatusRejected} {
			rows = append(rows, []string{string(st), strconv.Itoa(s.ByStatus[st])})
		}
		rows = append(rows, []string{"Total", strconv.Itoa(s.Total)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func sortedRevenue(m map[string]decimal.Decimal) [][]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, money(m[k])})
	}
	return rows
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
