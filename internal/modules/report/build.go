package report

import (
	"sort"
	"time"

	"github.com/georgemunganga/kbeauty-backend/internal/modules/catalog"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/order"
	"github.com/georgemunganga/kbeauty-backend/internal/modules/supplier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Build computes a snapshot from in. It has no side effects and the output
// depends only on its arguments. Orders created before the period start are
// ignored even if the caller passed them in.
func Build(in Input, t Type, p Period, now time.Time, lowStockThreshold int) *Snapshot {
	snap := &Snapshot{Type: t, Period: p, GeneratedAt: now}
	since := Since(p, now)
	if !since.IsZero() {
		snap.Since = &since
	}

	orders := make([]*order.Order, 0, len(in.Orders))
	for _, o := range in.Orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		orders = append(orders, o)
	}

	if t == TypeSales || t == TypeFull {
		snap.Sales = buildSales(orders, now.Location())
		snap.Profit = buildProfit(orders, in.Products, snap.Sales.TotalRevenue)
	}
	if t == TypeInventory || t == TypeFull {
		snap.Inventory = buildInventory(in.Products, lowStockThreshold)
	}
	if t == TypeFull {
		snap.Suppliers = buildSuppliers(in.Suppliers)
	}
	return snap
}

// countsAsRevenue excludes orders whose money went back to the customer.
func countsAsRevenue(s order.Status) bool {
	return s != order.StatusCancelled && s != order.StatusReturned
}

func buildSales(orders []*order.Order, loc *time.Location) *SalesSummary {
	s := &SalesSummary{
		OrdersByStatus:    map[order.Status]int{},
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		RevenueByDay:      map[string]decimal.Decimal{},
		RevenueByMonth:    map[string]decimal.Decimal{},
	}
	for _, st := range order.Statuses() {
		s.OrdersByStatus[st] = 0
	}

	for _, o := range orders {
		s.OrdersByStatus[o.Status]++
		s.TotalOrders++
		if !countsAsRevenue(o.Status) {
			continue
		}
		s.OrderCount++
		s.TotalRevenue = s.TotalRevenue.Add(o.Total)

		at := o.CreatedAt.In(loc)
		day, month := at.Format(dayLayout), at.Format(monthLayout)
		s.RevenueByDay[day] = s.RevenueByDay[day].Add(o.Total)
		s.RevenueByMonth[month] = s.RevenueByMonth[month].Add(o.Total)
	}

	if s.OrderCount > 0 {
		s.AverageOrderValue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.OrderCount))).Round(2)
	}
	return s
}

func buildInventory(products []*catalog.Product, lowStockThreshold int) *InventorySummary {
	inv := &InventorySummary{InventoryValue: decimal.Zero, LowStock: []StockAlert{}}
	rollups := map[catalog.Category]*CategoryRollup{}
	for _, c := range catalog.Categories() {
		rollups[c] = &CategoryRollup{Category: c, InventoryValue: decimal.Zero}
	}

	for _, p := range products {
		value := p.CostPrice.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
		// Out-of-stock products are also low stock.
		low := p.StockQuantity < lowStockThreshold

		inv.ProductCount++
		if p.IsActive {
			inv.ActiveCount++
		}
		inv.TotalStock += p.StockQuantity
		inv.InventoryValue = inv.InventoryValue.Add(value)
		if p.StockQuantity == 0 {
			inv.OutOfStockCount++
		}
		if low {
			inv.LowStockCount++
			inv.LowStock = append(inv.LowStock, StockAlert{
				ProductID:     p.ID,
				Name:          p.Name,
				Brand:         p.Brand,
				Category:      p.Category,
				StockQuantity: p.StockQuantity,
			})
		}

		r, ok := rollups[p.Category]
		if !ok {
			r = &CategoryRollup{Category: p.Category, InventoryValue: decimal.Zero}
			rollups[p.Category] = r
		}
		r.ProductCount++
		r.TotalStock += p.StockQuantity
		r.InventoryValue = r.InventoryValue.Add(value)
		if low {
			r.LowStockCount++
		}
	}

	sort.SliceStable(inv.LowStock, func(i, j int) bool {
		a, b := inv.LowStock[i], inv.LowStock[j]
		if a.StockQuantity != b.StockQuantity {
			return a.StockQuantity < b.StockQuantity
		}
		return a.Name < b.Name
	})

	for _, c := range catalog.Categories() {
		inv.Categories = append(inv.Categories, *rollups[c])
		delete(rollups, c)
	}
	// Categories outside the known set still get a row, in slug order.
	var extra []catalog.Category
	for c := range rollups {
		extra = append(extra, c)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, c := range extra {
		inv.Categories = append(inv.Categories, *rollups[c])
	}
	return inv
}

func buildProfit(orders []*order.Order, products []*catalog.Product, revenue decimal.Decimal) *ProfitSummary {
	cost := make(map[uuid.UUID]decimal.Decimal, len(products))
	for _, p := range products {
		cost[p.ID] = p.CostPrice
	}

	ps := &ProfitSummary{Revenue: revenue, CostOfGoods: decimal.Zero, MarginPercent: decimal.Zero}
	for _, o := range orders {
		if !countsAsRevenue(o.Status) {
			continue
		}
		items, err := order.DecodeItems(o.Items)
		if err != nil {
			ps.UnmatchedItems++
			continue
		}
		for _, it := range items {
			c, ok := cost[it.ProductID]
			if !ok {
				ps.UnmatchedItems++
				continue
			}
			ps.CostOfGoods = ps.CostOfGoods.Add(c.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}

	ps.GrossProfit = revenue.Sub(ps.CostOfGoods)
	if revenue.IsPositive() {
		ps.MarginPercent = ps.GrossProfit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return ps
}

func buildSuppliers(suppliers []*supplier.Supplier) *SupplierSummary {
	s := &SupplierSummary{ByStatus: map[supplier.Status]int{
		supplier.StatusPending:   0,
		supplier.StatusApproved:  0,
		supplier.StatusSuspended: 0,
		supplier.StatusRejected:  0,
	}}
	for _, sup := range suppliers {
		s.Total++
		s.ByStatus[sup.Status]++
	}
	return s
}
