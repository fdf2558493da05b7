package services

import (
	"math"
	"sort"

	"customer-analytics/ml"
	"customer-analytics/models"
	"customer-analytics/utils"
)

const (
	forecastHorizon  = 7  // forecast length is fixed regardless of input
	recentWindowDays = 30 // trailing window feeding the growth estimate
	growthWindow     = 7
)

// TrendForecaster extrapolates aggregate revenue over a short horizon
// and ranks product demand. It fits no time-series model: a recent
// growth rate compounded forward is deliberately all there is, which
// keeps the forecast robust on small noisy datasets.
type TrendForecaster struct {
	logger      *utils.Logger
	topProducts int
}

// NewTrendForecaster creates a new TrendForecaster keeping topProducts
// entries in the demand ranking.
func NewTrendForecaster(logger *utils.Logger, topProducts int) *TrendForecaster {
	if topProducts <= 0 {
		topProducts = 20
	}
	return &TrendForecaster{logger: logger, topProducts: topProducts}
}

type dailyPoint struct {
	day       string
	revenue   float64
	orders    int
	customers map[int]struct{}
}

// ForecastSales aggregates transactions by day and extrapolates the
// next 7 days of revenue from the recent growth rate.
func (t *TrendForecaster) ForecastSales(txs []models.Transaction) *models.SalesForecast {
	byDay := make(map[string]*dailyPoint)
	for _, tx := range txs {
		key := tx.Date.Format("2006-01-02")
		d := byDay[key]
		if d == nil {
			d = &dailyPoint{day: key, customers: make(map[int]struct{})}
			byDay[key] = d
		}
		d.revenue += tx.Total()
		d.orders++
		d.customers[tx.CustomerID] = struct{}{}
	}
	daily := make([]*dailyPoint, 0, len(byDay))
	for _, d := range byDay {
		daily = append(daily, d)
	}
	sort.Slice(daily, func(a, b int) bool { return daily[a].day < daily[b].day })

	recent := daily
	if len(recent) > recentWindowDays {
		recent = recent[len(recent)-recentWindowDays:]
	}

	revenues := func(points []*dailyPoint) []float64 {
		out := make([]float64, len(points))
		for i, p := range points {
			out[i] = p.revenue
		}
		return out
	}

	// Growth compares the last week of the window against its first
	// week. A zero prior-week mean or a too-short series means no
	// growth signal, never a division by zero.
	growth := 0.0
	if len(recent) >= growthWindow {
		recentAvg := ml.Mean(revenues(recent[len(recent)-growthWindow:]))
		previousAvg := ml.Mean(revenues(recent[:growthWindow]))
		if previousAvg > 0 {
			growth = (recentAvg - previousAvg) / previousAvg
		}
	}

	lastWeek := daily
	if len(lastWeek) > growthWindow {
		lastWeek = lastWeek[len(lastWeek)-growthWindow:]
	}
	baseline := ml.Mean(revenues(lastWeek))

	forecast := make([]float64, forecastHorizon)
	var total float64
	for i := range forecast {
		forecast[i] = baseline * math.Pow(1+growth, float64(i+1))
		total += forecast[i]
	}

	var orderSum, customerSum float64
	for _, p := range recent {
		orderSum += float64(p.orders)
		customerSum += float64(len(p.customers))
	}
	perf := models.RecentPerformance{
		AvgDailyRevenue: ml.Mean(revenues(recent)),
		GrowthRatePct:   growth * 100,
	}
	if len(recent) > 0 {
		perf.AvgDailyOrders = orderSum / float64(len(recent))
		perf.AvgDailyCustomers = customerSum / float64(len(recent))
	}

	t.logger.Debug("Sales forecast: baseline=%.2f growth=%.2f%% over %d days of history",
		baseline, growth*100, len(daily))
	return &models.SalesForecast{
		RecentPerformance: perf,
		Next7Days:         forecast,
		ForecastTotal:     total,
	}
}

// ForecastDemand ranks the top products by quantity sold, scoring each
// against the maximum of the ranked set, plus per-category totals.
func (t *TrendForecaster) ForecastDemand(txs []models.Transaction, products []models.Product) *models.DemandForecast {
	catalog := make(map[int]models.Product, len(products))
	for _, p := range products {
		catalog[p.ProductID] = p
	}

	type productAgg struct {
		id       int
		quantity int
		revenue  float64
	}
	byProduct := make(map[int]*productAgg)
	byCategory := make(map[string]*models.CategoryDemand)
	for _, tx := range txs {
		a := byProduct[tx.ProductID]
		if a == nil {
			a = &productAgg{id: tx.ProductID}
			byProduct[tx.ProductID] = a
		}
		a.quantity += tx.Quantity
		a.revenue += tx.Total()

		if p, ok := catalog[tx.ProductID]; ok {
			c := byCategory[p.Category]
			if c == nil {
				c = &models.CategoryDemand{Category: p.Category}
				byCategory[p.Category] = c
			}
			c.TotalQuantity += tx.Quantity
			c.TotalRevenue += tx.Total()
		}
	}

	ranked := make([]*productAgg, 0, len(byProduct))
	for _, a := range byProduct {
		ranked = append(ranked, a)
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].quantity != ranked[b].quantity {
			return ranked[a].quantity > ranked[b].quantity
		}
		return ranked[a].id < ranked[b].id
	})
	if len(ranked) > t.topProducts {
		ranked = ranked[:t.topProducts]
	}

	maxQuantity := 1
	if len(ranked) > 0 && ranked[0].quantity > 0 {
		maxQuantity = ranked[0].quantity
	}

	top := make([]models.ProductDemand, len(ranked))
	for i, a := range ranked {
		p := catalog[a.id]
		top[i] = models.ProductDemand{
			ProductID:     a.id,
			ProductName:   p.Name,
			Category:      p.Category,
			TotalQuantity: a.quantity,
			TotalRevenue:  a.revenue,
			DemandScore:   float64(a.quantity) / float64(maxQuantity),
		}
	}

	categories := make([]models.CategoryDemand, 0, len(byCategory))
	for _, c := range byCategory {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(a, b int) bool {
		if categories[a].TotalQuantity != categories[b].TotalQuantity {
			return categories[a].TotalQuantity > categories[b].TotalQuantity
		}
		return categories[a].Category < categories[b].Category
	})

	return &models.DemandForecast{TopProducts: top, CategoryDemand: categories}
}
