package services

import (
	"sort"

	"customer-analytics/ml"
	"customer-analytics/models"
	"customer-analytics/utils"
)

// FeatureBuilder joins the transaction, customer and support-ticket
// tables into one feature row per customer. Inputs are never mutated.
type FeatureBuilder struct {
	logger *utils.Logger
}

// NewFeatureBuilder creates a new FeatureBuilder
func NewFeatureBuilder(logger *utils.Logger) *FeatureBuilder {
	return &FeatureBuilder{logger: logger}
}

// Build produces exactly one feature row per customer in the customer
// table. Customers without transactions or tickets get zero-valued
// aggregates rather than being dropped.
func (b *FeatureBuilder) Build(ds *models.Dataset) []*models.CustomerFeatures {
	type txAgg struct {
		amounts     []float64
		quantity    int
		discountSum float64
		first, last int // indices into ds.Transactions for min/max date
	}

	agg := make(map[int]*txAgg)
	globalMax := -1
	for i, t := range ds.Transactions {
		a := agg[t.CustomerID]
		if a == nil {
			a = &txAgg{first: i, last: i}
			agg[t.CustomerID] = a
		}
		a.amounts = append(a.amounts, t.Total())
		a.quantity += t.Quantity
		a.discountSum += t.Discount
		if t.Date.Before(ds.Transactions[a.first].Date) {
			a.first = i
		}
		if t.Date.After(ds.Transactions[a.last].Date) {
			a.last = i
		}
		if globalMax < 0 || t.Date.After(ds.Transactions[globalMax].Date) {
			globalMax = i
		}
	}

	type ticketAgg struct {
		count         int
		resolutionSum float64
		highPriority  int
	}
	tickets := make(map[int]*ticketAgg)
	for _, tk := range ds.SupportTickets {
		a := tickets[tk.CustomerID]
		if a == nil {
			a = &ticketAgg{}
			tickets[tk.CustomerID] = a
		}
		a.count++
		a.resolutionSum += tk.ResolutionTimeHours
		if tk.Priority == "High" || tk.Priority == "Critical" {
			a.highPriority++
		}
	}

	genders := make([]string, len(ds.Customers))
	segments := make([]string, len(ds.Customers))
	for i, c := range ds.Customers {
		genders[i] = c.Gender
		segments[i] = c.Segment
	}
	genderCodes := encodeLabels(genders)
	segmentCodes := encodeLabels(segments)

	rows := make([]*models.CustomerFeatures, 0, len(ds.Customers))
	withTx := 0
	for _, c := range ds.Customers {
		f := &models.CustomerFeatures{
			CustomerID:  c.CustomerID,
			Age:         float64(c.Age),
			IsChurned:   c.IsChurned,
			GenderCode:  float64(genderCodes[c.Gender]),
			SegmentCode: float64(segmentCodes[c.Segment]),
		}
		if a := agg[c.CustomerID]; a != nil {
			withTx++
			n := float64(len(a.amounts))
			for _, amt := range a.amounts {
				f.TotalSpent += amt
			}
			f.AvgOrderValue = f.TotalSpent / n
			f.OrderValueStd = ml.SampleStd(a.amounts)
			f.TransactionCount = n
			f.TotalQuantity = float64(a.quantity)
			f.AvgQuantity = float64(a.quantity) / n
			f.AvgDiscount = a.discountSum / n
			f.FirstPurchase = ds.Transactions[a.first].Date
			f.LastPurchase = ds.Transactions[a.last].Date
			f.DaysActive = f.LastPurchase.Sub(f.FirstPurchase).Hours() / 24
			f.DaysSinceLast = ds.Transactions[globalMax].Date.Sub(f.LastPurchase).Hours() / 24
			// +1 guards the single-purchase case where DaysActive is 0.
			f.PurchaseFrequency = n / (f.DaysActive + 1)
		}
		if a := tickets[c.CustomerID]; a != nil {
			f.SupportTickets = float64(a.count)
			f.AvgResolutionTime = a.resolutionSum / float64(a.count)
			f.HighPriorityTickets = float64(a.highPriority)
		}
		rows = append(rows, f)
	}

	b.logger.Info("Built feature table: %d customers (%d with transactions, %d with tickets)",
		len(rows), withTx, len(tickets))
	return rows
}

// encodeLabels maps distinct labels to small integer codes. Codes are
// assigned from the sorted distinct set, so they are deterministic for
// a given dataset but not stable across datasets.
func encodeLabels(labels []string) map[string]int {
	distinct := make(map[string]struct{})
	for _, l := range labels {
		distinct[l] = struct{}{}
	}
	sorted := make([]string, 0, len(distinct))
	for l := range distinct {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)

	codes := make(map[string]int, len(sorted))
	for i, l := range sorted {
		codes[l] = i
	}
	return codes
}
