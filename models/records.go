package models

import "time"

// Customer represents one row of the customer table. IsChurned is the
// ground-truth label used for classifier training.
type Customer struct {
	CustomerID       int
	Age              int
	Gender           string
	Segment          string
	RegistrationDate time.Time
	IsChurned        bool
}

// Product represents one row of the product catalog.
type Product struct {
	ProductID int
	Name      string
	Category  string
	Price     float64
}

// Transaction represents a single purchase event. TotalAmount is
// UnitPrice * Quantity * (1 - Discount) when not supplied by the source.
type Transaction struct {
	TransactionID int
	CustomerID    int
	ProductID     int
	Date          time.Time
	Quantity      int
	UnitPrice     float64
	Discount      float64
	TotalAmount   float64
}

// Total returns the transaction amount, deriving it from price, quantity
// and discount when the source did not carry a precomputed column.
func (t Transaction) Total() float64 {
	if t.TotalAmount > 0 {
		return t.TotalAmount
	}
	return t.UnitPrice * float64(t.Quantity) * (1 - t.Discount)
}

// SupportTicket represents one customer support ticket. The table is
// optional: an absent source yields an empty slice.
type SupportTicket struct {
	TicketID            int
	CustomerID          int
	CreatedDate         time.Time
	Type                string
	Priority            string
	Status              string
	ResolutionTimeHours float64
}

// PriorPrediction is one row of the optional prior-model predictions
// table, carried through for comparison with the fresh run.
type PriorPrediction struct {
	CustomerID       int
	ChurnProbability float64
	PredictedValue   float64
}

// Dataset bundles the input tables for one pipeline invocation. The
// pipeline never mutates it; every run derives fresh structures.
type Dataset struct {
	Customers        []Customer
	Products         []Product
	Transactions     []Transaction
	SupportTickets   []SupportTicket
	PriorPredictions []PriorPrediction
}

// CustomerFeatures is the derived per-customer feature row. It is
// rebuilt on every run and never persisted.
type CustomerFeatures struct {
	CustomerID int
	Age        float64
	IsChurned  bool

	TotalSpent        float64
	AvgOrderValue     float64
	OrderValueStd     float64
	TransactionCount  float64
	TotalQuantity     float64
	AvgQuantity       float64
	AvgDiscount       float64
	FirstPurchase     time.Time
	LastPurchase      time.Time
	DaysActive        float64
	DaysSinceLast     float64
	PurchaseFrequency float64

	SupportTickets      float64
	AvgResolutionTime   float64
	HighPriorityTickets float64

	GenderCode  float64
	SegmentCode float64

	// ChurnProbability is filled in by the churn classifier for every
	// customer; zero until scoring has run.
	ChurnProbability float64
}
