package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"customer-analytics/models"
	"customer-analytics/utils"
)

// File names expected inside the dataset directory.
const (
	customersFile    = "customers.csv"
	productsFile     = "products.csv"
	transactionsFile = "transactions.csv"
	ticketsFile      = "support_tickets.csv"
	predictionsFile  = "customer_predictions.csv"
)

// CSVSource loads the dataset from delimited files in a directory.
type CSVSource struct {
	dir    string
	logger *utils.Logger
}

// NewCSVSource creates a new CSVSource reading from dir.
func NewCSVSource(dir string, logger *utils.Logger) *CSVSource {
	return &CSVSource{dir: dir, logger: logger}
}

// Load reads the three required tables and the two optional ones.
// Missing optional files degrade to empty tables with a warning.
func (s *CSVSource) Load(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := &models.Dataset{}

	rows, err := readTable(filepath.Join(s.dir, customersFile))
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	for _, r := range rows {
		ds.Customers = append(ds.Customers, models.Customer{
			CustomerID:       r.intVal("customer_id"),
			Age:              r.intVal("age"),
			Gender:           r.str("gender"),
			Segment:          r.str("customer_segment"),
			RegistrationDate: r.dateVal("registration_date"),
			IsChurned:        r.boolVal("is_churned"),
		})
	}

	rows, err = readTable(filepath.Join(s.dir, productsFile))
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	for _, r := range rows {
		ds.Products = append(ds.Products, models.Product{
			ProductID: r.intVal("product_id"),
			Name:      r.str("product_name"),
			Category:  r.str("category"),
			Price:     r.floatVal("price"),
		})
	}

	rows, err = readTable(filepath.Join(s.dir, transactionsFile))
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	for _, r := range rows {
		ds.Transactions = append(ds.Transactions, models.Transaction{
			TransactionID: r.intVal("transaction_id"),
			CustomerID:    r.intVal("customer_id"),
			ProductID:     r.intVal("product_id"),
			Date:          r.dateVal("transaction_date"),
			Quantity:      r.intVal("quantity"),
			UnitPrice:     r.floatVal("unit_price"),
			Discount:      r.floatVal("discount"),
			TotalAmount:   r.floatVal("total_amount"),
		})
	}

	rows, err = readTable(filepath.Join(s.dir, ticketsFile))
	if err != nil {
		s.logger.Warn("Support tickets unavailable (%v), continuing without them", err)
	} else {
		for _, r := range rows {
			ds.SupportTickets = append(ds.SupportTickets, models.SupportTicket{
				TicketID:            r.intVal("ticket_id"),
				CustomerID:          r.intVal("customer_id"),
				CreatedDate:         r.dateVal("created_date"),
				Type:                r.str("ticket_type"),
				Priority:            r.str("priority"),
				Status:              r.str("status"),
				ResolutionTimeHours: r.floatVal("resolution_time_hours"),
			})
		}
	}

	rows, err = readTable(filepath.Join(s.dir, predictionsFile))
	if err != nil {
		s.logger.Debug("Prior predictions unavailable (%v)", err)
	} else {
		for _, r := range rows {
			ds.PriorPredictions = append(ds.PriorPredictions, models.PriorPrediction{
				CustomerID:       r.intVal("customer_id"),
				ChurnProbability: r.floatVal("churn_probability"),
				PredictedValue:   r.floatVal("predicted_clv"),
			})
		}
	}

	s.logger.Info("Loaded dataset from %s: %d customers, %d products, %d transactions, %d tickets",
		s.dir, len(ds.Customers), len(ds.Products), len(ds.Transactions), len(ds.SupportTickets))
	return ds, nil
}

// Close implements DatasetSource; a CSV source holds no resources.
func (s *CSVSource) Close() error { return nil }

// record is one CSV row with named column access. Absent columns read
// as zero values, so optional columns never fail a load.
type record struct {
	cols map[string]int
	row  []string
}

func (r record) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r record) intVal(name string) int {
	v, err := strconv.Atoi(r.str(name))
	if err != nil {
		return 0
	}
	return v
}

func (r record) floatVal(name string) float64 {
	v, err := strconv.ParseFloat(r.str(name), 64)
	if err != nil {
		return 0
	}
	return v
}

func (r record) boolVal(name string) bool {
	switch strings.ToLower(r.str(name)) {
	case "1", "true", "t", "yes":
		return true
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func (r record) dateVal(name string) time.Time {
	raw := r.str(name)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func readTable(path string) ([]record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(raw[0]))
	for i, name := range raw[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	records := make([]record, 0, len(raw)-1)
	for _, row := range raw[1:] {
		records = append(records, record{cols: cols, row: row})
	}
	return records, nil
}
