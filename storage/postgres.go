package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"customer-analytics/models"
	"customer-analytics/utils"

	_ "github.com/lib/pq"
)

// PostgresSource loads the dataset tables from PostgreSQL.
type PostgresSource struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresSource opens the connection and pings it with retries.
func NewPostgresSource(connStr string, maxRetries int, logger *utils.Logger) (*PostgresSource, error) {
	db, err := openDB("postgres", connStr, maxRetries, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresSource{db: db, logger: logger}, nil
}

// Load reads the required tables and degrades gracefully when the
// optional ones are absent.
func (s *PostgresSource) Load(ctx context.Context) (*models.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT customer_id, age, gender, customer_segment, registration_date, is_churned FROM customers`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.CustomerID, &c.Age, &c.Gender, &c.Segment, &c.RegistrationDate, &c.IsChurned); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	rows.Close()

	ds, err := s.loadNonCustomerTables(ctx)
	if err != nil {
		return nil, err
	}
	ds.Customers = customers

	s.logger.Info("Loaded dataset from PostgreSQL: %d customers, %d products, %d transactions, %d tickets",
		len(ds.Customers), len(ds.Products), len(ds.Transactions), len(ds.SupportTickets))
	return ds, nil
}

// loadNonCustomerTables loads the tables whose scan code is identical
// across the SQL drivers.
func (s *PostgresSource) loadNonCustomerTables(ctx context.Context) (*models.Dataset, error) {
	ds := &models.Dataset{}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, product_name, category, price FROM products`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.Price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		ds.Products = append(ds.Products, p)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT transaction_id, customer_id, product_id, transaction_date, quantity, unit_price, discount, total_amount FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.TransactionID, &t.CustomerID, &t.ProductID, &t.Date, &t.Quantity, &t.UnitPrice, &t.Discount, &t.TotalAmount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		ds.Transactions = append(ds.Transactions, t)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT ticket_id, customer_id, created_date, ticket_type, priority, status, resolution_time_hours FROM support_tickets`)
	if err != nil {
		s.logger.Warn("Support tickets unavailable (%v), continuing without them", err)
	} else {
		for rows.Next() {
			var t models.SupportTicket
			if err := rows.Scan(&t.TicketID, &t.CustomerID, &t.CreatedDate, &t.Type, &t.Priority, &t.Status, &t.ResolutionTimeHours); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan ticket: %w", err)
			}
			ds.SupportTickets = append(ds.SupportTickets, t)
		}
		rows.Close()
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT customer_id, churn_probability, predicted_clv FROM customer_predictions`)
	if err != nil {
		s.logger.Debug("Prior predictions unavailable (%v)", err)
	} else {
		for rows.Next() {
			var p models.PriorPrediction
			if err := rows.Scan(&p.CustomerID, &p.ChurnProbability, &p.PredictedValue); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan prior prediction: %w", err)
			}
			ds.PriorPredictions = append(ds.PriorPredictions, p)
		}
		rows.Close()
	}

	return ds, nil
}

// Close closes the database connection.
func (s *PostgresSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// PostgresSink stores run results as JSON rows in PostgreSQL.
type PostgresSink struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresSink opens the connection and ensures the results table
// exists.
func NewPostgresSink(connStr string, maxRetries int, logger *utils.Logger) (*PostgresSink, error) {
	db, err := openDB("postgres", connStr, maxRetries, logger)
	if err != nil {
		return nil, err
	}
	sink := &PostgresSink{db: db, logger: logger}
	if err := sink.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *PostgresSink) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		run_id       TEXT PRIMARY KEY,
		generated_at TIMESTAMP NOT NULL,
		results      JSONB     NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analysis_runs_generated_at ON analysis_runs (generated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	s.logger.Info("Table 'analysis_runs' is ready")
	return nil
}

// Save inserts one run, skipping duplicates by run id.
func (s *PostgresSink) Save(results *models.Results) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO analysis_runs (run_id, generated_at, results)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO NOTHING
	`, results.RunID, results.GeneratedAt, payload)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	s.logger.Info("Run %s stored in PostgreSQL", results.RunID)
	return nil
}

// Close closes the database connection.
func (s *PostgresSink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// openDB opens a database/sql handle and verifies it with retried pings.
func openDB(driver, connStr string, maxRetries int, logger *utils.Logger) (*sql.DB, error) {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if maxRetries < 1 {
		maxRetries = 1
	}
	if err := utils.RetryWithBackoff("ping "+driver, maxRetries, db.Ping, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
