package storage

import (
	"context"
	"fmt"

	"customer-analytics/models"
	"customer-analytics/utils"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLSource loads the dataset tables from MySQL/MariaDB. The DSN
// must enable parseTime so date columns scan into time.Time.
type MySQLSource struct {
	pg PostgresSource // same schema and query set; only the driver differs
}

// NewMySQLSource opens the connection and pings it with retries.
func NewMySQLSource(dsn string, maxRetries int, logger *utils.Logger) (*MySQLSource, error) {
	db, err := openDB("mysql", dsn, maxRetries, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to MySQL successfully")
	return &MySQLSource{pg: PostgresSource{db: db, logger: logger}}, nil
}

// Load reads the same table layout as the PostgreSQL source. Churn
// flags stored as TINYINT scan through an integer bridge.
func (s *MySQLSource) Load(ctx context.Context) (*models.Dataset, error) {
	rows, err := s.pg.db.QueryContext(ctx,
		`SELECT customer_id, age, gender, customer_segment, registration_date, is_churned FROM customers`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		var churned int
		if err := rows.Scan(&c.CustomerID, &c.Age, &c.Gender, &c.Segment, &c.RegistrationDate, &churned); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.IsChurned = churned != 0
		customers = append(customers, c)
	}
	rows.Close()

	// Everything past the churn flag is driver-agnostic.
	ds, err := s.pg.loadNonCustomerTables(ctx)
	if err != nil {
		return nil, err
	}
	ds.Customers = customers

	s.pg.logger.Info("Loaded dataset from MySQL: %d customers, %d products, %d transactions, %d tickets",
		len(ds.Customers), len(ds.Products), len(ds.Transactions), len(ds.SupportTickets))
	return ds, nil
}

// Close closes the database connection.
func (s *MySQLSource) Close() error { return s.pg.Close() }
