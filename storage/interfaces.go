package storage

import (
	"context"

	"customer-analytics/models"
)

// DatasetSource loads the input tables for one pipeline run. Optional
// tables (support tickets, prior predictions) come back empty when the
// source does not carry them; only the required tables are fatal.
type DatasetSource interface {
	Load(ctx context.Context) (*models.Dataset, error)
	Close() error
}

// ResultsSink persists the output of a pipeline run.
type ResultsSink interface {
	Save(results *models.Results) error
	Close() error
}
