package services

import (
	"errors"
	"fmt"

	"customer-analytics/ml"
	"customer-analytics/models"
	"customer-analytics/utils"
)

// ErrNoActiveCustomers indicates the value model had zero non-churned
// customers to fit on.
var ErrNoActiveCustomers = errors.New("no active customers for value prediction")

var clvFeatureNames = []string{
	"age", "transaction_count", "avg_order_value", "purchase_frequency",
	"days_active", "avg_discount", "gender_encoded", "segment_encoded",
}

var tierLabels = []string{"Low", "Medium", "High", "Premium"}

func clvVector(f *models.CustomerFeatures) []float64 {
	return []float64{
		f.Age, f.TransactionCount, f.AvgOrderValue, f.PurchaseFrequency,
		f.DaysActive, f.AvgDiscount, f.GenderCode, f.SegmentCode,
	}
}

// ValueRegressor predicts realized spend for active customers as a
// proxy for future value and segments them into quantile tiers.
type ValueRegressor struct {
	logger *utils.Logger
}

// NewValueRegressor creates a new ValueRegressor
func NewValueRegressor(logger *utils.Logger) *ValueRegressor {
	return &ValueRegressor{logger: logger}
}

// Analyze fits the regressor on the non-churned population with an
// 80/20 seeded split, reports R²/RMSE on the held-out part, then scores
// all active customers and buckets them into value tiers.
func (v *ValueRegressor) Analyze(feats []*models.CustomerFeatures) (*models.CLVReport, error) {
	var active []*models.CustomerFeatures
	for _, f := range feats {
		if !f.IsChurned {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return nil, ErrNoActiveCustomers
	}

	X := make([][]float64, len(active))
	y := make([]float64, len(active))
	for i, f := range active {
		X[i] = clvVector(f)
		y[i] = f.TotalSpent
	}

	trainIdx, testIdx, err := ml.TrainTestSplit(len(active), testFraction, modelSeed)
	if err != nil {
		return nil, fmt.Errorf("value split: %w", err)
	}

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = X[idx]
		trainY[i] = y[idx]
	}

	model, err := ml.TrainRegressor(trainX, trainY, ml.Config{
		Trees:    forestTrees,
		MaxDepth: forestDepth,
		Seed:     modelSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("value training: %w", err)
	}

	testTrue := make([]float64, len(testIdx))
	testPred := make([]float64, len(testIdx))
	for i, idx := range testIdx {
		testTrue[i] = y[idx]
		testPred[i] = model.Predict(X[idx])
	}

	predictions := make([]float64, len(active))
	var predSum float64
	for i := range active {
		predictions[i] = model.Predict(X[i])
		predSum += predictions[i]
	}

	tiers, labels := assignValueTiers(predictions)
	segments := make([]models.ValueTier, len(labels))
	for i, label := range labels {
		segments[i].Label = label
	}
	for i, tier := range tiers {
		segments[tier].CustomerCount++
		segments[tier].AvgPredictedValue += predictions[i]
		segments[tier].AvgCurrentSpent += active[i].TotalSpent
	}
	out := segments[:0]
	for _, s := range segments {
		if s.CustomerCount == 0 {
			continue
		}
		s.AvgPredictedValue /= float64(s.CustomerCount)
		s.AvgCurrentSpent /= float64(s.CustomerCount)
		out = append(out, s)
	}

	report := &models.CLVReport{
		Performance: models.RegressionMetrics{
			R2:   ml.R2(testTrue, testPred),
			RMSE: ml.RMSE(testTrue, testPred),
		},
		Segments: out,
		Summary: models.CLVSummary{
			TotalActiveCustomers: len(active),
			AvgPredictedCLV:      predSum / float64(len(active)),
			TotalCLVPotential:    predSum,
		},
	}

	v.logger.Info("Value model: R2=%.3f RMSE=%.2f over %d active customers in %d tiers",
		report.Performance.R2, report.Performance.RMSE, len(active), len(out))
	return report, nil
}

// assignValueTiers buckets predictions at the 25/50/75th percentiles.
// Duplicate boundaries are detected up front and dropped, so degenerate
// distributions collapse to fewer tiers instead of failing: the tiers
// always form a partition of the input.
func assignValueTiers(predictions []float64) (tiers []int, labels []string) {
	var edges []float64
	for _, q := range []float64{0.25, 0.50, 0.75} {
		e := ml.Quantile(predictions, q)
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	// An edge at or above the maximum would leave the top bucket empty;
	// it is still a valid boundary, so empty buckets are filtered by
	// the caller rather than here.

	labels = tierLabels[:len(edges)+1]
	tiers = make([]int, len(predictions))
	for i, p := range predictions {
		t := 0
		for _, e := range edges {
			if p > e {
				t++
			}
		}
		tiers[i] = t
	}
	return tiers, labels
}
