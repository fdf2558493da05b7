package services

import (
	"fmt"
	"sort"

	"customer-analytics/ml"
	"customer-analytics/models"
	"customer-analytics/utils"
)

// Churn summary thresholds. These are deliberately independent from the
// risk-bucket boundaries in risk.go: the summary counts and the risk
// partition serve different downstream consumers.
const (
	// HighRiskThreshold marks a customer as high risk in the churn summary.
	HighRiskThreshold = 0.70
	// PredictedChurnerThreshold counts a customer as a predicted churner.
	PredictedChurnerThreshold = 0.50
)

// Fixed model hyperparameters, chosen for stability rather than tuned
// per dataset. The seed makes split and training reproducible.
const (
	forestTrees  = 100
	forestDepth  = 10
	modelSeed    = 42
	testFraction = 0.2
)

var churnFeatureNames = []string{
	"age", "total_spent", "avg_order_value", "transaction_count",
	"purchase_frequency", "avg_discount", "days_since_last",
	"support_tickets", "avg_resolution_time", "high_priority_tickets",
	"gender_encoded", "segment_encoded",
}

func churnVector(f *models.CustomerFeatures) []float64 {
	return []float64{
		f.Age, f.TotalSpent, f.AvgOrderValue, f.TransactionCount,
		f.PurchaseFrequency, f.AvgDiscount, f.DaysSinceLast,
		f.SupportTickets, f.AvgResolutionTime, f.HighPriorityTickets,
		f.GenderCode, f.SegmentCode,
	}
}

// ChurnClassifier trains a random forest against the ground-truth churn
// flag and scores the whole customer population.
type ChurnClassifier struct {
	logger *utils.Logger
}

// NewChurnClassifier creates a new ChurnClassifier
func NewChurnClassifier(logger *utils.Logger) *ChurnClassifier {
	return &ChurnClassifier{logger: logger}
}

// Analyze fits the classifier on a stratified 80/20 split, reports
// held-out accuracy and feature importances, then populates
// ChurnProbability on every feature row. Single-class labels surface as
// ml.ErrTooFewClassSamples rather than a silently degraded split.
func (c *ChurnClassifier) Analyze(feats []*models.CustomerFeatures) (*models.ChurnReport, error) {
	X := make([][]float64, len(feats))
	y := make([]int, len(feats))
	for i, f := range feats {
		X[i] = churnVector(f)
		if f.IsChurned {
			y[i] = 1
		}
	}

	trainIdx, testIdx, err := ml.StratifiedSplit(y, testFraction, modelSeed)
	if err != nil {
		return nil, fmt.Errorf("churn split: %w", err)
	}

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = X[idx]
		trainY[i] = y[idx]
	}

	model, err := ml.TrainClassifier(trainX, trainY, ml.Config{
		Trees:    forestTrees,
		MaxDepth: forestDepth,
		Seed:     modelSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("churn training: %w", err)
	}

	// Evaluation measures generalization on the held-out split only.
	testTrue := make([]int, len(testIdx))
	testPred := make([]int, len(testIdx))
	for i, idx := range testIdx {
		testTrue[i] = y[idx]
		testPred[i] = model.Predict(X[idx])
	}
	accuracy := ml.Accuracy(testTrue, testPred)

	importances := model.FeatureImportances()
	ranked := make([]models.FeatureImportance, len(churnFeatureNames))
	for i, name := range churnFeatureNames {
		ranked[i] = models.FeatureImportance{Feature: name, Importance: importances[i]}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Importance > ranked[b].Importance
	})
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	// Downstream risk/value analysis needs a score for the whole base,
	// so every customer is re-scored, not just the held-out split.
	var probSum float64
	var highCount, churners int
	var highProbSum, highValue float64
	for i, f := range feats {
		p := model.PredictProba(X[i])
		f.ChurnProbability = p
		probSum += p
		if p > PredictedChurnerThreshold {
			churners++
		}
		if p > HighRiskThreshold {
			highCount++
			highProbSum += p
			highValue += f.TotalSpent
		}
	}

	report := &models.ChurnReport{
		ModelAccuracy:     accuracy,
		FeatureImportance: ranked,
		HighRisk: models.HighRiskSummary{
			Count:            highCount,
			TotalValueAtRisk: highValue,
		},
		Summary: models.ChurnSummary{
			TotalCustomers:      len(feats),
			PredictedChurners:   churners,
			AvgChurnProbability: probSum / float64(len(feats)),
		},
	}
	if highCount > 0 {
		report.HighRisk.AvgChurnProbability = highProbSum / float64(highCount)
	}

	c.logger.Info("Churn model: accuracy=%.3f, %d/%d predicted churners, %d high risk",
		accuracy, churners, len(feats), highCount)
	return report, nil
}
