package services

import (
	"customer-analytics/ml"
	"customer-analytics/models"
	"customer-analytics/utils"
)

// Risk bucket boundaries on churn probability. Independent from the
// churn summary thresholds in churn.go: the buckets are a coarser
// three-way partition for the risk table.
const (
	riskLowMax    = 0.30
	riskMediumMax = 0.60
)

const highValuePercentile = 0.75

var riskLabels = [3]string{"Low Risk", "Medium Risk", "High Risk"}

// RiskSegmenter partitions customers into risk buckets by churn
// probability and flags high-value customers at risk.
type RiskSegmenter struct {
	logger *utils.Logger
}

// NewRiskSegmenter creates a new RiskSegmenter
func NewRiskSegmenter(logger *utils.Logger) *RiskSegmenter {
	return &RiskSegmenter{logger: logger}
}

// Analyze assigns every customer to exactly one of three buckets:
// Low [0,0.3], Medium (0.3,0.6], High (0.6,1.0]. churnScored reports
// whether churn probabilities were populated; without them the risk
// view is explicitly not computable.
func (r *RiskSegmenter) Analyze(feats []*models.CustomerFeatures, churnScored bool) *models.RiskReport {
	if !churnScored {
		return &models.RiskReport{Message: "churn predictions not available"}
	}

	buckets := make([]models.RiskBucket, len(riskLabels))
	probSums := make([]float64, len(riskLabels))
	for i, label := range riskLabels {
		buckets[i].Label = label
	}

	spends := make([]float64, len(feats))
	for i, f := range feats {
		spends[i] = f.TotalSpent
		b := riskBucket(f.ChurnProbability)
		buckets[b].CustomerCount++
		buckets[b].TotalValue += f.TotalSpent
		probSums[b] += f.ChurnProbability
	}
	for i := range buckets {
		if n := buckets[i].CustomerCount; n > 0 {
			buckets[i].AvgValue = buckets[i].TotalValue / float64(n)
			buckets[i].AvgChurnProb = probSums[i] / float64(n)
		}
	}

	highValueThreshold := ml.Quantile(spends, highValuePercentile)
	var hvar models.HighValueAtRisk
	var hvarProbSum float64
	for _, f := range feats {
		if f.ChurnProbability > HighRiskThreshold && f.TotalSpent > highValueThreshold {
			hvar.Count++
			hvar.TotalValue += f.TotalSpent
			hvarProbSum += f.ChurnProbability
		}
	}
	if hvar.Count > 0 {
		hvar.AvgChurnProbability = hvarProbSum / float64(hvar.Count)
	}

	r.logger.Info("Risk segmentation: low=%d medium=%d high=%d, %d high-value at risk",
		buckets[0].CustomerCount, buckets[1].CustomerCount, buckets[2].CustomerCount, hvar.Count)
	return &models.RiskReport{Segments: buckets, HighValueAtRisk: hvar}
}

func riskBucket(p float64) int {
	switch {
	case p <= riskLowMax:
		return 0
	case p <= riskMediumMax:
		return 1
	default:
		return 2
	}
}
