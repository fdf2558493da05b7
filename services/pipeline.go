package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"customer-analytics/ml"
	"customer-analytics/models"
	"customer-analytics/utils"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

// ErrEmptyDataset indicates the required customer table had no rows.
var ErrEmptyDataset = errors.New("customer table is empty")

const churnHistogramBins = 20

// Pipeline runs the full prediction analysis. Each Run rebuilds the
// feature table and retrains both models from scratch: nothing is
// shared between invocations, so repeated runs over a changed dataset
// stay correct and reproducible.
type Pipeline struct {
	logger       *utils.Logger
	features     *FeatureBuilder
	churn        *ChurnClassifier
	value        *ValueRegressor
	trend        *TrendForecaster
	risk         *RiskSegmenter
	showProgress bool
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(logger *utils.Logger, topProducts int, showProgress bool) *Pipeline {
	return &Pipeline{
		logger:       logger,
		features:     NewFeatureBuilder(logger),
		churn:        NewChurnClassifier(logger),
		value:        NewValueRegressor(logger),
		trend:        NewTrendForecaster(logger, topProducts),
		risk:         NewRiskSegmenter(logger),
		showProgress: showProgress,
	}
}

// Run executes feature building, the three model stages and risk
// segmentation over ds. Contract degradations (single-class labels, no
// active customers) become not-computable results with a stable shape;
// any other failure aborts the run with an error instead of returning
// partial data.
func (p *Pipeline) Run(ctx context.Context, ds *models.Dataset) (*models.Results, error) {
	if ds == nil || len(ds.Customers) == 0 {
		return nil, ErrEmptyDataset
	}

	var bar *progressbar.ProgressBar
	if p.showProgress {
		bar = progressbar.Default(5)
	}
	step := func() {
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	results := &models.Results{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Dataset:     summarizeDataset(ds),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	feats := p.features.Build(ds)
	step()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	churnScored := true
	churnReport, err := p.churn.Analyze(feats)
	switch {
	case errors.Is(err, ml.ErrTooFewClassSamples):
		p.logger.Warn("Churn model not computable: %v", err)
		churnScored = false
		churnReport = &models.ChurnReport{
			Message: "churn model not computable: training labels contain fewer than 2 examples of a class",
			Summary: models.ChurnSummary{TotalCustomers: len(feats)},
		}
	case err != nil:
		return nil, fmt.Errorf("churn prediction: %w", err)
	default:
		results.ModelPerformance.ChurnModel = &models.ModelInfo{
			ModelType:      "Random Forest Classifier",
			FeaturesUsed:   len(churnFeatureNames),
			TrainingStatus: "Trained",
		}
	}
	results.Churn = churnReport
	step()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clvReport, err := p.value.Analyze(feats)
	switch {
	case errors.Is(err, ErrNoActiveCustomers):
		p.logger.Warn("Value model not computable: %v", err)
		clvReport = &models.CLVReport{Message: "no active customers for value prediction"}
	case errors.Is(err, ml.ErrTooFewSamples):
		p.logger.Warn("Value model not computable: %v", err)
		clvReport = &models.CLVReport{Message: "too few active customers to train the value model"}
	case err != nil:
		return nil, fmt.Errorf("value prediction: %w", err)
	default:
		results.ModelPerformance.CLVModel = &models.ModelInfo{
			ModelType:      "Random Forest Regressor",
			FeaturesUsed:   len(clvFeatureNames),
			TrainingStatus: "Trained",
		}
	}
	results.CLV = clvReport
	step()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results.Sales = p.trend.ForecastSales(ds.Transactions)
	results.Demand = p.trend.ForecastDemand(ds.Transactions, ds.Products)
	step()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results.Risk = p.risk.Analyze(feats, churnScored)
	results.Charts = buildCharts(feats, results.Sales, churnScored)
	results.PriorPredictions = summarizePrior(ds.PriorPredictions)
	step()

	p.logger.Info("Analysis run %s complete", results.RunID)
	return results, nil
}

func summarizeDataset(ds *models.Dataset) models.DatasetSummary {
	s := models.DatasetSummary{
		TotalCustomers:    len(ds.Customers),
		TotalProducts:     len(ds.Products),
		TotalTransactions: len(ds.Transactions),
		SupportTickets:    len(ds.SupportTickets),
	}
	for _, t := range ds.Transactions {
		s.TotalRevenue += t.Total()
	}
	if len(ds.Transactions) > 0 {
		s.AvgOrderValue = s.TotalRevenue / float64(len(ds.Transactions))
	}
	return s
}

// buildCharts shapes the series consumed by the external presentation
// layer: a churn-probability histogram and the forecast line.
func buildCharts(feats []*models.CustomerFeatures, sales *models.SalesForecast, churnScored bool) models.Charts {
	charts := models.Charts{}

	if churnScored {
		probs := make([]float64, len(feats))
		for i, f := range feats {
			probs[i] = f.ChurnProbability
		}
		edges, counts := ml.Histogram(probs, churnHistogramBins)
		charts.ChurnDistribution = &models.HistogramSeries{
			X:     edges,
			Y:     counts,
			Type:  "histogram",
			Title: "Churn Probability Distribution",
		}
	}

	days := make([]int, len(sales.Next7Days))
	for i := range days {
		days[i] = i + 1
	}
	charts.SalesForecast = &models.LineSeries{
		X:     days,
		Y:     sales.Next7Days,
		Type:  "line",
		Title: "Next 7 Days Sales Forecast",
	}
	return charts
}

func summarizePrior(prior []models.PriorPrediction) *models.PriorPredSummary {
	if len(prior) == 0 {
		return nil
	}
	s := &models.PriorPredSummary{Count: len(prior)}
	for _, p := range prior {
		s.AvgPriorChurnProbability += p.ChurnProbability
		s.AvgPriorPredictedValue += p.PredictedValue
	}
	s.AvgPriorChurnProbability /= float64(len(prior))
	s.AvgPriorPredictedValue /= float64(len(prior))
	return s
}
