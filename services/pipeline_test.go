package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"customer-analytics/models"
)

func TestPipeline_FullRun(t *testing.T) {
	ds := scenarioDataset(100, 40)
	results, err := NewPipeline(testLogger(), 20, false).Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results.RunID == "" {
		t.Fatal("missing run id")
	}
	if results.Dataset.TotalCustomers != 100 {
		t.Fatalf("dataset summary has %d customers, want 100", results.Dataset.TotalCustomers)
	}
	if results.Churn == nil || results.Churn.Message != "" {
		t.Fatalf("churn report not computed: %+v", results.Churn)
	}
	if results.Churn.Summary.TotalCustomers != 100 {
		t.Fatalf("churn scored %d customers, want 100", results.Churn.Summary.TotalCustomers)
	}
	if results.CLV == nil || results.CLV.Message != "" {
		t.Fatalf("value report not computed: %+v", results.CLV)
	}
	if results.CLV.Summary.TotalActiveCustomers != 60 {
		t.Fatalf("value model scored %d active customers, want 60", results.CLV.Summary.TotalActiveCustomers)
	}
	if len(results.Sales.Next7Days) != 7 {
		t.Fatalf("forecast has %d days, want 7", len(results.Sales.Next7Days))
	}
	if results.Risk == nil || results.Risk.Message != "" {
		t.Fatalf("risk report not computed: %+v", results.Risk)
	}
	total := 0
	for _, b := range results.Risk.Segments {
		total += b.CustomerCount
	}
	if total != 100 {
		t.Fatalf("risk buckets cover %d customers, want 100", total)
	}
}

func TestPipeline_ModelMetadata(t *testing.T) {
	results, err := NewPipeline(testLogger(), 20, false).Run(context.Background(), scenarioDataset(100, 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	churn := results.ModelPerformance.ChurnModel
	if churn == nil || churn.ModelType != "Random Forest Classifier" || churn.FeaturesUsed != 12 {
		t.Fatalf("churn model metadata = %+v", churn)
	}
	clv := results.ModelPerformance.CLVModel
	if clv == nil || clv.ModelType != "Random Forest Regressor" || clv.FeaturesUsed != 8 {
		t.Fatalf("value model metadata = %+v", clv)
	}
}

func TestPipeline_Charts(t *testing.T) {
	results, err := NewPipeline(testLogger(), 20, false).Run(context.Background(), scenarioDataset(100, 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hist := results.Charts.ChurnDistribution
	if hist == nil {
		t.Fatal("missing churn distribution chart")
	}
	binTotal := 0
	for _, c := range hist.Y {
		binTotal += c
	}
	if binTotal != 100 {
		t.Fatalf("histogram bins cover %d customers, want 100", binTotal)
	}
	line := results.Charts.SalesForecast
	if line == nil || len(line.X) != 7 || len(line.Y) != 7 {
		t.Fatalf("forecast chart = %+v, want 7 points", line)
	}
}

func TestPipeline_SingleClassDegrades(t *testing.T) {
	// All-churned labels: the churn model cannot train, the value model
	// has nobody to score, and risk needs churn probabilities. The run
	// still succeeds with explicit not-computable results.
	results, err := NewPipeline(testLogger(), 20, false).Run(context.Background(), scenarioDataset(30, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.Churn.Message == "" {
		t.Fatal("expected a not-computable churn message")
	}
	if results.Churn.Summary.TotalCustomers != 30 {
		t.Fatalf("degraded churn summary has %d customers, want 30", results.Churn.Summary.TotalCustomers)
	}
	if results.CLV.Message == "" {
		t.Fatal("expected a not-computable value message")
	}
	if results.Risk.Message == "" {
		t.Fatal("expected a not-computable risk message")
	}
	if results.ModelPerformance.ChurnModel != nil || results.ModelPerformance.CLVModel != nil {
		t.Fatalf("untrained models reported as trained: %+v", results.ModelPerformance)
	}
	if results.Charts.ChurnDistribution != nil {
		t.Fatal("churn chart built without churn scores")
	}
	if len(results.Sales.Next7Days) != 7 {
		t.Fatal("sales forecast should survive model degradation")
	}
}

func TestPipeline_EmptyDataset(t *testing.T) {
	p := NewPipeline(testLogger(), 20, false)
	if _, err := p.Run(context.Background(), &models.Dataset{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("got %v, want ErrEmptyDataset", err)
	}
	if _, err := p.Run(context.Background(), nil); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("nil dataset: got %v, want ErrEmptyDataset", err)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPipeline(testLogger(), 20, false).Run(ctx, scenarioDataset(20, 8))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestPipeline_PriorPredictionsSummary(t *testing.T) {
	ds := scenarioDataset(100, 40)
	ds.PriorPredictions = []models.PriorPrediction{
		{CustomerID: 1, ChurnProbability: 0.2, PredictedValue: 100},
		{CustomerID: 2, ChurnProbability: 0.6, PredictedValue: 300},
	}
	results, err := NewPipeline(testLogger(), 20, false).Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prior := results.PriorPredictions
	if prior == nil || prior.Count != 2 {
		t.Fatalf("prior summary = %+v, want count 2", prior)
	}
	if math.Abs(prior.AvgPriorChurnProbability-0.4) > 1e-9 {
		t.Fatalf("AvgPriorChurnProbability = %v, want 0.4", prior.AvgPriorChurnProbability)
	}
	if math.Abs(prior.AvgPriorPredictedValue-200) > 1e-9 {
		t.Fatalf("AvgPriorPredictedValue = %v, want 200", prior.AvgPriorPredictedValue)
	}
}

func TestPipeline_NoPriorPredictions(t *testing.T) {
	results, err := NewPipeline(testLogger(), 20, false).Run(context.Background(), scenarioDataset(50, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.PriorPredictions != nil {
		t.Fatalf("expected nil prior summary, got %+v", results.PriorPredictions)
	}
}
