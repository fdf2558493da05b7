package services

import (
	"errors"
	"testing"

	"customer-analytics/ml"
	"customer-analytics/models"
)

// scenarioDataset builds a deterministic population with the given
// churned-customer count, at least one transaction per customer.
func scenarioDataset(n, churned int) *models.Dataset {
	genders := []string{"F", "M"}
	segments := []string{"Premium", "Regular", "Budget"}
	ds := &models.Dataset{
		Products: []models.Product{
			{ProductID: 1, Name: "Widget", Category: "Electronics", Price: 25},
			{ProductID: 2, Name: "Gadget", Category: "Electronics", Price: 40},
			{ProductID: 3, Name: "Novel", Category: "Books", Price: 12},
			{ProductID: 4, Name: "Racket", Category: "Sports", Price: 60},
			{ProductID: 5, Name: "Lamp", Category: "Home", Price: 30},
		},
	}
	for i := 1; i <= n; i++ {
		ds.Customers = append(ds.Customers, models.Customer{
			CustomerID: i,
			Age:        25 + i%40,
			Gender:     genders[i%2],
			Segment:    segments[i%3],
			IsChurned:  i <= churned,
		})
		txCount := 1 + i%3
		for j := 0; j < txCount; j++ {
			ds.Transactions = append(ds.Transactions, models.Transaction{
				TransactionID: i*10 + j,
				CustomerID:    i,
				ProductID:     1 + (i+j)%5,
				Date:          day((i + j*7) % 60),
				Quantity:      1 + j,
				UnitPrice:     float64(20 + i%50),
				Discount:      float64(i%4) * 0.05,
			})
		}
	}
	return ds
}

func TestChurn_ScoresWholePopulation(t *testing.T) {
	feats := NewFeatureBuilder(testLogger()).Build(scenarioDataset(100, 40))
	report, err := NewChurnClassifier(testLogger()).Analyze(feats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, f := range feats {
		if f.ChurnProbability < 0 || f.ChurnProbability > 1 {
			t.Fatalf("customer %d probability %v out of [0,1]", f.CustomerID, f.ChurnProbability)
		}
	}
	if report.Summary.TotalCustomers != 100 {
		t.Fatalf("TotalCustomers = %d, want 100", report.Summary.TotalCustomers)
	}
	if report.ModelAccuracy < 0 || report.ModelAccuracy > 1 {
		t.Fatalf("accuracy %v out of [0,1]", report.ModelAccuracy)
	}
}

func TestChurn_HighRiskNeverExceedsPredictedChurners(t *testing.T) {
	feats := NewFeatureBuilder(testLogger()).Build(scenarioDataset(100, 40))
	report, err := NewChurnClassifier(testLogger()).Analyze(feats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.HighRisk.Count > report.Summary.PredictedChurners {
		t.Fatalf("high risk %d exceeds predicted churners %d",
			report.HighRisk.Count, report.Summary.PredictedChurners)
	}
}

func TestChurn_FeatureImportanceRanking(t *testing.T) {
	feats := NewFeatureBuilder(testLogger()).Build(scenarioDataset(100, 40))
	report, err := NewChurnClassifier(testLogger()).Analyze(feats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.FeatureImportance) == 0 || len(report.FeatureImportance) > 10 {
		t.Fatalf("got %d importances, want 1..10", len(report.FeatureImportance))
	}
	for i := 1; i < len(report.FeatureImportance); i++ {
		if report.FeatureImportance[i].Importance > report.FeatureImportance[i-1].Importance {
			t.Fatal("feature importances not sorted descending")
		}
	}
}

func TestChurn_SingleClassFailsLoudly(t *testing.T) {
	feats := NewFeatureBuilder(testLogger()).Build(scenarioDataset(20, 20))
	_, err := NewChurnClassifier(testLogger()).Analyze(feats)
	if !errors.Is(err, ml.ErrTooFewClassSamples) {
		t.Fatalf("got %v, want ErrTooFewClassSamples", err)
	}
}

func TestChurn_Reproducible(t *testing.T) {
	feats1 := NewFeatureBuilder(testLogger()).Build(scenarioDataset(80, 30))
	feats2 := NewFeatureBuilder(testLogger()).Build(scenarioDataset(80, 30))
	r1, err := NewChurnClassifier(testLogger()).Analyze(feats1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := NewChurnClassifier(testLogger()).Analyze(feats2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.ModelAccuracy != r2.ModelAccuracy {
		t.Fatalf("accuracy differs across identical runs: %v vs %v", r1.ModelAccuracy, r2.ModelAccuracy)
	}
	for i := range feats1 {
		if feats1[i].ChurnProbability != feats2[i].ChurnProbability {
			t.Fatalf("customer %d probability differs across identical runs", feats1[i].CustomerID)
		}
	}
}
