package ml

import (
	"errors"
	"testing"
)

func separableData() (X [][]float64, y []int) {
	// Class 1 iff the first feature exceeds 10; second feature is noise.
	for i := 0; i < 40; i++ {
		x0 := float64(i)
		X = append(X, []float64{x0, float64(i % 5)})
		if x0 > 10 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	return X, y
}

func TestClassifier_SeparableData(t *testing.T) {
	X, y := separableData()
	model, err := TrainClassifier(X, y, Config{Trees: 60, MaxDepth: 8, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range X {
		if got := model.Predict(X[i]); got != y[i] {
			t.Fatalf("row %d: predicted %d, want %d", i, got, y[i])
		}
	}
}

func TestClassifier_ProbabilityBounds(t *testing.T) {
	X, y := separableData()
	model, err := TrainClassifier(X, y, Config{Trees: 20, MaxDepth: 4, Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range X {
		p := model.PredictProba(X[i])
		if p < 0 || p > 1 {
			t.Fatalf("probability %v out of [0,1]", p)
		}
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	X, y := separableData()
	m1, _ := TrainClassifier(X, y, Config{Trees: 30, MaxDepth: 5, Seed: 42})
	m2, _ := TrainClassifier(X, y, Config{Trees: 30, MaxDepth: 5, Seed: 42})
	for i := range X {
		if m1.PredictProba(X[i]) != m2.PredictProba(X[i]) {
			t.Fatal("same seed produced different probabilities")
		}
	}
	imp1, imp2 := m1.FeatureImportances(), m2.FeatureImportances()
	for i := range imp1 {
		if imp1[i] != imp2[i] {
			t.Fatal("same seed produced different importances")
		}
	}
}

func TestClassifier_ImportancesNormalized(t *testing.T) {
	X, y := separableData()
	model, _ := TrainClassifier(X, y, Config{Trees: 30, MaxDepth: 5, Seed: 42})
	imp := model.FeatureImportances()
	var sum float64
	for _, v := range imp {
		sum += v
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("importances sum to %v, want 1", sum)
	}
	// The informative feature should dominate the noise feature.
	if imp[0] <= imp[1] {
		t.Fatalf("informative feature importance %v not above noise %v", imp[0], imp[1])
	}
}

func TestRegressor_LinearTarget(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, 2*float64(i))
	}
	model, err := TrainRegressor(X, y, Config{Trees: 50, MaxDepth: 10, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pred := make([]float64, len(X))
	for i := range X {
		pred[i] = model.Predict(X[i])
	}
	if r2 := R2(y, pred); r2 < 0.8 {
		t.Fatalf("R2 %v too low for a near-deterministic target", r2)
	}
}

func TestRegressor_ConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{7, 7, 7, 7}
	model, err := TrainRegressor(X, y, Config{Trees: 10, MaxDepth: 3, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range X {
		if got := model.Predict(X[i]); got != 7 {
			t.Fatalf("constant target: predicted %v, want 7", got)
		}
	}
}

func TestTrainClassifier_NoData(t *testing.T) {
	if _, err := TrainClassifier(nil, nil, Config{Trees: 5, MaxDepth: 3}); !errors.Is(err, ErrNoTrainingData) {
		t.Fatalf("got %v, want ErrNoTrainingData", err)
	}
}
