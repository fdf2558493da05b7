package ml

import (
	"errors"
	"math"
	"math/rand"
)

// ErrNoTrainingData indicates a fit was attempted on an empty matrix.
var ErrNoTrainingData = errors.New("no training data")

// Config holds the fixed forest hyperparameters. Trees are grown from
// bootstrap samples; the seed makes training fully deterministic.
type Config struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
	// MaxFeatures is the number of features considered per split.
	// Zero selects the model default: sqrt(p) for the classifier,
	// all features for the regressor.
	MaxFeatures int
}

type forest struct {
	trees       []*treeNode
	importances []float64
}

func trainForest(X [][]float64, y []float64, cfg Config, maxFeatures int) (*forest, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, ErrNoTrainingData
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	n := len(X)
	f := &forest{
		trees:       make([]*treeNode, cfg.Trees),
		importances: make([]float64, len(X[0])),
	}
	tc := treeConfig{
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		maxFeatures:     maxFeatures,
	}
	for t := 0; t < cfg.Trees; t++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		f.trees[t] = buildTree(X, y, idx, 0, n, tc, rng, f.importances)
	}

	var total float64
	for _, v := range f.importances {
		total += v
	}
	if total > 0 {
		for i := range f.importances {
			f.importances[i] /= total
		}
	}
	return f, nil
}

func (f *forest) predict(x []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// Classifier is a random forest for binary targets. Trees are grown on
// 0/1 targets so each leaf holds a class-1 fraction; the averaged leaf
// fractions form the predicted probability.
type Classifier struct {
	f *forest
}

// TrainClassifier fits a forest classifier on X against binary labels y.
func TrainClassifier(X [][]float64, y []int, cfg Config) (*Classifier, error) {
	if cfg.MaxFeatures <= 0 && len(X) > 0 {
		cfg.MaxFeatures = int(math.Sqrt(float64(len(X[0]))))
		if cfg.MaxFeatures < 1 {
			cfg.MaxFeatures = 1
		}
	}
	yf := make([]float64, len(y))
	for i, v := range y {
		if v != 0 {
			yf[i] = 1
		}
	}
	f, err := trainForest(X, yf, cfg, cfg.MaxFeatures)
	if err != nil {
		return nil, err
	}
	return &Classifier{f: f}, nil
}

// PredictProba returns the class-1 probability in [0,1].
func (c *Classifier) PredictProba(x []float64) float64 {
	p := c.f.predict(x)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Predict returns the class label at the 0.5 decision boundary.
func (c *Classifier) Predict(x []float64) int {
	if c.PredictProba(x) >= 0.5 {
		return 1
	}
	return 0
}

// FeatureImportances returns the normalized impurity-decrease ranking.
func (c *Classifier) FeatureImportances() []float64 {
	out := make([]float64, len(c.f.importances))
	copy(out, c.f.importances)
	return out
}

// Regressor is a random forest for continuous targets.
type Regressor struct {
	f *forest
}

// TrainRegressor fits a forest regressor on X against y. All features
// are considered at every split unless cfg.MaxFeatures overrides it.
func TrainRegressor(X [][]float64, y []float64, cfg Config) (*Regressor, error) {
	f, err := trainForest(X, y, cfg, cfg.MaxFeatures)
	if err != nil {
		return nil, err
	}
	return &Regressor{f: f}, nil
}

// Predict returns the averaged tree prediction.
func (r *Regressor) Predict(x []float64) float64 {
	return r.f.predict(x)
}

// FeatureImportances returns the normalized impurity-decrease ranking.
func (r *Regressor) FeatureImportances() []float64 {
	out := make([]float64, len(r.f.importances))
	copy(out, r.f.importances)
	return out
}
