package ml

import (
	"errors"
	"math/rand"
	"sort"
)

var (
	// ErrTooFewClassSamples indicates a stratified split cannot be
	// formed because a class has fewer than 2 examples (or only one
	// class is present at all).
	ErrTooFewClassSamples = errors.New("stratified split requires at least 2 samples of each class")

	// ErrTooFewSamples indicates there are not enough rows to carve
	// out both a train and a test partition.
	ErrTooFewSamples = errors.New("too few samples to split")
)

// StratifiedSplit partitions indices 0..len(y)-1 into train/test sets
// preserving the class ratio of y. The seed fixes the shuffle so
// evaluation metrics are reproducible.
func StratifiedSplit(y []int, testFrac float64, seed int64) (train, test []int, err error) {
	classes := make(map[int][]int)
	for i, c := range y {
		classes[c] = append(classes[c], i)
	}
	if len(classes) < 2 {
		return nil, nil, ErrTooFewClassSamples
	}
	for _, idx := range classes {
		if len(idx) < 2 {
			return nil, nil, ErrTooFewClassSamples
		}
	}

	// Iterate classes in a fixed order so the split is deterministic.
	labels := make([]int, 0, len(classes))
	for c := range classes {
		labels = append(labels, c)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewSource(seed))
	for _, c := range labels {
		idx := classes[c]
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := int(float64(len(idx))*testFrac + 0.5)
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(idx)-1 {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	return train, test, nil
}

// TrainTestSplit partitions indices 0..n-1 into shuffled train/test
// sets without stratification.
func TrainTestSplit(n int, testFrac float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, ErrTooFewSamples
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	nTest := int(float64(n)*testFrac + 0.5)
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest], nil
}
