// Package ml implements the seeded tree-ensemble models, data splits and
// evaluation metrics used by the prediction pipeline.
package ml

import (
	"math/rand"
	"sort"
)

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // features considered per split; <=0 means all
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// meanImpurity returns the mean and the variance impurity of y over idx.
// For 0/1 targets the variance criterion orders splits exactly like gini.
func meanImpurity(y []float64, idx []int) (mean, impurity float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	mean = sum / n
	impurity = sumSq/n - mean*mean
	if impurity < 0 {
		impurity = 0
	}
	return mean, impurity
}

// bestSplit scans a random feature subset for the threshold with the
// largest impurity decrease. Returns gain <= 0 when no split helps.
func bestSplit(X [][]float64, y []float64, idx []int, impurity float64, cfg treeConfig, rng *rand.Rand) (feature int, threshold, gain float64) {
	nFeatures := len(X[0])
	considered := cfg.maxFeatures
	if considered <= 0 || considered > nFeatures {
		considered = nFeatures
	}
	perm := rng.Perm(nFeatures)[:considered]

	n := float64(len(idx))
	type pair struct{ v, y float64 }
	pairs := make([]pair, len(idx))
	gain = 0

	for _, f := range perm {
		for k, i := range idx {
			pairs[k] = pair{v: X[i][f], y: y[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		var sumTotal, sumSqTotal float64
		for _, p := range pairs {
			sumTotal += p.y
			sumSqTotal += p.y * p.y
		}

		var sumL, sumSqL float64
		for k := 0; k < len(pairs)-1; k++ {
			sumL += pairs[k].y
			sumSqL += pairs[k].y * pairs[k].y
			if pairs[k].v == pairs[k+1].v {
				continue
			}
			nL := float64(k + 1)
			nR := n - nL
			sumR := sumTotal - sumL
			sumSqR := sumSqTotal - sumSqL

			varL := sumSqL/nL - (sumL/nL)*(sumL/nL)
			varR := sumSqR/nR - (sumR/nR)*(sumR/nR)
			weighted := (nL*varL + nR*varR) / n
			if g := impurity - weighted; g > gain {
				gain = g
				feature = f
				threshold = (pairs[k].v + pairs[k+1].v) / 2
			}
		}
	}
	return feature, threshold, gain
}

// buildTree grows a tree on the rows indexed by idx. importances
// accumulates node-weighted impurity decrease per feature.
func buildTree(X [][]float64, y []float64, idx []int, depth, nTotal int, cfg treeConfig, rng *rand.Rand, importances []float64) *treeNode {
	mean, impurity := meanImpurity(y, idx)
	if depth >= cfg.maxDepth || len(idx) < cfg.minSamplesSplit || impurity == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, gain := bestSplit(X, y, idx, impurity, cfg, rng)
	if gain <= 0 {
		return &treeNode{leaf: true, value: mean}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	importances[feature] += float64(len(idx)) / float64(nTotal) * gain

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(X, y, leftIdx, depth+1, nTotal, cfg, rng, importances),
		right:     buildTree(X, y, rightIdx, depth+1, nTotal, cfg, rng, importances),
	}
}
