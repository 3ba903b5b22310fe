package tree

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

var posInf = math.Inf(1)

// splitCandidate is one feature column's outcome from the split-count
// engine: the counts it would induce, the impurity of each side, and
// enough information for the partitioner and the node builder to act on
// it without recomputing anything.
type splitCandidate struct {
	feature   int // global column: [0,fb) binary/nominal, [fb,fb+fc) continuous
	isBinary  bool
	value     int     // chosen isolation value for binary/nominal (1 for true binary)
	op        op      // continuous operator; opNop for binary/nominal
	threshold float64 // continuous threshold; unused for binary/nominal
	left      []int   // K, left/isolated-complement class counts
	right     []int   // K, right/isolated class counts
	impLeft   float64
	impRight  float64
	total     float64 // n_L/n*I_L + n_R/n*I_R, the figure the chooser minimizes
	constant  bool
}

// decrease returns the impurity decrease this candidate would produce
// relative to the node's pre-split impurity I0.
func (s *splitCandidate) decrease(i0 float64) float64 {
	return i0 - s.total
}

// splitCounts runs the split-count engine (component B) across every
// feature of a node in parallel — each feature writes only to its own
// candidate slot and cache entry, so there is no cross-feature sharing
// and no data race, per the concurrency model.
func splitCounts(ctx context.Context, m *sampleMatrix, caches *cacheSet, rows []int, classCounts []int, i0 float64, impFn impurityFunc, nominalArity []int, sepNaN bool) ([]splitCandidate, error) {
	fb, fc := m.fb, m.fc
	k := len(classCounts)
	candidates := make([]splitCandidate, fb+fc)

	g, _ := errgroup.WithContext(ctx)
	for j := 0; j < fb; j++ {
		j := j
		g.Go(func() error {
			arity := 2
			if nominalArity != nil && j < len(nominalArity) && nominalArity[j] > 0 {
				arity = nominalArity[j]
			}
			cand, err := evalBinaryOrNominal(m, caches, rows, classCounts, i0, impFn, j, arity, k)
			if err != nil {
				return err
			}
			candidates[j] = cand
			return nil
		})
	}
	for j := 0; j < fc; j++ {
		j := j
		g.Go(func() error {
			cand, err := evalContinuous(m, caches, rows, classCounts, i0, impFn, j, k, sepNaN)
			if err != nil {
				return err
			}
			candidates[fb+j] = cand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// evalBinaryOrNominal evaluates one column of X_bin. With arity 2 this
// is a plain binary split (one candidate). With arity > 2 ("small
// nominal") it accumulates per-value counts and searches the best
// one-vs-rest isolation value v*.
//
// Missing rows are excluded entirely from the impurity computation
// (matching the source's get_counts_impurities, which computes
// countsPS/impurities before missing values are folded in); their
// labels are added into the left/complement count column afterward so
// class-count conservation holds for the cached counts returned here.
func evalBinaryOrNominal(m *sampleMatrix, caches *cacheSet, rows []int, classCounts []int, i0 float64, impFn impurityFunc, j, arity, k int) (splitCandidate, error) {
	cache := caches.nominalAt(j)
	cache.grow(arity, k)
	cache.reset()

	missingRows := m.missingForColumn(j)
	missing := make(map[int]bool, len(missingRows))
	for _, r := range missingRows {
		missing[r] = true
	}
	// keep only this node's missing rows; the column's list also holds
	// rows routed to other branches
	nodeMissing := make([]int, 0, len(missingRows))
	for _, row := range rows {
		if missing[row] {
			nodeMissing = append(nodeMissing, row)
		}
	}
	missingRows = nodeMissing

	for _, row := range rows {
		if missing[row] {
			continue
		}
		v := int(m.xBin[row][j])
		cache.vCounts[v]++
		cache.yvCounts[v][m.y[row]]++
	}

	nonEmpty := 0
	for v := 0; v < arity; v++ {
		if cache.vCounts[v] > 0 {
			nonEmpty++
		}
	}
	if nonEmpty <= 1 {
		return splitCandidate{feature: j, isBinary: true, constant: true, total: i0}, nil
	}

	// True binary (arity 2) has a fixed orientation per spec.md §4.B: one
	// candidate per column, value 1 routes right. Only declared
	// small-nominal columns (arity > 2) search one-vs-rest over values.
	searchValues := []int{1}
	if arity > 2 {
		searchValues = make([]int, arity)
		for v := range searchValues {
			searchValues[v] = v
		}
	}

	// nonMissingTotal excludes missing rows for this column entirely, so
	// leftTally (the complement of right within it) never includes them;
	// the impurity is computed from leftTally/right alone, matching the
	// source's get_counts_impurities (impurities computed before missing
	// values are folded into the cached counts).
	nonMissingTotal := make([]int, k)
	for v := 0; v < arity; v++ {
		for c := 0; c < k; c++ {
			nonMissingTotal[c] += cache.yvCounts[v][c]
		}
	}

	bestV, bestTotal := -1, 0.0
	var bestLeftTally, bestRight []int
	var bestImpL, bestImpR float64
	for _, v := range searchValues {
		right := cache.yvCounts[v]
		leftTally := make([]int, k)
		for c := 0; c < k; c++ {
			leftTally[c] = nonMissingTotal[c] - right[c]
		}
		nR := cache.vCounts[v]
		nL := sumCounts(leftTally)
		n := nL + nR
		if n == 0 {
			continue
		}
		impL, impR := impFn(leftTally), impFn(right)
		total := float64(nL)/float64(n)*impL + float64(nR)/float64(n)*impR
		if bestV == -1 || total < bestTotal {
			bestV, bestTotal = v, total
			bestLeftTally, bestRight = leftTally, right
			bestImpL, bestImpR = impL, impR
		}
	}
	cache.bestV = bestV

	leftCounts := make([]int, k)
	copy(leftCounts, bestLeftTally)
	rightCounts := make([]int, k)
	copy(rightCounts, bestRight)

	// Missing rows are always routed left; fold their labels into the
	// left column now that the impurity figures above are already fixed.
	for _, row := range missingRows {
		leftCounts[m.y[row]]++
	}

	return splitCandidate{
		feature:  j,
		isBinary: true,
		value:    bestV,
		left:     leftCounts,
		right:    rightCounts,
		impLeft:  bestImpL,
		impRight: bestImpR,
		total:    bestTotal,
	}, nil
}

// evalContinuous evaluates one column of X_cont: sorts the node's
// non-missing rows (NaN last), searches candidate thresholds at every
// value change, optionally evaluates the dual GE/LT treatment of NaN and
// the standalone isNaN split, and returns the winner.
func evalContinuous(m *sampleMatrix, caches *cacheSet, rows []int, classCounts []int, i0 float64, impFn impurityFunc, j, k int, sepNaN bool) (splitCandidate, error) {
	cache := caches.contAt(j)
	cache.grow(k)
	cache.reset()

	globalCol := m.fb + j
	missingRows := m.missingForColumn(globalCol)
	missing := make(map[int]bool, len(missingRows))
	for _, r := range missingRows {
		missing[r] = true
	}

	nonMissing := make([]int, 0, len(rows))
	// keep only this node's missing rows; the column's list also holds
	// rows routed to other branches
	nodeMissing := make([]int, 0, len(missingRows))
	for _, row := range rows {
		if !missing[row] {
			nonMissing = append(nonMissing, row)
		} else {
			nodeMissing = append(nodeMissing, row)
		}
	}
	missingRows = nodeMissing
	if len(nonMissing) == 0 {
		return splitCandidate{feature: globalCol, constant: true, op: opGE, threshold: posInf, total: i0}, nil
	}

	values := make([]float64, len(nonMissing))
	for i, row := range nonMissing {
		values[i] = m.xCont[row][j]
	}
	bSort(values, nonMissing)

	nanStart := len(values)
	for i := len(values) - 1; i >= 0; i-- {
		if !isNaN(values[i]) {
			break
		}
		nanStart = i
	}
	hasNaN := nanStart != len(values)

	nanCounts := make([]int, k)
	for i := nanStart; i < len(values); i++ {
		nanCounts[m.y[nonMissing[i]]]++
	}

	// cumCounts[i] = class counts of the first i numeric rows (i in [0,nanStart])
	cumCounts := make([][]int, nanStart+1)
	cumCounts[0] = make([]int, k)
	for i := 0; i < nanStart; i++ {
		next := make([]int, k)
		copy(next, cumCounts[i])
		next[m.y[nonMissing[i]]]++
		cumCounts[i+1] = next
	}
	numericTotal := make([]int, k)
	for c := 0; c < k; c++ {
		numericTotal[c] = classCounts[c] - nanCounts[c]
		for _, r := range missingRows {
			if m.y[r] == c {
				numericTotal[c]--
			}
		}
	}

	bestTotal := posInf
	bestOp := opGE
	bestLeft := numericTotal
	bestRight := make([]int, k)
	bestImpL, bestImpR := impFn(numericTotal), 0.0
	bestThreshold := posInf
	found := false

	for i := 1; i < nanStart; i++ {
		if values[i] == values[i-1] {
			continue
		}
		leftNum := cumCounts[i]
		rightNum := make([]int, k)
		for c := 0; c < k; c++ {
			rightNum[c] = numericTotal[c] - leftNum[c]
		}

		var left, right []int
		var o op
		if sepNaN && hasNaN {
			cLtLeft := make([]int, k)
			cLtRight := make([]int, k)
			cGeLeft := make([]int, k)
			cGeRight := make([]int, k)
			for c := 0; c < k; c++ {
				cLtLeft[c] = rightNum[c] + nanCounts[c]
				cLtRight[c] = leftNum[c]
				cGeLeft[c] = leftNum[c] + nanCounts[c]
				cGeRight[c] = rightNum[c]
			}
			impLtL, impLtR := impFn(cLtLeft), impFn(cLtRight)
			nLt, nLtTot := sumCounts(cLtLeft), sumCounts(cLtLeft)+sumCounts(cLtRight)
			totalLt := float64(nLt)/float64(nLtTot)*impLtL + float64(sumCounts(cLtRight))/float64(nLtTot)*impLtR

			impGeL, impGeR := impFn(cGeLeft), impFn(cGeRight)
			nGe, nGeTot := sumCounts(cGeLeft), sumCounts(cGeLeft)+sumCounts(cGeRight)
			totalGe := float64(nGe)/float64(nGeTot)*impGeL + float64(sumCounts(cGeRight))/float64(nGeTot)*impGeR

			if totalLt < totalGe {
				left, right, o = cLtLeft, cLtRight, opLT
				if totalLt < bestTotal {
					bestTotal, bestOp, bestLeft, bestRight = totalLt, o, left, right
					bestImpL, bestImpR = impLtL, impLtR
					bestThreshold = (values[i-1] + values[i]) / 2
					found = true
				}
			} else {
				left, right, o = cGeLeft, cGeRight, opGE
				if totalGe < bestTotal {
					bestTotal, bestOp, bestLeft, bestRight = totalGe, o, left, right
					bestImpL, bestImpR = impGeL, impGeR
					bestThreshold = (values[i-1] + values[i]) / 2
					found = true
				}
			}
		} else {
			left, right = leftNum, rightNum
			impL, impR := impFn(left), impFn(right)
			n := sumCounts(left) + sumCounts(right)
			total := float64(sumCounts(left))/float64(n)*impL + float64(sumCounts(right))/float64(n)*impR
			if total < bestTotal {
				bestTotal, bestOp, bestLeft, bestRight = total, opGE, left, right
				bestImpL, bestImpR = impL, impR
				bestThreshold = (values[i-1] + values[i]) / 2
				found = true
			}
		}
	}

	if !found {
		bestOp = opGE
		bestThreshold = posInf
		bestLeft = numericTotal
		bestRight = make([]int, k)
		bestImpL = impFn(numericTotal)
		bestImpR = 0
		bestTotal = bestImpL
	}

	if sepNaN && hasNaN {
		isNaNLeft := make([]int, k)
		isNaNRight := make([]int, k)
		for c := 0; c < k; c++ {
			isNaNLeft[c] = classCounts[c] - nanCounts[c]
			isNaNRight[c] = nanCounts[c]
		}
		for _, r := range missingRows {
			isNaNLeft[m.y[r]]--
		}
		impL, impR := impFn(isNaNLeft), impFn(isNaNRight)
		n := sumCounts(isNaNLeft) + sumCounts(isNaNRight)
		total := float64(sumCounts(isNaNLeft))/float64(n)*impL + float64(sumCounts(isNaNRight))/float64(n)*impR
		if total < bestTotal {
			bestTotal, bestOp = total, opIsNaN
			bestLeft, bestRight = isNaNLeft, isNaNRight
			bestImpL, bestImpR = impL, impR
			bestThreshold = posInf
		}
	}

	constant := sumCounts(bestRight) == 0

	leftCounts := make([]int, k)
	copy(leftCounts, bestLeft)
	for _, r := range missingRows {
		leftCounts[m.y[r]]++
	}
	rightCounts := make([]int, k)
	copy(rightCounts, bestRight)

	cache.threshold = bestThreshold
	cache.op = bestOp
	cache.isConst = constant

	return splitCandidate{
		feature:   globalCol,
		isBinary:  false,
		op:        bestOp,
		threshold: bestThreshold,
		left:      leftCounts,
		right:     rightCounts,
		impLeft:   bestImpL,
		impRight:  bestImpR,
		total:     bestTotal,
		constant:  constant,
	}, nil
}
