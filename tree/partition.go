package tree

// partition reorders S[start:end) in place with two cursors so that
// every row for which match reports true ends up in S[start:q) and
// every other row ends up in S[q:end), returning q. Missing rows are
// forced through the false branch regardless of match, since missing
// values are always routed left (the [q:end) complement side, by the
// calling convention documented on predicate below).
//
// Allocation-free; O(n) per split.
func partition(S []int, start, end int, match func(row int) bool, isMissing func(row int) bool) int {
	p, q := start, end
	for p < q {
		row := S[p]
		if !isMissing(row) && match(row) {
			p++
		} else {
			q--
			S[p], S[q] = S[q], S[p]
		}
	}
	return p
}

// binaryPredicate returns the match function for a binary-feature split:
// true (routes to the [start,q) side, "right" by convention) when the
// column value is 1.
func binaryPredicate(xBin [][]uint8, j int) func(row int) bool {
	return func(row int) bool { return xBin[row][j] == 1 }
}

// nominalPredicate returns the match function for a one-vs-rest nominal
// split isolating value v on column j.
func nominalPredicate(xBin [][]uint8, j, v int) func(row int) bool {
	return func(row int) bool { return int(xBin[row][j]) == v }
}

// continuousPredicate returns the match function for a continuous split
// with the given operator and threshold.
func continuousPredicate(xCont [][]float64, j int, o op, threshold float64) func(row int) bool {
	switch o {
	case opGE:
		return func(row int) bool { return xCont[row][j] >= threshold }
	case opLT:
		return func(row int) bool { return xCont[row][j] < threshold }
	case opIsNaN:
		return func(row int) bool { return isNaN(xCont[row][j]) }
	default:
		return func(row int) bool { return false }
	}
}

func isNaN(f float64) bool { return f != f }
