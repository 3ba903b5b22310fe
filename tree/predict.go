package tree

import "sort"

// visitResult is one leaf reached while walking the ambiguity DAG for a
// single sample: its count vector, used by every voting policy.
type visitResult struct {
	counts []int
}

// Predict classifies each row of xBin/xCont, walking every split of every
// internal node a sample matches (an ambiguity tree may route a sample
// down more than one branch when a node holds several retained splits)
// and applying the configured voting policy over the resulting leaf set.
//
// A visited-node mask per sample prevents re-entering a node already
// reached by another path, matching predict_tree's guard against
// re-walking a shared DAG node twice for the same sample.
func (t *Tree) Predict(xBin [][]uint8, xCont [][]float64, missing []Missing, cfg PredictConfig) ([]int, error) {
	if len(t.nodes) == 0 {
		return nil, invalidInputf("predict called before fit")
	}
	if len(xBin) != 0 && len(xCont) != 0 && len(xBin) != len(xCont) {
		return nil, invalidInputf("X_bin row count %d does not match X_cont row count %d", len(xBin), len(xCont))
	}
	n := len(xBin)
	if len(xCont) > n {
		n = len(xCont)
	}
	missingSet := make(map[Missing]bool, len(missing))
	for _, mv := range missing {
		missingSet[mv] = true
	}

	out := make([]int, n)
	for row := 0; row < n; row++ {
		leaves := t.walk(row, xBin, xCont, missingSet)
		out[row] = t.vote(leaves, cfg)
	}
	return out, nil
}

// walk collects every leaf reachable from the root for one sample,
// following every split of an internal node the sample is routed
// through (not just the first), and never revisiting a node.
func (t *Tree) walk(row int, xBin [][]uint8, xCont [][]float64, missingSet map[Missing]bool) []visitResult {
	if len(t.nodes) == 0 {
		return nil
	}
	visited := make(map[int]bool)
	var leaves []visitResult

	var visit func(idx int)
	visit = func(idx int) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		node := t.nodes[idx]
		if node.leaf || len(node.splits) == 0 {
			leaves = append(leaves, visitResult{counts: node.counts})
			return
		}
		for _, s := range node.splits {
			next := t.route(row, s, xBin, xCont, missingSet)
			if next != -1 {
				visit(next)
			}
		}
	}
	visit(0)
	return leaves
}

// route evaluates one split for one sample, returning the child node
// index to descend into. A missing cell at the split's feature is always
// routed to the left child, matching r_l_split's unconditional
// missing-to-left rule; otherwise the operator decides: >= / < for
// continuous splits (NaN compares false under IEEE 754 for both, so it
// naturally falls to the left child without special-casing), isNaN for
// the dedicated NaN-separation split, and value equality for
// binary/nominal splits.
func (t *Tree) route(row int, s splitRecord, xBin [][]uint8, xCont [][]float64, missingSet map[Missing]bool) int {
	if s.isBinary {
		if missingSet[Missing{I: row, J: s.feature}] {
			return s.left
		}
		if int(xBin[row][s.feature]) == s.value {
			return s.right
		}
		return s.left
	}

	j := s.feature - t.fb
	if missingSet[Missing{I: row, J: s.feature}] {
		return s.left
	}
	val := xCont[row][j]
	var right bool
	switch s.op {
	case opGE:
		right = val >= s.threshold
	case opLT:
		right = val < s.threshold
	case opIsNaN:
		right = isNaN(val)
	}
	if right {
		return s.right
	}
	return s.left
}

// vote applies the configured policy over a sample's leaf set.
func (t *Tree) vote(leaves []visitResult, cfg PredictConfig) int {
	if len(leaves) == 0 {
		return -1
	}

	pure := make([]visitResult, 0, len(leaves))
	for _, l := range leaves {
		if isPureCounts(l.counts) {
			pure = append(pure, l)
		}
	}

	switch cfg.PredChoice {
	case Majority:
		return t.majorityArgmax(leaves, cfg)
	case PureMajority:
		if len(pure) > 0 {
			return t.majorityArgmax(pure, cfg)
		}
		return t.majorityArgmax(leaves, cfg)
	case MajorityGeneral:
		return t.majorityGeneral(leaves, cfg)
	case PureMajorityGeneral:
		if len(pure) > 0 {
			return t.majorityGeneral(pure, cfg)
		}
		return t.majorityGeneral(leaves, cfg)
	default:
		return t.majorityArgmax(leaves, cfg)
	}
}

// majorityArgmax takes each leaf's own per-class argmax (first-occurrence
// tie break, matching np.argmax), tallies votes across leaves, and
// returns the class id with the most votes (ties broken by lowest
// compressed class id).
func (t *Tree) majorityArgmax(leaves []visitResult, cfg PredictConfig) int {
	votes := make(map[int]int)
	for _, l := range leaves {
		votes[argmax(l.counts)]++
	}
	return decodeClass(t, bestVote(votes), cfg)
}

// majorityGeneral returns 1 if any leaf's argmax equals the configured
// positive class, else 0: a {0,1} general-purpose signal rather than a
// decoded class id, for one-vs-rest style consumption.
func (t *Tree) majorityGeneral(leaves []visitResult, cfg PredictConfig) int {
	for _, l := range leaves {
		if argmax(l.counts) == cfg.PositiveClass {
			return 1
		}
	}
	return 0
}

func argmax(counts []int) int {
	best, bestC := -1, -1
	for c, v := range counts {
		if v > best {
			best, bestC = v, c
		}
	}
	return bestC
}

func bestVote(votes map[int]int) int {
	classes := make([]int, 0, len(votes))
	for c := range votes {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	bestClass, bestCount := -1, -1
	for _, c := range classes {
		if votes[c] > bestCount {
			bestClass, bestCount = c, votes[c]
		}
	}
	return bestClass
}

func isPureCounts(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero == 1
}

func decodeClass(t *Tree, compressed int, cfg PredictConfig) int {
	if !cfg.DecodeClasses || compressed < 0 || compressed >= len(t.classes) {
		return compressed
	}
	return t.classes[compressed]
}
