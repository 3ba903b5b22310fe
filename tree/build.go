package tree

import "context"

// frontierItem is the LIFO frontier's unit of work: a splitter context
// (spec.md §3's "splitter context") addressed by its slab range, plus
// the node-table index that will be filled in once it is expanded.
// Mirrors the teacher's buildStack/stackItem shape, generalized from a
// single left/right *Node pair to a shared node-table index, so an
// ambiguity split can append more than one retained split per node and
// dedup can redirect a child to an existing index instead of a fresh one.
type frontierItem struct {
	nodeIdx     int
	start, end  int
	classCounts []int
	impurity    float64
}

type frontierStack []*frontierItem

func (s frontierStack) empty() bool { return len(s) == 0 }

func (s *frontierStack) push(n *frontierItem) { *s = append(*s, n) }

func (s *frontierStack) pop() *frontierItem {
	d := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return d
}

// fitCore runs the frontier traversal (component E) over an already
// compressed sample matrix: pop a context, invoke the split-count engine
// across all features (component B, parallel over the feature axis),
// apply the split chooser, then partition (component D) and materialize
// children for every retained split, until the frontier is empty.
func fitCore(m *sampleMatrix, cfg Config) (*Tree, error) {
	impFn, err := impurityFor(cfg.Criterion)
	if err != nil {
		return nil, err
	}

	n := len(m.y)
	k := len(m.classes)
	S := make([]int, n)
	for i := range S {
		S[i] = i
	}

	rootCounts := make([]int, k)
	for _, c := range m.y {
		rootCounts[c]++
	}
	i0 := impFn(rootCounts)

	nodes := []treeNode{{leaf: false, counts: rootCounts}}

	var dedup *nodeDedup
	if cfg.CacheNodes {
		dedup = newNodeDedup()
	}

	var stack frontierStack
	stack.push(&frontierItem{nodeIdx: 0, start: 0, end: n, classCounts: rootCounts, impurity: i0})

	ctx := context.Background()

	for !stack.empty() {
		item := stack.pop()

		if item.impurity <= 0 {
			nodes[item.nodeIdx] = treeNode{leaf: true, counts: item.classCounts}
			continue
		}

		caches := newCacheSet(m.fb, m.fc)
		candidates, err := splitCounts(ctx, m, caches, S[item.start:item.end], item.classCounts, item.impurity, impFn, cfg.NominalArity, cfg.SepNaN)
		if err != nil {
			return nil, err
		}

		decrease := make([]float64, len(candidates))
		for i := range candidates {
			decrease[i] = candidates[i].decrease(item.impurity)
		}
		selected := chooseSplits(decrease, cfg.SplitChoice)

		leafify := false
		var splits []splitRecord
		for _, sel := range selected {
			cand := candidates[sel]
			if cand.decrease(item.impurity) <= 0 {
				// Reproduces fit_tree's literal (and slightly
				// surprising) behavior: hitting a non-positive decrease
				// among the retained ties overwrites the parent as a
				// LEAF immediately, discarding any split records already
				// accepted this round, even when other tied splits
				// remain unprocessed.
				leafify = true
				break
			}

			match, isMissing := predicateFor(m, cand)

			// Each retained split gets its own copy of the parent's row
			// range to partition, rather than re-partitioning the shared
			// slab: with more than one selected split at this node
			// (ambiguity ties), partitioning S[item.start:item.end) in
			// place a second time would scramble the region a prior
			// sibling split's children were already indexed into.
			// Mirrors fit_tree computing fresh new_inds_l/new_inds_r per
			// split instead of mutating one parent index array.
			rows := make([]int, item.end-item.start)
			copy(rows, S[item.start:item.end])
			q := partition(rows, 0, len(rows), match, isMissing)

			// By partition's contract, the match side occupies
			// rows[0:q) and is the "right" branch (nominalPredicate
			// reports true for the isolated value, and the continuous
			// predicates for x >= threshold under opGE, x < threshold
			// under opLT, NaN under opIsNaN); the complement, including every
			// missing row, occupies rows[q:] as "left". Both sides are
			// appended to the slab as fresh, non-overlapping regions.
			rightStart := len(S)
			S = append(S, rows[:q]...)
			rightEnd := len(S)
			leftStart := len(S)
			S = append(S, rows[q:]...)
			leftEnd := len(S)

			rightIdx := materializeChild(S, rightStart, rightEnd, cand.right, impFn, dedup, &nodes, &stack)
			leftIdx := materializeChild(S, leftStart, leftEnd, cand.left, impFn, dedup, &nodes, &stack)

			splits = append(splits, splitRecord{
				feature:   cand.feature,
				isBinary:  cand.isBinary,
				value:     cand.value,
				op:        cand.op,
				threshold: cand.threshold,
				left:      leftIdx,
				right:     rightIdx,
				nan:       -1,
			})
		}

		switch {
		case leafify || len(splits) == 0:
			nodes[item.nodeIdx] = treeNode{leaf: true, counts: item.classCounts}
		default:
			nodes[item.nodeIdx] = treeNode{leaf: false, counts: item.classCounts, splits: splits}
		}
	}

	return &Tree{nodes: nodes, classes: m.classes, criterion: cfg.Criterion, fb: m.fb, fc: m.fc}, nil
}

// predicateFor builds the match/isMissing predicates the partitioner
// needs for a chosen candidate split's feature.
func predicateFor(m *sampleMatrix, cand splitCandidate) (match func(int) bool, isMissing func(int) bool) {
	if cand.isBinary {
		j := cand.feature
		missingSet := rowSet(m.missingForColumn(j))
		return nominalPredicate(m.xBin, j, cand.value), func(row int) bool { return missingSet[row] }
	}

	j := cand.feature - m.fb
	missingSet := rowSet(m.missingForColumn(cand.feature))
	return continuousPredicate(m.xCont, j, cand.op, cand.threshold), func(row int) bool { return missingSet[row] }
}

func rowSet(rows []int) map[int]bool {
	s := make(map[int]bool, len(rows))
	for _, r := range rows {
		s[r] = true
	}
	return s
}

// materializeChild allocates (or, under ambiguity-DAG dedup, reuses) a
// node-table entry for one child of an accepted split, pushing a new
// frontier item addressed by [start,end) within the shared slab S when
// the child is not pure. Mirrors new_node's ms_impurity > 0 check: a
// child whose own count vector is already pure is finalized as a leaf
// immediately instead of being queued for further splitting.
func materializeChild(S []int, start, end int, counts []int, impFn impurityFunc, dedup *nodeDedup, nodes *[]treeNode, stack *frontierStack) int {
	if dedup != nil {
		if existing, ok := dedup.lookup(S[start:end]); ok {
			return existing
		}
	}

	idx := len(*nodes)
	imp := impFn(counts)
	*nodes = append(*nodes, treeNode{leaf: imp <= 0, counts: counts})

	if dedup != nil {
		dedup.insert(S[start:end], idx)
	}

	if imp > 0 {
		stack.push(&frontierItem{nodeIdx: idx, start: start, end: end, classCounts: counts, impurity: imp})
	}

	return idx
}
