package tree

import "sort"

// Condition is one root-to-leaf conjunction atom: a predicate on a
// single feature. NominalFlag distinguishes a binary/nominal test
// (Threshold holds the isolated value; PolarityOrGT true means
// "== Threshold", false means "!= Threshold") from a continuous test
// (PolarityOrGT true means ">= Threshold", false means "< Threshold").
// An isNaN split has no NaN atom: its atoms carry Threshold +Inf and do
// not express the NaN test.
type Condition struct {
	Feature      int
	NominalFlag  bool
	PolarityOrGT bool
	Threshold    float64
}

// conjunction is one path's ordered atom list, kept sorted by feature so
// two paths can be compared atom-by-atom for the over-constrained
// collapse and the dedup pass.
type conjunction []Condition

// Conditions walks the frozen tree collecting root-to-leaf paths for
// every leaf whose argmax equals targetClass, optionally restricted to
// pure leaves via a purity pre-filter, then applies the over-constrained
// collapse and exact-duplicate removal spec.md §4.G describes.
func (t *Tree) Conditions(targetClass int, onlyPure bool) ([]Condition, error) {
	if len(t.nodes) == 0 {
		return nil, invalidInputf("conditions requested on an empty tree")
	}
	found := false
	for _, c := range t.classes {
		if c == targetClass {
			found = true
			break
		}
	}
	compressed := targetClass
	if found {
		for i, c := range t.classes {
			if c == targetClass {
				compressed = i
				break
			}
		}
	} else {
		return nil, invalidInputf("target class %d absent from training set", targetClass)
	}

	purity := t.purityMask()

	var paths []conjunction
	var walk func(idx int, path conjunction)
	walk = func(idx int, path conjunction) {
		node := t.nodes[idx]
		if onlyPure && !purity[idx] && (node.leaf || len(node.splits) == 0) {
			// Not a leaf reachable through any pure path; the bottom-up
			// mask already ruled this node out, so skip re-testing purity.
			return
		}
		if node.leaf || len(node.splits) == 0 {
			if argmax(node.counts) != compressed {
				return
			}
			if onlyPure && !isPureCounts(node.counts) {
				return
			}
			sorted := make(conjunction, len(path))
			copy(sorted, path)
			sort.Slice(sorted, func(a, b int) bool { return sorted[a].Feature < sorted[b].Feature })
			paths = append(paths, sorted)
			return
		}
		for _, s := range node.splits {
			if s.left != -1 {
				walk(s.left, append(path, leftAtom(s)))
			}
			if s.right != -1 {
				walk(s.right, append(path, rightAtom(s)))
			}
		}
	}
	walk(0, nil)

	paths = collapseOverConstrained(paths)
	paths = dedupConjunctions(paths)

	var out []Condition
	for _, p := range paths {
		out = append(out, p...)
	}
	return out, nil
}

func leftAtom(s splitRecord) Condition {
	if s.isBinary {
		return Condition{Feature: s.feature, NominalFlag: true, Threshold: float64(s.value), PolarityOrGT: false}
	}
	if s.op == opIsNaN {
		return Condition{Feature: s.feature, NominalFlag: false, Threshold: s.threshold, PolarityOrGT: false}
	}
	return Condition{Feature: s.feature, NominalFlag: false, Threshold: s.threshold, PolarityOrGT: s.op == opLT}
}

func rightAtom(s splitRecord) Condition {
	if s.isBinary {
		return Condition{Feature: s.feature, NominalFlag: true, Threshold: float64(s.value), PolarityOrGT: true}
	}
	return Condition{Feature: s.feature, NominalFlag: false, Threshold: s.threshold, PolarityOrGT: s.op != opLT}
}

// collapseOverConstrained merges any two paths that differ in exactly
// one atom's polarity (same feature, same threshold) and agree on every
// other atom, dropping the differing atom from the merged path.
func collapseOverConstrained(paths []conjunction) []conjunction {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				if merged, ok := tryCollapse(paths[i], paths[j]); ok {
					paths[i] = merged
					paths = append(paths[:j], paths[j+1:]...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	return paths
}

func tryCollapse(a, b conjunction) (conjunction, bool) {
	if len(a) != len(b) {
		return nil, false
	}
	diffIdx := -1
	for i := range a {
		if a[i].Feature != b[i].Feature || a[i].NominalFlag != b[i].NominalFlag || a[i].Threshold != b[i].Threshold {
			return nil, false
		}
		if a[i].PolarityOrGT != b[i].PolarityOrGT {
			if diffIdx != -1 {
				return nil, false
			}
			diffIdx = i
		}
	}
	if diffIdx == -1 {
		return nil, false
	}
	merged := make(conjunction, 0, len(a)-1)
	merged = append(merged, a[:diffIdx]...)
	merged = append(merged, a[diffIdx+1:]...)
	return merged, true
}

// dedupConjunctions removes any path that exactly equals an earlier one.
func dedupConjunctions(paths []conjunction) []conjunction {
	var out []conjunction
	for _, p := range paths {
		dup := false
		for _, q := range out {
			if sameConjunction(p, q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func sameConjunction(a, b conjunction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// purityMask computes, for every node, whether every leaf reachable from
// it is pure: a bottom-up pass (grounded on compute_effective_purities).
// Conditions consults it only at leaves, to drop impure leaves when
// onlyPure is set; it does not prune internal subtrees.
func (t *Tree) purityMask() []bool {
	mask := make([]bool, len(t.nodes))
	memo := make([]bool, len(t.nodes))
	var compute func(idx int) bool
	compute = func(idx int) bool {
		if memo[idx] {
			return mask[idx]
		}
		node := t.nodes[idx]
		var pure bool
		if node.leaf || len(node.splits) == 0 {
			pure = isPureCounts(node.counts)
		} else {
			pure = true
			for _, s := range node.splits {
				if s.left != -1 && !compute(s.left) {
					pure = false
				}
				if s.right != -1 && !compute(s.right) {
					pure = false
				}
			}
		}
		mask[idx] = pure
		memo[idx] = true
		return pure
	}
	for i := range t.nodes {
		compute(i)
	}
	return mask
}

// VarImp reports, per feature, the total impurity decrease its split
// records contributed across the tree, weighted by node sample count and
// normalized to sum to 1. Importance attributes to the split record
// (the edge), not the child node, so an ambiguity-DAG node shared by more
// than one parent is not double-counted: each split record's own delta
// is credited once to its owning parent's chosen feature.
func (t *Tree) VarImp() []float64 {
	nFeatures := t.fb + t.fc
	imp := make([]float64, nFeatures)
	impFn, err := impurityFor(t.criterion)
	if err != nil {
		impFn, _ = impurityFor(Gini)
	}

	total := 0.0
	for _, node := range t.nodes {
		if node.leaf || len(node.splits) == 0 {
			continue
		}
		n := sumCounts(node.counts)
		if n == 0 {
			continue
		}
		i0 := impFn(node.counts)
		for _, s := range node.splits {
			var leftCounts, rightCounts []int
			if s.left != -1 {
				leftCounts = t.nodes[s.left].counts
			}
			if s.right != -1 {
				rightCounts = t.nodes[s.right].counts
			}
			nL, nR := sumCounts(leftCounts), sumCounts(rightCounts)
			if nL+nR == 0 {
				continue
			}
			weighted := float64(nL)/float64(nL+nR)*impFn(leftCounts) + float64(nR)/float64(nL+nR)*impFn(rightCounts)
			decrease := float64(n) * (i0 - weighted)
			if decrease < 0 {
				decrease = 0
			}
			imp[s.feature] += decrease
			total += decrease
		}
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	return imp
}
