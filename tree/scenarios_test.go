package tree

import (
	"math"
	"testing"
)

func TestBinaryXOR(t *testing.T) {
	xBin := [][]uint8{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []int{1, 1, 1, 2}

	tr, err := Fit(xBin, nil, y, nil, Config{Criterion: Gini, SplitChoice: SingleMax})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	pred, err := tr.Predict(xBin, nil, nil, PredictConfig{DecodeClasses: true})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := []int{1, 1, 1, 2}
	for i := range want {
		if pred[i] != want[i] {
			t.Errorf("row %d: got %d want %d", i, pred[i], want[i])
		}
	}
}

func TestThresholdSearch(t *testing.T) {
	xCont := make([][]float64, 10)
	y := make([]int, 10)
	for i := 0; i < 10; i++ {
		xCont[i] = []float64{float64(i)}
		if i < 5 {
			y[i] = 0
		} else {
			y[i] = 1
		}
	}

	tr, err := Fit(nil, xCont, y, nil, Config{Criterion: Gini, SplitChoice: SingleMax})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	root := tr.nodes[0]
	if len(root.splits) != 1 {
		t.Fatalf("expected root to have exactly one split, got %d", len(root.splits))
	}
	s := root.splits[0]
	if s.threshold <= 4 || s.threshold >= 5 {
		t.Errorf("expected threshold in (4,5), got %v", s.threshold)
	}
	if s.op != opGE {
		t.Errorf("expected op >=, got %v", s.op)
	}
	left := tr.nodes[s.left].counts
	right := tr.nodes[s.right].counts
	if left[0] != 5 || left[1] != 0 {
		t.Errorf("expected left counts (5,0), got %v", left)
	}
	if right[0] != 0 || right[1] != 5 {
		t.Errorf("expected right counts (0,5), got %v", right)
	}
}

func TestThresholdSearchAllOneClass(t *testing.T) {
	xCont := make([][]float64, 10)
	y := make([]int, 10)
	for i := 0; i < 10; i++ {
		xCont[i] = []float64{float64(i)}
		y[i] = 0
	}

	tr, err := Fit(nil, xCont, y, nil, Config{Criterion: Gini})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if !tr.nodes[0].leaf {
		t.Errorf("expected a single-class dataset to fit as a leaf")
	}
}

func TestMissingRouting(t *testing.T) {
	xBin := [][]uint8{{1}, {0}, {1}, {0}, {1}}
	y := []int{1, 0, 1, 0, 1}
	missing := []Missing{{I: 2, J: 0}}

	tr, err := Fit(xBin, nil, y, missing, Config{Criterion: Gini})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	root := tr.nodes[0]
	if len(root.splits) != 1 {
		t.Fatalf("expected one split, got %d", len(root.splits))
	}
	s := root.splits[0]
	left := tr.nodes[s.left].counts
	// row 2 has label 1 and is missing at the split feature: it must
	// land in the left child regardless of its true value (1).
	if sumCounts(left) == 0 {
		t.Fatalf("expected missing row folded into left child")
	}
}

func TestNaNSeparation(t *testing.T) {
	n := 10
	xCont := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < 3; i++ {
		xCont[i] = []float64{math.NaN()}
		y[i] = 1
	}
	for i := 3; i < n; i++ {
		xCont[i] = []float64{float64(i)}
		y[i] = 0
	}

	tr, err := Fit(nil, xCont, y, nil, Config{Criterion: Gini, SepNaN: true})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	root := tr.nodes[0]
	if len(root.splits) != 1 {
		t.Fatalf("expected one split, got %d", len(root.splits))
	}
	s := root.splits[0]
	if s.op != opIsNaN {
		t.Errorf("expected op=isNaN, got %v", s.op)
	}
	if !tr.nodes[s.left].leaf || !tr.nodes[s.right].leaf {
		t.Errorf("expected both children pure leaves")
	}
}

func TestAmbiguityDAGDedup(t *testing.T) {
	// two binary features perfectly correlated with the label
	xBin := [][]uint8{
		{0, 0}, {0, 0}, {0, 0},
		{1, 1}, {1, 1}, {1, 1},
	}
	y := []int{0, 0, 0, 1, 1, 1}

	tr, err := Fit(xBin, nil, y, nil, Config{Criterion: Gini, SplitChoice: AllMax, CacheNodes: true})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	root := tr.nodes[0]
	if len(root.splits) != 2 {
		t.Fatalf("expected both perfectly-correlated features retained, got %d splits", len(root.splits))
	}
	// both splits should point at the same deduplicated child indices
	if root.splits[0].left != root.splits[1].left {
		t.Errorf("expected dedup to collapse left children to one node, got %d and %d", root.splits[0].left, root.splits[1].left)
	}
	if root.splits[0].right != root.splits[1].right {
		t.Errorf("expected dedup to collapse right children to one node, got %d and %d", root.splits[0].right, root.splits[1].right)
	}
}

func TestConditionExtractionCollapsesOverConstrainedPaths(t *testing.T) {
	// Two binary features; class 1 reached whenever feature 0 is set,
	// regardless of feature 1. The tree splits on feature 1 first and on
	// feature 0 under both branches, so the two paths to class 1 differ
	// only in feature 1's polarity and should collapse to one conjunction
	// that omits feature 1.
	tr := &Tree{
		nodes: []treeNode{
			{counts: []int{2, 2}, splits: []splitRecord{{feature: 1, isBinary: true, value: 1, left: 1, right: 2, nan: -1}}},
			{counts: []int{1, 1}, splits: []splitRecord{{feature: 0, isBinary: true, value: 1, left: 3, right: 4, nan: -1}}},
			{counts: []int{1, 1}, splits: []splitRecord{{feature: 0, isBinary: true, value: 1, left: 5, right: 6, nan: -1}}},
			{leaf: true, counts: []int{1, 0}},
			{leaf: true, counts: []int{0, 1}},
			{leaf: true, counts: []int{1, 0}},
			{leaf: true, counts: []int{0, 1}},
		},
		classes: []int{0, 1},
		fb:      2,
	}

	conds, err := tr.Conditions(1, false)
	if err != nil {
		t.Fatalf("conditions: %v", err)
	}
	for _, c := range conds {
		if c.Feature == 1 {
			t.Errorf("expected feature 1 to be collapsed out of the class-1 conjunction, found %+v", c)
		}
	}
	if len(conds) != 1 || conds[0].Feature != 0 {
		t.Errorf("expected one conjunction holding a single feature-0 atom, got %+v", conds)
	}
}
