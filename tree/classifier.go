package tree

// SplitChoice selects the node/DAG builder's split-retention policy.
type SplitChoice int

const (
	// SingleMax retains only the single split tied for (or uniquely at)
	// maximum impurity decrease: a classical greedy tree.
	SingleMax SplitChoice = iota
	// AllMax retains every split tied for maximum impurity decrease,
	// producing an ambiguity tree.
	AllMax
)

// PredChoice selects the voting policy the predictor applies to a
// sample's leaf-set.
type PredChoice int

const (
	// Majority takes the per-leaf argmax and lets the majority argmax win.
	Majority PredChoice = iota
	// PureMajority restricts to pure leaves (exactly one non-zero count)
	// when any exist, then applies Majority.
	PureMajority
	// MajorityGeneral returns {0,1}: 1 if any leaf's argmax equals the
	// positive class, else 0. Not a class id.
	MajorityGeneral
	// PureMajorityGeneral is MajorityGeneral restricted to pure leaves
	// when present.
	PureMajorityGeneral
)

// Config configures a fit. The zero value selects Gini, SingleMax,
// sep_nan disabled, cache_nodes disabled, positive class 0, and
// Majority voting.
type Config struct {
	Criterion     Criterion
	SplitChoice   SplitChoice
	SepNaN        bool
	CacheNodes    bool
	PositiveClass int
	PredChoice    PredChoice

	// NominalArity optionally declares, per X_bin column, the number of
	// distinct values a small-nominal feature may take (spec.md §4.B).
	// A zero or absent entry means "true binary" (arity 2, one-vs-rest
	// search disabled, fixed orientation value=1 routes right). This
	// extends the external interface beyond a plain {0,1} matrix so the
	// nominal split cache (spec.md §4.C) has a reachable caller.
	NominalArity []int
}

// PredictConfig configures a predict call.
type PredictConfig struct {
	PositiveClass int
	PredChoice    PredChoice
	DecodeClasses bool
}

func (c Config) validate() error {
	if _, err := impurityFor(c.Criterion); err != nil {
		return err
	}
	switch c.SplitChoice {
	case SingleMax, AllMax:
	default:
		return configErrorf("unknown split_choice %d", int(c.SplitChoice))
	}
	switch c.PredChoice {
	case Majority, PureMajority, MajorityGeneral, PureMajorityGeneral:
	default:
		return configErrorf("unknown pred_choice %d", int(c.PredChoice))
	}
	return nil
}

// Fit grows a decision/ambiguity tree from the given sample matrices.
//
// X_bin and X_cont share row count with Y; missing holds the dataset's
// missing-value pairs (any order — compress normalizes them). The
// returned Tree is immutable.
func Fit(xBin [][]uint8, xCont [][]float64, y []int, missing []Missing, cfg Config) (*Tree, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	m, err := compress(xBin, xCont, y, missing)
	if err != nil {
		return nil, err
	}
	return fitCore(m, cfg)
}

// chooseSplits applies the split chooser to a node's per-feature impurity
// decreases: SingleMax returns the single best index (ties broken by
// lowest feature index, matching np.argmin's first-occurrence tie rule);
// AllMax returns every index tied at the maximum.
func chooseSplits(decrease []float64, choice SplitChoice) []int {
	if len(decrease) == 0 {
		return nil
	}
	best := decrease[0]
	bestIdx := 0
	for i, d := range decrease {
		if d > best {
			best = d
			bestIdx = i
		}
	}
	if choice == SingleMax {
		return []int{bestIdx}
	}
	var tied []int
	for i, d := range decrease {
		if d == best {
			tied = append(tied, i)
		}
	}
	return tied
}
