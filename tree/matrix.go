package tree

import "sort"

// Missing identifies one missing cell: row i, global column j. Binary
// columns occupy [0,Fb); continuous columns occupy [Fb,Fb+Fc).
type Missing struct {
	I, J int
}

// sampleMatrix is the permuted, compressed view of the training data the
// rest of the core operates on: xBin/xCont hold rows reordered so that
// equal-class samples are contiguous, y holds compressed class ids in
// [0,K), and classes is the decoding table U.
type sampleMatrix struct {
	xBin    [][]uint8
	xCont   [][]float64
	y       []int
	classes []int // U: compressed id -> original label
	missing []Missing
	fb, fc  int
}

// compress performs the one-time argsort-by-Y compression described in
// the data model: physically permutes rows so samples of equal class are
// contiguous, builds the compressed class ids y and the unique-class
// table U, and remaps/renormalizes the missing-value list against the
// permuted rows.
func compress(xBin [][]uint8, xCont [][]float64, y []int, missing []Missing) (*sampleMatrix, error) {
	n := len(y)
	if len(xBin) != n && len(xCont) != n {
		return nil, invalidInputf("X_bin/X_cont/Y row count mismatch: %d/%d/%d", len(xBin), len(xCont), n)
	}
	if len(xBin) != 0 && len(xBin) != n {
		return nil, invalidInputf("X_bin row count %d does not match Y row count %d", len(xBin), n)
	}
	if len(xCont) != 0 && len(xCont) != n {
		return nil, invalidInputf("X_cont row count %d does not match Y row count %d", len(xCont), n)
	}

	fb, fc := 0, 0
	if len(xBin) > 0 {
		fb = len(xBin[0])
	}
	if len(xCont) > 0 {
		fc = len(xCont[0])
	}

	// unique, sorted class labels -> compressed id
	uniq := make(map[int]int)
	for _, v := range y {
		uniq[v] = 0
	}
	classes := make([]int, 0, len(uniq))
	for v := range uniq {
		classes = append(classes, v)
	}
	sort.Ints(classes)
	for i, v := range classes {
		uniq[v] = i
	}

	// perm is an argsort of y by compressed id: stable so that original
	// relative order within a class is preserved (matches a host's
	// expectation that row order inside one class is deterministic).
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	yComp := make([]int, n)
	for i, v := range y {
		yComp[i] = uniq[v]
	}
	sort.SliceStable(perm, func(a, b int) bool { return yComp[perm[a]] < yComp[perm[b]] })

	var newXBin [][]uint8
	var newXCont [][]float64
	if len(xBin) > 0 {
		newXBin = make([][]uint8, n)
	}
	if len(xCont) > 0 {
		newXCont = make([][]float64, n)
	}
	newY := make([]int, n)
	// inverse[old row] = new row, needed to remap missing pairs
	inverse := make([]int, n)
	for newI, oldI := range perm {
		if newXBin != nil {
			newXBin[newI] = xBin[oldI]
		}
		if newXCont != nil {
			newXCont[newI] = xCont[oldI]
		}
		newY[newI] = yComp[oldI]
		inverse[oldI] = newI
	}

	newMissing := make([]Missing, len(missing))
	for i, m := range missing {
		if m.I < 0 || m.I >= n {
			return nil, invalidInputf("missing entry row %d out of range [0,%d)", m.I, n)
		}
		newMissing[i] = Missing{I: inverse[m.I], J: m.J}
	}
	// normalize: sort by j ascending, then i ascending
	sort.Slice(newMissing, func(a, b int) bool {
		if newMissing[a].J != newMissing[b].J {
			return newMissing[a].J < newMissing[b].J
		}
		return newMissing[a].I < newMissing[b].I
	})

	return &sampleMatrix{
		xBin:    newXBin,
		xCont:   newXCont,
		y:       newY,
		classes: classes,
		missing: newMissing,
		fb:      fb,
		fc:      fc,
	}, nil
}

// missingForColumn returns the sorted sample rows missing at global
// column j, found by binary-searching the j-ordered missing list.
func (m *sampleMatrix) missingForColumn(j int) []int {
	lo := sort.Search(len(m.missing), func(i int) bool { return m.missing[i].J >= j })
	hi := sort.Search(len(m.missing), func(i int) bool { return m.missing[i].J > j })
	rows := make([]int, hi-lo)
	for i := lo; i < hi; i++ {
		rows[i-lo] = m.missing[i].I
	}
	return rows
}
