package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/wlattner/ambitree/tree"
)

var sectionHeader = color.New(color.FgGreen, color.Bold)

// report writes a fit summary the way the teacher's Model.Report does:
// a one-line stats header, then variable importance ranked descending.
func report(w io.Writer, m *model) {
	sectionHeader.Fprintf(w, "Fit %d nodes from %d samples in %s\n", m.tr.NumNodes(), m.NumSamples, m.FitDuration)
	fmt.Fprintln(w)
	reportVarImp(w, m.tr, m.VarNames, 20)
}

func reportVarImp(w io.Writer, tr *tree.Tree, varNames []string, maxVars int) {
	sectionHeader.Fprintln(w, "Variable Importance")
	fmt.Fprintln(w, "--------------------")

	imp := tr.VarImp()
	names := make([]string, len(imp))
	copy(names, varNames)
	idx := make([]int, len(imp))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return imp[idx[a]] > imp[idx[b]] })

	if maxVars > len(idx) {
		maxVars = len(idx)
	}
	for _, i := range idx[:maxVars] {
		name := fmt.Sprintf("X%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		fmt.Fprintf(w, "%-20s: %.4f\n", name, imp[i])
	}
	fmt.Fprintln(w)
}

func reportConditions(w io.Writer, conds []tree.Condition) {
	sectionHeader.Fprintln(w, "Conditions")
	fmt.Fprintln(w, "----------")
	for _, c := range conds {
		if c.NominalFlag {
			eq := "=="
			if !c.PolarityOrGT {
				eq = "!="
			}
			fmt.Fprintf(w, "  X%d %s %d\n", c.Feature, eq, int(c.Threshold))
			continue
		}
		op := "<"
		if c.PolarityOrGT {
			op = ">="
		}
		fmt.Fprintf(w, "  X%d %s %.4g\n", c.Feature, op, c.Threshold)
	}
}
