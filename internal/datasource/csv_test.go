package datasource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wlattner/ambitree/tree"
)

const sampleCSV = `class,petal,color,length
a,1,0,1.2
b,0,1,3.4
a,1,,2.1
b,,0,0.9
`

func TestLoadCSVSplitsBinaryAndContinuous(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(sampleCSV), true)
	require.NoError(t, err)

	require.Equal(t, []string{"petal", "color"}, ds.BinCols)
	require.Equal(t, []string{"length"}, ds.ContCols)
	require.Len(t, ds.Y, 4)
	require.Len(t, ds.XBin, 4)
	require.Len(t, ds.XCont, 4)
}

func TestLoadCSVTracksMissingCells(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader(sampleCSV), true)
	require.NoError(t, err)

	// row 2's color cell and row 3's petal cell are blank; both columns
	// are binary, so both entries land at their binary-column index.
	require.Contains(t, ds.Missing, tree.Missing{I: 2, J: 1})
	require.Contains(t, ds.Missing, tree.Missing{I: 3, J: 0})
}

func TestLoadCSVNoHeader(t *testing.T) {
	const noHeader = `a,1,0,1.2
b,0,1,3.4
`
	ds, err := LoadCSV(strings.NewReader(noHeader), true)
	require.NoError(t, err)
	require.Nil(t, ds.VarNames)
	require.Len(t, ds.Y, 2)
}
