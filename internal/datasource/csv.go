// Package datasource loads training/prediction matrices for package tree
// from flat files and databases, splitting columns into X_bin/X_cont the
// way the core's Fit/Predict entries expect.
package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/wlattner/ambitree/tree"
)

// Dataset is the in-memory shape package tree's Fit/Predict consume.
type Dataset struct {
	XBin     [][]uint8
	XCont    [][]float64
	Y        []int
	Missing  []tree.Missing
	VarNames []string
	// BinCols/ContCols hold the original column names for each matrix,
	// in the order they appear in XBin/XCont respectively.
	BinCols  []string
	ContCols []string
	// HasLabels is false for a prediction-only dataset (no label column).
	HasLabels bool
}

// LoadCSV reads a dataset where the first column is the class label
// (unless hasLabels is false) and the remaining columns are features.
// A header row is detected the way the teacher's parseHeader does: if
// any non-label cell in the first row fails to parse as a number, that
// row is treated as column names instead of data.
//
// A column is routed to X_bin when every non-empty cell it contains
// parses as exactly "0" or "1"; otherwise it is routed to X_cont. Empty
// cells become Missing entries rather than parse errors, whichever
// matrix the column ends up in.
func LoadCSV(r io.Reader, hasLabels bool) (*Dataset, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv input")
	}

	varNames, dataRows, err := splitHeader(rows, hasLabels)
	if err != nil {
		return nil, err
	}
	if len(dataRows) == 0 {
		return nil, errors.New("csv has no data rows")
	}

	featCols := len(dataRows[0])
	if hasLabels {
		featCols--
	}
	isBinary := make([]bool, featCols)
	for i := range isBinary {
		isBinary[i] = true
	}

	for _, row := range dataRows {
		offset := 0
		if hasLabels {
			offset = 1
		}
		for j := 0; j < featCols; j++ {
			cell := strings.TrimSpace(row[offset+j])
			if cell == "" {
				continue
			}
			if cell != "0" && cell != "1" {
				isBinary[j] = false
			}
		}
	}

	var binCols, contCols []string
	binIdx := make([]int, featCols)
	contIdx := make([]int, featCols)
	for j := 0; j < featCols; j++ {
		name := fmt.Sprintf("X%d", j+1)
		if j < len(varNames) {
			name = varNames[j]
		}
		if isBinary[j] {
			binIdx[j] = len(binCols)
			binCols = append(binCols, name)
		} else {
			contIdx[j] = len(contCols)
			contCols = append(contCols, name)
		}
	}

	ds := &Dataset{
		XBin:      make([][]uint8, len(dataRows)),
		XCont:     make([][]float64, len(dataRows)),
		Y:         make([]int, len(dataRows)),
		VarNames:  varNames,
		BinCols:   binCols,
		ContCols:  contCols,
		HasLabels: hasLabels,
	}

	classIDs := make(map[string]int)
	for i, row := range dataRows {
		offset := 0
		if hasLabels {
			label := row[0]
			id, ok := classIDs[label]
			if !ok {
				id = len(classIDs)
				classIDs[label] = id
			}
			ds.Y[i] = id
			offset = 1
		}

		xBin := make([]uint8, len(binCols))
		xCont := make([]float64, len(contCols))
		for j := 0; j < featCols; j++ {
			cell := strings.TrimSpace(row[offset+j])
			if isBinary[j] {
				if cell == "" {
					ds.Missing = append(ds.Missing, tree.Missing{I: i, J: binIdx[j]})
					continue
				}
				v, err := strconv.ParseUint(cell, 10, 8)
				if err != nil {
					return nil, errors.Wrapf(err, "row %d: parsing binary column %d", i, j)
				}
				xBin[binIdx[j]] = uint8(v)
			} else {
				if cell == "" {
					ds.Missing = append(ds.Missing, tree.Missing{I: i, J: len(binCols) + contIdx[j]})
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "row %d: parsing continuous column %d", i, j)
				}
				xCont[contIdx[j]] = v
			}
		}
		ds.XBin[i] = xBin
		ds.XCont[i] = xCont
	}

	return ds, nil
}

// splitHeader detects and strips an optional header row, returning the
// feature column names (empty if absent) and the remaining data rows.
func splitHeader(rows [][]string, hasLabels bool) ([]string, [][]string, error) {
	first := rows[0]
	offset := 0
	if hasLabels {
		offset = 1
	}
	if len(first) <= offset {
		return nil, nil, errors.New("csv row has no feature columns")
	}

	for _, val := range first[offset:] {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			// not a number: treat as a header row.
			return first[offset:], rows[1:], nil
		}
	}
	return nil, rows, nil
}
