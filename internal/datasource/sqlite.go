package datasource

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pkg/errors"

	"github.com/wlattner/ambitree/tree"
)

// LoadSQLite streams a samples table into a Dataset: one row per sample,
// a label column when hasLabels is true, and nullable feature columns
// otherwise treated the same as LoadCSV's binary/continuous split (a
// column is binary when every non-null value observed is 0 or 1). A
// NULL cell becomes a Missing entry.
//
// table must name an existing table; labelCol is ignored when
// hasLabels is false.
func LoadSQLite(dbPath, table, labelCol string, hasLabels bool) (*Dataset, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	defer db.Close()

	cols, err := tableColumns(db, table)
	if err != nil {
		return nil, err
	}

	var featCols []string
	for _, c := range cols {
		if hasLabels && c == labelCol {
			continue
		}
		featCols = append(featCols, c)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(err, "querying table %s", table)
	}
	defer rows.Close()

	var rawRows [][]sql.NullString
	labelIdx := -1
	for i, c := range cols {
		if hasLabels && c == labelCol {
			labelIdx = i
		}
	}

	for rows.Next() {
		dest := make([]interface{}, len(cols))
		vals := make([]sql.NullString, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scanning row")
		}
		rawRows = append(rawRows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating rows")
	}

	isBinary := make([]bool, len(featCols))
	for i := range isBinary {
		isBinary[i] = true
	}
	featIdxForCol := make(map[string]int, len(featCols))
	{
		k := 0
		for _, c := range cols {
			if hasLabels && c == labelCol {
				continue
			}
			featIdxForCol[c] = k
			k++
		}
	}

	for _, row := range rawRows {
		k := 0
		for i, c := range cols {
			if hasLabels && i == labelIdx {
				continue
			}
			if row[i].Valid && row[i].String != "0" && row[i].String != "1" {
				isBinary[k] = false
			}
			k++
		}
	}

	var binCols, contCols []string
	binIdx := make(map[string]int)
	contIdx := make(map[string]int)
	for i, c := range featCols {
		if isBinary[i] {
			binIdx[c] = len(binCols)
			binCols = append(binCols, c)
		} else {
			contIdx[c] = len(contCols)
			contCols = append(contCols, c)
		}
	}

	ds := &Dataset{
		XBin:      make([][]uint8, len(rawRows)),
		XCont:     make([][]float64, len(rawRows)),
		Y:         make([]int, len(rawRows)),
		BinCols:   binCols,
		ContCols:  contCols,
		HasLabels: hasLabels,
	}

	classIDs := make(map[string]int)
	for rowI, row := range rawRows {
		if hasLabels {
			label := row[labelIdx].String
			id, ok := classIDs[label]
			if !ok {
				id = len(classIDs)
				classIDs[label] = id
			}
			ds.Y[rowI] = id
		}

		xBin := make([]uint8, len(binCols))
		xCont := make([]float64, len(contCols))
		for i, c := range cols {
			if hasLabels && i == labelIdx {
				continue
			}
			cell := row[i]
			if bj, ok := binIdx[c]; ok {
				if !cell.Valid {
					ds.Missing = append(ds.Missing, tree.Missing{I: rowI, J: bj})
					continue
				}
				if cell.String == "1" {
					xBin[bj] = 1
				}
			} else if cj, ok := contIdx[c]; ok {
				if !cell.Valid {
					ds.Missing = append(ds.Missing, tree.Missing{I: rowI, J: len(binCols) + cj})
					continue
				}
				var v float64
				if _, err := fmt.Sscanf(cell.String, "%g", &v); err != nil {
					return nil, errors.Wrapf(err, "row %d: parsing column %s", rowI, c)
				}
				xCont[cj] = v
			}
		}
		ds.XBin[rowI] = xBin
		ds.XCont[rowI] = xCont
	}

	return ds, nil
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema for table %s", table)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, errors.Wrap(err, "scanning table_info row")
		}
		cols = append(cols, name)
	}
	if len(cols) == 0 {
		return nil, errors.Errorf("table %s has no columns (or does not exist)", table)
	}
	return cols, nil
}
