package datasource

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wlattner/ambitree/tree"
)

func TestLoadSQLiteSplitsAndTracksMissing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "samples.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE samples (
		label TEXT,
		petal INTEGER,
		length REAL
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO samples (label, petal, length) VALUES
		('a', 1, 1.2),
		('b', 0, 3.4),
		('a', 1, NULL),
		('b', NULL, 0.9)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ds, err := LoadSQLite(dbPath, "samples", "label", true)
	require.NoError(t, err)

	require.Equal(t, []string{"petal"}, ds.BinCols)
	require.Equal(t, []string{"length"}, ds.ContCols)
	require.Len(t, ds.Y, 4)
	require.Contains(t, ds.Missing, tree.Missing{I: 3, J: 0})
	require.Contains(t, ds.Missing, tree.Missing{I: 2, J: 1})
}
