package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLegacy(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.LoadLegacy()

	ta := NewTableAssertions(t, tdb)
	ta.AssertTableExists("users")
	ta.AssertTableExists("movies")
	ta.AssertTableNotExists("ratings")
	ta.AssertColumnExists("movies", "poster_url")
	ta.AssertColumnType("movies", "rating", "REAL")
	ta.AssertRowCount("movies", 2)

	exists, err := tdb.ColumnExists("movies", "note")
	require.NoError(t, err)
	assert.False(t, exists)

	columns, err := tdb.Columns("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, columns)
}

func TestForeignKeysEnabled(t *testing.T) {
	tdb := NewTestDB(t)
	tdb.LoadLegacy()

	err := tdb.ExecuteSQL(`INSERT INTO movies (user_id, title, year, rating) VALUES (42, 'Ghost', 1990, 6)`)
	assert.Error(t, err)

	require.NoError(t, tdb.ExecuteSQL(`DELETE FROM users WHERE name = 'ana'`))
	NewTableAssertions(t, tdb).AssertRowCount("movies", 0)
}

func TestTxRecorder(t *testing.T) {
	db, rec := NewRecordingDB("sqlite")
	defer db.Close()

	tx, err := db.BeginTxx(context.Background(), &sql.TxOptions{ReadOnly: true})
	require.NoError(t, err)

	_, err = tx.Exec("SELECT 1")
	assert.ErrorIs(t, err, ErrNoStatements)
	require.NoError(t, tx.Rollback())

	tx, err = db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	opts := rec.Options()
	require.Len(t, opts, 2)
	assert.True(t, opts[0].ReadOnly)
	assert.False(t, opts[1].ReadOnly)
}
