package migrator

import (
	"context"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/eleven-am/cinelog/internal/orm"
	"github.com/eleven-am/cinelog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_FreshDatabase(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	m := NewMigrator(tdb.DB, orm.SQLite)
	ctx := context.Background()

	plan, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{UsersTable, MoviesTable}, plan.CreateTables)
	assert.Empty(t, plan.Changes)

	users, err := tdb.Columns(UsersTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, users)

	movies, err := tdb.Columns(MoviesTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "user_id", "title", "year", "rating", "poster_url", "note"}, movies)

	t.Run("second run is a no-op", func(t *testing.T) {
		plan, err := m.Migrate(ctx)
		require.NoError(t, err)
		assert.True(t, plan.Empty())
	})
}

func TestMigrate_AddsNoteToLegacyTable(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	tdb.LoadLegacy()
	ctx := context.Background()

	m := NewMigrator(tdb.DB, orm.SQLite)

	plan, _, err := m.Plan(ctx)
	require.NoError(t, err)
	assert.Empty(t, plan.CreateTables)
	require.Len(t, plan.Changes, 1)
	assert.Equal(t, []string{"Modify table movies (1 changes)", "  Add column note"}, plan.Descriptions())

	_, err = m.Migrate(ctx)
	require.NoError(t, err)

	ta := testutil.NewTableAssertions(t, tdb)
	ta.AssertColumnExists(MoviesTable, "note")
	ta.AssertRowCount(MoviesTable, 2)

	var row struct {
		Title     string  `db:"title"`
		Rating    float64 `db:"rating"`
		PosterURL *string `db:"poster_url"`
		Note      *string `db:"note"`
	}
	require.NoError(t, tdb.DB.Get(&row, `SELECT title, rating, poster_url, note FROM movies WHERE title = 'Heat'`))
	assert.Equal(t, 8.3, row.Rating)
	require.NotNil(t, row.PosterURL)
	assert.Equal(t, "http://img/heat.jpg", *row.PosterURL)
	assert.Nil(t, row.Note)

	plan, err = m.Migrate(ctx)
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestCreateStatements(t *testing.T) {
	for _, d := range []orm.Dialect{orm.SQLite, orm.Postgres} {
		t.Run(d.Name, func(t *testing.T) {
			stmts := CreateStatements(d)
			require.Len(t, stmts, 2)
			assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS users")
			assert.Contains(t, stmts[1], "ON DELETE CASCADE")
			assert.Contains(t, stmts[1], "UNIQUE(user_id, title)")
			assert.Contains(t, stmts[1], "note TEXT")
		})
	}
}

func TestIsDestructiveChange(t *testing.T) {
	tests := []struct {
		name     string
		change   schema.Change
		expected bool
	}{
		{
			name:     "DropTable is destructive",
			change:   &schema.DropTable{T: &schema.Table{Name: "movies"}},
			expected: true,
		},
		{
			name:     "DropColumn is destructive",
			change:   &schema.DropColumn{C: &schema.Column{Name: "note"}},
			expected: true,
		},
		{
			name:     "ModifyColumn is destructive",
			change:   &schema.ModifyColumn{To: &schema.Column{Name: "rating"}},
			expected: true,
		},
		{
			name:     "AddTable is not destructive",
			change:   &schema.AddTable{T: &schema.Table{Name: "movies"}},
			expected: false,
		},
		{
			name:     "AddColumn is not destructive",
			change:   &schema.AddColumn{C: &schema.Column{Name: "note"}},
			expected: false,
		},
		{
			name: "ModifyTable with only additions is not destructive",
			change: &schema.ModifyTable{
				T:       &schema.Table{Name: "movies"},
				Changes: []schema.Change{&schema.AddColumn{C: &schema.Column{Name: "note"}}},
			},
			expected: false,
		},
		{
			name: "ModifyTable with a drop is destructive",
			change: &schema.ModifyTable{
				T: &schema.Table{Name: "movies"},
				Changes: []schema.Change{
					&schema.AddColumn{C: &schema.Column{Name: "note"}},
					&schema.DropColumn{C: &schema.Column{Name: "poster_url"}},
				},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDestructiveChange(tt.change))
		})
	}
}

func TestDescribeChange(t *testing.T) {
	tests := []struct {
		change   schema.Change
		expected string
	}{
		{&schema.AddTable{T: &schema.Table{Name: "users"}}, "Create table users"},
		{&schema.AddColumn{C: &schema.Column{Name: "note"}}, "Add column note"},
		{&schema.DropColumn{C: &schema.Column{Name: "note"}}, "Drop column note"},
		{&schema.AddIndex{I: &schema.Index{Name: "idx_title"}}, "Add index idx_title"},
		{&schema.AddForeignKey{F: &schema.ForeignKey{Symbol: "fk_user"}}, "Add foreign key fk_user"},
		{&schema.AddCheck{}, "Change type *schema.AddCheck"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescribeChange(tt.change))
		})
	}
}

func TestCountDestructiveChanges(t *testing.T) {
	changes := []schema.Change{
		&schema.AddColumn{C: &schema.Column{Name: "note"}},
		&schema.DropTable{T: &schema.Table{Name: "movies"}},
		&schema.DropColumn{C: &schema.Column{Name: "poster_url"}},
	}

	count, descriptions := CountDestructiveChanges(changes)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"Drop column poster_url", "Drop table movies"}, descriptions)
}
