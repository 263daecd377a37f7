package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn(t *testing.T) {
	title := Column[string]{Name: "title", Table: "movies"}
	userID := Column[int64]{Name: "user_id"}

	tests := []struct {
		name     string
		cond     Condition
		expected string
		args     []interface{}
	}{
		{
			name:     "Eq",
			cond:     title.Eq("Inception"),
			expected: "movies.title = ?",
			args:     []interface{}{"Inception"},
		},
		{
			name:     "And",
			cond:     userID.Eq(7).And(title.Eq("Heat")),
			expected: "(user_id = ? AND movies.title = ?)",
			args:     []interface{}{int64(7), "Heat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.cond.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sql)
			assert.Equal(t, tt.args, args)
		})
	}

	assert.Equal(t, "movies.title ASC", title.Asc())
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "sqlite", false},
		{"sqlite", "sqlite", false},
		{"SQLite3", "sqlite", false},
		{"postgres", "postgres", false},
		{"postgresql", "postgres", false},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := DialectFor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name)
		})
	}
}

func TestDialectBuilder(t *testing.T) {
	title := Column[string]{Name: "title"}

	sql, _, err := Postgres.Builder().Select("id").From("movies").Where(title.Eq("Heat")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM movies WHERE title = $1", sql)

	sql, _, err = SQLite.Builder().Select("id").From("movies").Where(title.Eq("Heat")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM movies WHERE title = ?", sql)
}
