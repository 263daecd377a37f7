package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/eleven-am/cinelog/internal/migrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), migrator.NewDBConfig(filepath.Join(t.TempDir(), "movies.db")))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetOrCreateUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		first, err := store.GetOrCreateUser(ctx, "ana")
		require.NoError(t, err)
		second, err := store.GetOrCreateUser(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		count := 0
		for _, u := range users {
			if u.Name == "ana" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("name is trimmed", func(t *testing.T) {
		id, err := store.GetOrCreateUser(ctx, "ana")
		require.NoError(t, err)
		padded, err := store.GetOrCreateUser(ctx, "  ana  ")
		require.NoError(t, err)
		assert.Equal(t, id, padded)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		lower, err := store.GetOrCreateUser(ctx, "ana")
		require.NoError(t, err)
		upper, err := store.GetOrCreateUser(ctx, "Ana")
		require.NoError(t, err)
		assert.NotEqual(t, lower, upper)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := store.GetOrCreateUser(ctx, "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestListUsers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)

	for _, name := range []string{"zoe", "ana", "mo"} {
		_, err := store.GetOrCreateUser(ctx, name)
		require.NoError(t, err)
	}

	users, err = store.ListUsers(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"ana", "mo", "zoe"}, names)
}

func TestAddAndListMovies(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ana, err := store.GetOrCreateUser(ctx, "ana")
	require.NoError(t, err)
	bo, err := store.GetOrCreateUser(ctx, "bo")
	require.NoError(t, err)

	inception := Movie{Title: "Inception", Year: 2010, Rating: 8.8, PosterURL: ptr("http://img/inception.jpg"), Note: ptr("dream levels")}
	heat := Movie{Title: "Heat", Year: 1995, Rating: 8.3}

	ok, err := store.AddMovie(ctx, ana, inception)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.AddMovie(ctx, ana, heat)
	require.NoError(t, err)
	assert.True(t, ok)

	movies, err := store.ListMovies(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, []Movie{heat, inception}, movies)

	t.Run("duplicate title for same user", func(t *testing.T) {
		ok, err := store.AddMovie(ctx, ana, Movie{Title: "Heat", Year: 1986, Rating: 1})
		require.NoError(t, err)
		assert.False(t, ok)

		movies, err := store.ListMovies(ctx, ana)
		require.NoError(t, err)
		assert.Len(t, movies, 2)
		assert.Equal(t, 1995, movies[0].Year)
	})

	t.Run("same title for another user", func(t *testing.T) {
		ok, err := store.AddMovie(ctx, bo, heat)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("exact match at storage", func(t *testing.T) {
		ok, err := store.AddMovie(ctx, bo, Movie{Title: "HEAT", Year: 1995, Rating: 8})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown user has no movies", func(t *testing.T) {
		movies, err := store.ListMovies(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("unknown user cannot own movies", func(t *testing.T) {
		ok, err := store.AddMovie(ctx, 9999, Movie{Title: "Ghost", Year: 1990, Rating: 6})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDeleteMovie(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ana, err := store.GetOrCreateUser(ctx, "ana")
	require.NoError(t, err)
	for _, m := range []Movie{{Title: "Inception", Year: 2010, Rating: 8.8}, {Title: "Up", Year: 2009, Rating: 8.2}} {
		ok, err := store.AddMovie(ctx, ana, m)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := store.DeleteMovie(ctx, ana, "inception")
	require.NoError(t, err)
	assert.False(t, ok, "store matches titles exactly")

	ok, err = store.DeleteMovie(ctx, ana, "Inception")
	require.NoError(t, err)
	assert.True(t, ok)

	movies, err := store.ListMovies(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, []string{"Up"}, titles(movies))

	ok, err = store.DeleteMovie(ctx, ana, "Inception")
	require.NoError(t, err)
	assert.False(t, ok)

	movies, err = store.ListMovies(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, []string{"Up"}, titles(movies))
}

func TestUpdateMovie(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ana, err := store.GetOrCreateUser(ctx, "ana")
	require.NoError(t, err)
	original := Movie{Title: "Heat", Year: 1995, Rating: 7, PosterURL: ptr("http://img/heat.jpg"), Note: ptr("bank job")}
	ok, err := store.AddMovie(ctx, ana, original)
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("rating only", func(t *testing.T) {
		ok, err := store.UpdateMovie(ctx, ana, "Heat", MovieUpdate{Rating: ptr(8.5)})
		require.NoError(t, err)
		assert.True(t, ok)

		movies, err := store.ListMovies(ctx, ana)
		require.NoError(t, err)
		want := original
		want.Rating = 8.5
		assert.Equal(t, []Movie{want}, movies)
	})

	t.Run("note only", func(t *testing.T) {
		ok, err := store.UpdateMovie(ctx, ana, "Heat", MovieUpdate{Note: ptr("rewatch")})
		require.NoError(t, err)
		assert.True(t, ok)

		movies, err := store.ListMovies(ctx, ana)
		require.NoError(t, err)
		require.Len(t, movies, 1)
		assert.Equal(t, 8.5, movies[0].Rating)
		assert.Equal(t, "rewatch", *movies[0].Note)
	})

	t.Run("both fields", func(t *testing.T) {
		ok, err := store.UpdateMovie(ctx, ana, "Heat", MovieUpdate{Rating: ptr(9.0), Note: ptr("classic")})
		require.NoError(t, err)
		assert.True(t, ok)

		movies, err := store.ListMovies(ctx, ana)
		require.NoError(t, err)
		require.Len(t, movies, 1)
		assert.Equal(t, 9.0, movies[0].Rating)
		assert.Equal(t, "classic", *movies[0].Note)
		assert.Equal(t, 1995, movies[0].Year)
	})

	t.Run("empty update changes nothing", func(t *testing.T) {
		before, err := store.ListMovies(ctx, ana)
		require.NoError(t, err)

		ok, err := store.UpdateMovie(ctx, ana, "Heat", MovieUpdate{})
		require.NoError(t, err)
		assert.False(t, ok)

		after, err := store.ListMovies(ctx, ana)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("missing title", func(t *testing.T) {
		ok, err := store.UpdateMovie(ctx, ana, "Ronin", MovieUpdate{Rating: ptr(7.0)})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCascadeDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ana, err := store.GetOrCreateUser(ctx, "ana")
	require.NoError(t, err)
	ok, err := store.AddMovie(ctx, ana, Movie{Title: "Heat", Year: 1995, Rating: 8})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = store.DB().Exec(`DELETE FROM users WHERE id = ?`, ana)
	require.NoError(t, err)

	var remaining int
	require.NoError(t, store.DB().Get(&remaining, `SELECT COUNT(*) FROM movies`))
	assert.Equal(t, 0, remaining)
}

func TestCountMovies(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ana, err := store.GetOrCreateUser(ctx, "ana")
	require.NoError(t, err)
	_, err = store.GetOrCreateUser(ctx, "bo")
	require.NoError(t, err)
	for _, title := range []string{"A", "B"} {
		_, err := store.AddMovie(ctx, ana, Movie{Title: title, Year: 2000, Rating: 5})
		require.NoError(t, err)
	}

	counts, err := store.CountMovies(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{ana: 2}, counts)
}

func TestClosedStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Close())

	_, err := store.ListUsers(ctx)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	ok, err := store.AddMovie(ctx, 1, Movie{Title: "Heat", Year: 1995, Rating: 8})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), &migrator.DBConfig{Driver: "mysql", Path: "x.db"})
	assert.Error(t, err)
}
