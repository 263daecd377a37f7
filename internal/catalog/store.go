package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eleven-am/cinelog/internal/logger"
	"github.com/eleven-am/cinelog/internal/migrator"
	"github.com/eleven-am/cinelog/internal/orm"
	"github.com/jmoiron/sqlx"
)

var (
	userIDColumn   = orm.Column[int64]{Name: "id"}
	userNameColumn = orm.Column[string]{Name: "name"}
	movieUserIDCol = orm.Column[int64]{Name: "user_id"}
	movieTitleCol  = orm.Column[string]{Name: "title"}

	movieColumns = []string{"title", "year", "rating", "poster_url", "note"}

	readOnly = &orm.TransactionOptions{ReadOnly: true}
)

// Store is the per-user movie catalog. Every method runs in its own
// transaction, committed before it returns.
type Store struct {
	db      *sqlx.DB
	dialect orm.Dialect
	tm      *orm.TransactionManager
	logger  logger.Logger
}

// Open connects to the configured database, brings the schema up to date
// and returns a ready store.
func Open(ctx context.Context, cfg *migrator.DBConfig) (*Store, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}

	db, err := cfg.Connect(ctx)
	if err != nil {
		return nil, unavailable(err)
	}

	if _, err := migrator.NewMigrator(db, dialect).Migrate(ctx); err != nil {
		db.Close()
		if errors.Is(err, migrator.ErrDestructiveChange) {
			return nil, err
		}
		return nil, unavailable(err)
	}

	return New(db, dialect), nil
}

// New wraps an already migrated connection.
func New(db *sqlx.DB, dialect orm.Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		tm:      orm.NewTransactionManager(db),
		logger:  logger.Catalog(),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle, e.g. for the migrate command.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the engine the store talks to.
func (s *Store) Dialect() orm.Dialect {
	return s.dialect
}

// ListUsers returns every user ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	query := s.dialect.Builder().
		Select("id", "name").
		From(migrator.UsersTable).
		OrderBy(userNameColumn.Asc())

	err := s.tm.WithTransactionOptions(ctx, readOnly, func(tx *sqlx.Tx) error {
		return orm.Select(ctx, tx, &users, query)
	})
	if err != nil {
		return nil, s.readFailure("list_users", migrator.UsersTable, err)
	}
	return users, nil
}

// GetOrCreateUser resolves a user name to its id, creating the user on
// first use. The name is trimmed; blank names are rejected.
func (s *Store) GetOrCreateUser(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: user name must not be empty", ErrInvalidInput)
	}

	lookup := s.dialect.Builder().
		Select("id").
		From(migrator.UsersTable).
		Where(userNameColumn.Eq(name))

	insert := s.dialect.Builder().
		Insert(migrator.UsersTable).
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING")

	var id int64
	err := s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		err := orm.Get(ctx, tx, &id, lookup)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if _, err := orm.Exec(ctx, tx, insert); err != nil {
			return err
		}
		s.logger.Info("Created user", "name", name)

		return orm.Get(ctx, tx, &id, lookup)
	})
	if err != nil {
		return 0, s.readFailure("get_or_create_user", migrator.UsersTable, err)
	}
	return id, nil
}

// ListMovies returns the user's movies ordered by title. Unknown users have
// no movies.
func (s *Store) ListMovies(ctx context.Context, userID int64) ([]Movie, error) {
	movies := []Movie{}
	query := s.dialect.Builder().
		Select(movieColumns...).
		From(migrator.MoviesTable).
		Where(movieUserIDCol.Eq(userID)).
		OrderBy(movieTitleCol.Asc())

	err := s.tm.WithTransactionOptions(ctx, readOnly, func(tx *sqlx.Tx) error {
		return orm.Select(ctx, tx, &movies, query)
	})
	if err != nil {
		return nil, s.readFailure("list_movies", migrator.MoviesTable, err)
	}
	return movies, nil
}

// AddMovie inserts m for the user. It returns false when the title already
// exists for that user or the insert is otherwise rejected. Only an
// unreachable store yields an error.
func (s *Store) AddMovie(ctx context.Context, userID int64, m Movie) (bool, error) {
	insert := s.dialect.Builder().
		Insert(migrator.MoviesTable).
		Columns(append([]string{"user_id"}, movieColumns...)...).
		Values(userID, m.Title, m.Year, m.Rating, m.PosterURL, m.Note)

	err := s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		_, err := orm.Exec(ctx, tx, insert)
		return err
	})
	if err != nil {
		return s.writeFailure("add_movie", migrator.MoviesTable, err)
	}

	s.logger.Debug("Added movie", "user_id", userID, "title", m.Title)
	return true, nil
}

// DeleteMovie removes the movie with exactly this title. It reports whether
// a row was removed.
func (s *Store) DeleteMovie(ctx context.Context, userID int64, title string) (bool, error) {
	del := s.dialect.Builder().
		Delete(migrator.MoviesTable).
		Where(movieUserIDCol.Eq(userID).And(movieTitleCol.Eq(title)))

	var affected int64
	err := s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		affected, err = orm.Exec(ctx, tx, del)
		return err
	})
	if err != nil {
		return s.writeFailure("delete_movie", migrator.MoviesTable, err)
	}

	s.logger.Debug("Deleted movie", "user_id", userID, "title", title, "rows", affected)
	return affected > 0, nil
}

// UpdateMovie applies the fields set in u to the movie with exactly this
// title. An empty update returns false without touching storage.
func (s *Store) UpdateMovie(ctx context.Context, userID int64, title string, u MovieUpdate) (bool, error) {
	if u.Empty() {
		return false, nil
	}

	upd := s.dialect.Builder().Update(migrator.MoviesTable)
	switch {
	case u.Rating != nil && u.Note != nil:
		upd = upd.Set("rating", *u.Rating).Set("note", *u.Note)
	case u.Rating != nil:
		upd = upd.Set("rating", *u.Rating)
	default:
		upd = upd.Set("note", *u.Note)
	}
	upd = upd.Where(movieUserIDCol.Eq(userID).And(movieTitleCol.Eq(title)))

	var affected int64
	err := s.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		affected, err = orm.Exec(ctx, tx, upd)
		return err
	})
	if err != nil {
		return s.writeFailure("update_movie", migrator.MoviesTable, err)
	}

	s.logger.Debug("Updated movie", "user_id", userID, "title", title, "rows", affected)
	return affected > 0, nil
}

// CountMovies returns how many movies each user owns, keyed by user id.
func (s *Store) CountMovies(ctx context.Context) (map[int64]int, error) {
	var rows []struct {
		UserID int64 `db:"user_id"`
		Count  int   `db:"movie_count"`
	}
	query := s.dialect.Builder().
		Select("user_id", "COUNT(*) AS movie_count").
		From(migrator.MoviesTable).
		GroupBy("user_id")

	err := s.tm.WithTransactionOptions(ctx, readOnly, func(tx *sqlx.Tx) error {
		return orm.Select(ctx, tx, &rows, query)
	})
	if err != nil {
		return nil, s.readFailure("count_movies", migrator.MoviesTable, err)
	}

	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Count
	}
	return counts, nil
}

// writeFailure converts a failed write into the (false, err) result. Only
// storage outages come back as errors; everything else is logged.
func (s *Store) writeFailure(op, table string, err error) (bool, error) {
	parsed := s.dialect.ParseError(err, op, table)

	switch {
	case isOutage(parsed):
		s.logger.Error("Storage unavailable",
			"op", op,
			"table", table,
			"retryable", orm.IsRetryable(parsed),
			"error", err)
		return false, unavailable(err)
	case orm.IsConstraintError(parsed):
		s.logger.Warn("Write rejected by constraint",
			"op", op,
			"table", table,
			"constraint", orm.GetConstraintName(parsed),
			"column", orm.GetColumnName(parsed),
			"error", fmt.Errorf("%w: %v", ErrConstraintViolation, err))
	default:
		s.logger.Error("Write failed", "op", op, "table", table, "error", err)
	}
	return false, nil
}

// readFailure converts a failed read. A read has no boolean result to fall
// back on, so every failure is reported as the store being unavailable.
func (s *Store) readFailure(op, table string, err error) error {
	parsed := s.dialect.ParseError(err, op, table)
	s.logger.Error("Read failed", "op", op, "table", table, "error", parsed)
	return unavailable(err)
}

func isOutage(err error) bool {
	return orm.IsUnavailable(err) || errors.Is(err, orm.ErrTimeout)
}

// unavailable hides the driver error type behind ErrStorageUnavailable,
// keeping only its message.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
