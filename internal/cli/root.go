package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/eleven-am/cinelog/internal/catalog"
	"github.com/eleven-am/cinelog/internal/logger"
	"github.com/eleven-am/cinelog/internal/orm"
	"github.com/eleven-am/cinelog/pkg/cinelog"
	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags and the resolved configuration
// down to every subcommand.
type rootOptions struct {
	configFile  string
	dbPath      string
	databaseURL string
	user        string
	jsonOutput  bool
	debug       bool
	verbose     bool

	config *CatalogConfig
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "cinelog",
		Short: "cinelog - personal movie catalog",
		Long: `cinelog keeps a list of movies per named user profile in a local
SQLite file (or a shared PostgreSQL database).

Every movie command works on one profile, selected with --user,
CINELOG_USER or profile.default_user in cinelog.yaml. Profiles are
created the first time they are used.`,
		Version:           cinelog.Version,
		SilenceUsage:      true,
		PersistentPreRunE: opts.load,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: cinelog.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&opts.databaseURL, "url", "", "PostgreSQL connection URL")
	rootCmd.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "user profile to work on")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newVersionCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newUsersCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newUpdateCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newRandomCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newSortCmd(opts))
	rootCmd.AddCommand(newFilterCmd(opts))

	return rootCmd
}

// initLogging configures the logger from the verbosity flags, falling back
// to the configured level.
func (o *rootOptions) initLogging(cmd *cobra.Command) {
	level := logger.LevelFromFlags(o.debug, o.verbose)
	format := "console"
	if o.config != nil {
		if !o.debug && !o.verbose && o.config.Logging.Level != "" {
			level = o.config.Logging.Level
		}
		format = o.config.Logging.Format
	}

	logger.Init(logger.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
}

// load resolves configuration: defaults, then the config file, then the
// environment, then flags.
func (o *rootOptions) load(cmd *cobra.Command, args []string) error {
	o.initLogging(cmd)

	if err := LoadDotEnv(""); err != nil {
		logger.CLI().Warn("Ignoring .env file", "error", err)
	}

	cfg, err := LoadCatalogConfig(o.configFile)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if o.dbPath != "" {
		cfg.Database.Driver = orm.SQLite.Name
		cfg.Database.Path = o.dbPath
	}
	if o.databaseURL != "" {
		cfg.Database.Driver = orm.Postgres.Name
		cfg.Database.URL = o.databaseURL
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.config = cfg
	o.initLogging(cmd)
	o.initQueryMiddleware()

	logger.CLI().Debug("Configuration resolved",
		"driver", cfg.Database.Driver,
		"path", cfg.Database.Path,
		"timeout", cfg.Timeout.String())
	return nil
}

// initQueryMiddleware rebuilds the statement middleware chain for this run.
func (o *rootOptions) initQueryMiddleware() {
	orm.ResetMiddleware()
	if threshold := o.config.Logging.SlowQuery; threshold > 0 {
		orm.Use(orm.SlowQueryMiddleware(threshold, nil))
	}
}

// context bounds a command by the configured timeout.
func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := DefaultTimeout
	if o.config != nil && o.config.Timeout > 0 {
		timeout = o.config.Timeout
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

// profile returns the selected user name.
func (o *rootOptions) profile() (string, error) {
	name := strings.TrimSpace(o.user)
	if name == "" && o.config != nil {
		name = strings.TrimSpace(o.config.Profile.DefaultUser)
	}
	if name == "" {
		return "", fmt.Errorf("%w: no user profile selected (use --user, CINELOG_USER or profile.default_user)", catalog.ErrInvalidInput)
	}
	return name, nil
}

func (o *rootOptions) openStore(ctx context.Context) (*catalog.Store, error) {
	store, err := catalog.Open(ctx, o.config.DBConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return store, nil
}

// session is an open store bound to one user profile.
type session struct {
	store  *catalog.Store
	userID int64
	user   string
}

func (o *rootOptions) openSession(ctx context.Context) (*session, error) {
	name, err := o.profile()
	if err != nil {
		return nil, err
	}

	store, err := o.openStore(ctx)
	if err != nil {
		return nil, err
	}

	id, err := store.GetOrCreateUser(ctx, name)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to resolve user %q: %w", name, err)
	}

	logger.CLI().Debug("Using profile", "user", name, "id", id)
	return &session{store: store, userID: id, user: name}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// movies fetches the profile's full list.
func (s *session) movies(ctx context.Context) ([]catalog.Movie, error) {
	movies, err := s.store.ListMovies(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

// withSession runs fn against the selected profile and closes the store
// afterwards.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := o.context(cmd)
	defer cancel()

	s, err := o.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}
