package cli

import (
	"fmt"

	"github.com/eleven-am/cinelog/internal/migrator"
	"github.com/spf13/cobra"
)

type migrateResult struct {
	Driver  string   `json:"driver"`
	DryRun  bool     `json:"dry_run"`
	Changes []string `json:"changes"`
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Long: `Create the users and movies tables if they are missing and add any
missing movie columns. Existing data is never dropped or rewritten; a
change that would do so is refused.

Every other command migrates automatically. Use --dry-run to see what
would change without touching the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			dbConfig := opts.config.DBConfig()
			dialect, err := dbConfig.Dialect()
			if err != nil {
				return err
			}

			db, err := dbConfig.Connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			m := migrator.NewMigrator(db, dialect)

			var plan *migrator.Plan
			if dryRun {
				plan, _, err = m.Plan(ctx)
			} else {
				plan, err = m.Migrate(ctx)
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			result := migrateResult{Driver: dialect.Name, DryRun: dryRun, Changes: plan.Descriptions()}
			if result.Changes == nil {
				result.Changes = []string{}
			}

			p := opts.printer(cmd)
			if opts.jsonOutput {
				return p.JSON(result)
			}
			if plan.Empty() {
				p.Println("Schema is up to date")
				return nil
			}

			if dryRun {
				p.Println("Pending changes:")
			} else {
				p.Println("Applied changes:")
			}
			for _, line := range result.Changes {
				p.Printf("  %s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending changes without applying them")

	return cmd
}
