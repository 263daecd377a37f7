package migrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"github.com/eleven-am/cinelog/internal/logger"
	"github.com/eleven-am/cinelog/internal/orm"
	"github.com/jmoiron/sqlx"
)

// ErrDestructiveChange is returned when a planned migration would drop or
// alter existing structure. Migrations here only ever add.
var ErrDestructiveChange = errors.New("destructive schema change refused")

// Plan describes what Migrate would do.
type Plan struct {
	// CreateTables lists tables that do not exist yet, in creation order.
	CreateTables []string
	// Changes are in-place alterations of existing tables.
	Changes []schema.Change
}

// Empty reports whether the schema is already up to date.
func (p *Plan) Empty() bool {
	return len(p.CreateTables) == 0 && len(p.Changes) == 0
}

// Descriptions renders the plan as human-readable lines.
func (p *Plan) Descriptions() []string {
	var out []string
	for _, name := range p.CreateTables {
		out = append(out, DescribeChange(&schema.AddTable{T: &schema.Table{Name: name}}))
	}
	for _, change := range p.Changes {
		out = append(out, DescribeChange(change))
		if mod, ok := change.(*schema.ModifyTable); ok {
			for _, sub := range mod.Changes {
				out = append(out, "  "+DescribeChange(sub))
			}
		}
	}
	return out
}

// Migrator keeps the catalog schema current.
type Migrator struct {
	db      *sqlx.DB
	dialect orm.Dialect
	logger  logger.Logger
	open    func(schema.ExecQuerier) (migrate.Driver, error)
}

func NewMigrator(db *sqlx.DB, dialect orm.Dialect) *Migrator {
	open := sqlite.Open
	if dialect.Name == orm.Postgres.Name {
		open = postgres.Open
	}

	return &Migrator{
		db:      db,
		dialect: dialect,
		logger:  logger.Migration(),
		open:    open,
	}
}

// Plan inspects the live schema and computes the additive changes needed.
func (m *Migrator) Plan(ctx context.Context) (*Plan, migrate.Driver, error) {
	driver, err := m.open(m.db.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open schema driver: %w", err)
	}

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.name)
	}

	current, err := driver.InspectSchema(ctx, "", &schema.InspectOptions{Tables: names})
	if err != nil && !schema.IsNotExistError(err) {
		return nil, nil, fmt.Errorf("failed to inspect current schema: %w", err)
	}

	plan := &Plan{}
	additive := additiveColumns()

	for _, t := range tables {
		var existing *schema.Table
		if current != nil {
			existing, _ = current.Table(t.name)
		}
		if existing == nil {
			plan.CreateTables = append(plan.CreateTables, t.name)
			continue
		}

		var adds []schema.Change
		for _, col := range additive[t.name] {
			if _, ok := existing.Column(col.Name); ok {
				continue
			}
			adds = append(adds, &schema.AddColumn{C: col})
		}
		if len(adds) > 0 {
			plan.Changes = append(plan.Changes, &schema.ModifyTable{T: existing, Changes: adds})
		}
	}

	return plan, driver, nil
}

// Migrate creates missing tables and adds missing columns. It is safe to run
// on every start.
func (m *Migrator) Migrate(ctx context.Context) (*Plan, error) {
	plan, driver, err := m.Plan(ctx)
	if err != nil {
		return nil, err
	}

	if plan.Empty() {
		m.logger.Debug("Schema is up to date")
		return plan, nil
	}

	if count, descriptions := CountDestructiveChanges(plan.Changes); count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDestructiveChange, strings.Join(descriptions, "; "))
	}

	if len(plan.CreateTables) > 0 {
		if err := m.createTables(ctx, plan.CreateTables); err != nil {
			return nil, err
		}
	}

	if len(plan.Changes) > 0 {
		if err := driver.ApplyChanges(ctx, plan.Changes); err != nil {
			return nil, fmt.Errorf("failed to apply schema changes: %w", err)
		}
	}

	m.logger.Info("Schema migrated", "changes", strings.Join(plan.Descriptions(), ", "))
	return plan, nil
}

func (m *Migrator) createTables(ctx context.Context, names []string) error {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	tm := orm.NewTransactionManager(m.db)
	return tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, t := range tables {
			if !wanted[t.name] {
				continue
			}
			m.logger.Debug("Creating table", "table", t.name)
			if _, err := tx.ExecContext(ctx, t.statement(m.dialect)); err != nil {
				return fmt.Errorf("failed to create table %s: %w", t.name, err)
			}
		}
		return nil
	})
}

func IsDestructiveChange(change schema.Change) bool {
	switch c := change.(type) {
	case *schema.DropTable, *schema.DropColumn, *schema.DropIndex, *schema.DropForeignKey,
		*schema.ModifyColumn, *schema.RenameColumn, *schema.RenameTable:
		return true
	case *schema.ModifyTable:
		for _, subChange := range c.Changes {
			if IsDestructiveChange(subChange) {
				return true
			}
		}
	}
	return false
}

func DescribeChange(change schema.Change) string {
	switch c := change.(type) {
	case *schema.AddTable:
		return fmt.Sprintf("Create table %s", c.T.Name)
	case *schema.DropTable:
		return fmt.Sprintf("Drop table %s", c.T.Name)
	case *schema.ModifyTable:
		return fmt.Sprintf("Modify table %s (%d changes)", c.T.Name, len(c.Changes))
	case *schema.AddColumn:
		return fmt.Sprintf("Add column %s", c.C.Name)
	case *schema.DropColumn:
		return fmt.Sprintf("Drop column %s", c.C.Name)
	case *schema.ModifyColumn:
		return fmt.Sprintf("Modify column %s", c.To.Name)
	case *schema.AddIndex:
		return fmt.Sprintf("Add index %s", c.I.Name)
	case *schema.DropIndex:
		return fmt.Sprintf("Drop index %s", c.I.Name)
	case *schema.AddForeignKey:
		return fmt.Sprintf("Add foreign key %s", c.F.Symbol)
	case *schema.DropForeignKey:
		return fmt.Sprintf("Drop foreign key %s", c.F.Symbol)
	default:
		return fmt.Sprintf("Change type %T", change)
	}
}

func CountDestructiveChanges(changes []schema.Change) (count int, descriptions []string) {
	for _, change := range changes {
		if IsDestructiveChange(change) {
			count++
			descriptions = append(descriptions, DescribeChange(change))
		}
	}
	sort.Strings(descriptions)
	return count, descriptions
}
