package orm

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Column represents a type-safe database column reference
type Column[T any] struct {
	Name  string
	Table string
}

// String returns the full column reference for SQL
func (c Column[T]) String() string {
	if c.Table != "" {
		return fmt.Sprintf("%s.%s", c.Table, c.Name)
	}
	return c.Name
}

// Eq creates an equality condition
func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

// Asc creates an ascending order expression
func (c Column[T]) Asc() string {
	return c.String() + " ASC"
}

// Condition wraps a squirrel expression
type Condition struct {
	condition squirrel.Sqlizer
}

// And combines this condition with another using AND
func (c Condition) And(other Condition) Condition {
	return Condition{squirrel.And{c.condition, other.condition}}
}

// ToSql renders the condition, so a Condition can be passed to Where directly
func (c Condition) ToSql() (string, []interface{}, error) {
	return c.condition.ToSql()
}
