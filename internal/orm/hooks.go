package orm

import (
	"context"
	"sync"
	"time"

	"github.com/eleven-am/cinelog/internal/logger"
)

// QueryKind tells the middleware which helper issued a statement.
type QueryKind string

const (
	QueryExec   QueryKind = "exec"
	QuerySelect QueryKind = "select"
	QueryGet    QueryKind = "get"
)

// QueryContext describes one statement passing through Exec, Select or Get.
// Rows and Duration are filled in once the statement has run.
type QueryContext struct {
	Kind     QueryKind
	Query    string
	Args     []interface{}
	Rows     int64
	Duration time.Duration
	Err      error
}

// QueryFunc runs a statement.
type QueryFunc func(ctx context.Context, qc *QueryContext) error

// Middleware wraps statement execution.
type Middleware func(next QueryFunc) QueryFunc

var (
	middlewareMu sync.RWMutex
	middleware   = []Middleware{LoggingMiddleware(nil)}
)

// Use appends middleware to the chain shared by all executor helpers.
func Use(mw ...Middleware) {
	middlewareMu.Lock()
	defer middlewareMu.Unlock()
	middleware = append(middleware, mw...)
}

// ResetMiddleware restores the default chain.
func ResetMiddleware() {
	middlewareMu.Lock()
	defer middlewareMu.Unlock()
	middleware = []Middleware{LoggingMiddleware(nil)}
}

// run executes final inside the middleware chain, outermost first.
func run(ctx context.Context, qc *QueryContext, final QueryFunc) error {
	middlewareMu.RLock()
	chain := make([]Middleware, len(middleware))
	copy(chain, middleware)
	middlewareMu.RUnlock()

	timed := func(ctx context.Context, qc *QueryContext) error {
		start := time.Now()
		err := final(ctx, qc)
		qc.Duration = time.Since(start)
		qc.Err = err
		return err
	}

	fn := QueryFunc(timed)
	for i := len(chain) - 1; i >= 0; i-- {
		fn = chain[i](fn)
	}
	return fn(ctx, qc)
}

// LoggingMiddleware logs every statement at debug level. A nil logger uses
// the db component logger as configured at call time.
func LoggingMiddleware(log logger.Logger) Middleware {
	return func(next QueryFunc) QueryFunc {
		return func(ctx context.Context, qc *QueryContext) error {
			err := next(ctx, qc)

			l := log
			if l == nil {
				l = logger.DB()
			}
			if err != nil {
				l.Debug("Query failed",
					"kind", string(qc.Kind),
					"query", qc.Query,
					"duration", qc.Duration.String(),
					"error", err)
			} else {
				l.Debug("Query executed",
					"kind", string(qc.Kind),
					"query", qc.Query,
					"args", len(qc.Args),
					"rows", qc.Rows,
					"duration", qc.Duration.String())
			}

			return err
		}
	}
}

// SlowQueryMiddleware warns about statements slower than threshold.
func SlowQueryMiddleware(threshold time.Duration, log logger.Logger) Middleware {
	return func(next QueryFunc) QueryFunc {
		return func(ctx context.Context, qc *QueryContext) error {
			err := next(ctx, qc)
			if qc.Duration >= threshold {
				l := log
				if l == nil {
					l = logger.DB()
				}
				l.Warn("Slow query", "query", qc.Query, "duration", qc.Duration.String())
			}
			return err
		}
	}
}
