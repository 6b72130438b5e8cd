package stats

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/snapshot"
	"github.com/FO214/remess/internal/temporal"
)

// Engine runs aggregation queries against a snapshot. Every public operation
// opens its own read-only handle, runs bounded queries, and closes it before
// returning; concurrent calls need no coordination because the snapshot is
// immutable. Operations never return errors: snapshot-access failures and
// empty result sets both degrade to documented zero defaults, with
// diagnostics going to the logger.
type Engine struct {
	excl   filter.Exclusion
	logger *slog.Logger
	loc    *time.Location

	open func() (*snapshot.Snapshot, func(), error)
}

// Options configures an Engine.
type Options struct {
	SnapshotPath    string
	ExcludedHandles []string
	Logger          *slog.Logger   // nil: slog.Default()
	Location        *time.Location // nil: time.Local
}

// New creates an engine reading the snapshot at opts.SnapshotPath.
func New(opts Options) *Engine {
	e := newEngine(opts)
	path := opts.SnapshotPath
	e.open = func() (*snapshot.Snapshot, func(), error) {
		s, err := snapshot.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return e
}

// NewFromDB creates an engine over an already-open database. The engine
// does not close it. Used by tests with in-memory fixtures.
func NewFromDB(db *sql.DB, opts Options) *Engine {
	e := newEngine(opts)
	snap := snapshot.FromDB(db)
	e.open = func() (*snapshot.Snapshot, func(), error) {
		return snap, func() {}, nil
	}
	return e
}

func newEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		excl:   filter.NewExclusion(opts.ExcludedHandles),
		logger: logger,
		loc:    loc,
	}
}

// Excluded exposes the active exclusion set.
func (e *Engine) Excluded() filter.Exclusion {
	return e.excl
}

// run opens the snapshot, executes fn, and maps any failure to the zero
// value of T. Every public operation goes through here so that "no data"
// and "no snapshot" are indistinguishable to callers.
func run[T any](e *Engine, ctx context.Context, op string, fn func(ctx context.Context, db *sql.DB) (T, error)) T {
	var zero T
	snap, cleanup, err := e.open()
	if err != nil {
		e.logger.Warn("snapshot unavailable", "op", op, "error", err)
		return zero
	}
	defer cleanup()

	result, err := fn(ctx, snap.DB())
	if err != nil {
		e.logger.Warn("query degraded to default", "op", op, "error", err)
		return zero
	}
	return result
}

// baseConditions returns the WHERE fragments applied to every message-scope
// query: eligibility, excluded-chat removal, and (unless group) the
// direct-chat membership restriction. Aliases: m = message, cmj =
// chat_message_join.
func (e *Engine) baseConditions(group bool) ([]string, []any) {
	exclClause, exclArgs := e.excl.ChatNotExcludedClause("cmj.chat_id")
	conds := []string{filter.EligibleExpr("m"), exclClause}
	if group {
		conds = append(conds, filter.GroupChatExpr("cmj.chat_id"))
	} else {
		conds = append(conds, filter.DirectChatExpr("cmj.chat_id"))
	}
	return conds, exclArgs
}

// queryTexts runs a single-column text query, mapping NULL to "".
func queryTexts(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v.String)
	}
	return out, rows.Err()
}

// datesOf converts raw Apple timestamps to local times. Callers filter out
// NULL dates in SQL before reaching here.
func (e *Engine) datesOf(raws []int64) []time.Time {
	out := make([]time.Time, len(raws))
	for i, r := range raws {
		out[i] = temporal.ToTime(r, e.loc)
	}
	return out
}

// yearBuckets folds raw timestamps into ascending (year, count) pairs.
func (e *Engine) yearBuckets(raws []int64) []YearCount {
	counts := make(map[int]int64)
	for _, r := range raws {
		counts[temporal.Year(r, e.loc)]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	out := make([]YearCount, len(years))
	for i, y := range years {
		out[i] = YearCount{Year: y, Count: counts[y]}
	}
	return out
}

// mostActive reduces year buckets to the first-encountered maximum.
func mostActive(byYear []YearCount) (int, int64) {
	year, count := 0, int64(0)
	for _, yc := range byYear {
		if yc.Count > count {
			year, count = yc.Year, yc.Count
		}
	}
	return year, count
}

func joinConds(conds []string) string {
	if len(conds) == 0 {
		return "1=1"
	}
	return strings.Join(conds, " AND ")
}
