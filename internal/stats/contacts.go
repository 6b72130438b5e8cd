package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/temporal"
	"github.com/FO214/remess/internal/textstats"
)

// contactChatClause restricts cmj.chat_id to direct conversations whose sole
// member is one of the given handles. The exclusion set applies here exactly
// as on the overall queries: asking about an excluded handle yields nothing.
func (e *Engine) contactChatClause(handles []string) (string, []any) {
	placeholders := make([]string, len(handles))
	args := make([]any, len(handles))
	for i, h := range handles {
		placeholders[i] = "?"
		args[i] = h
	}
	exclClause, exclArgs := e.excl.ChatNotExcludedClause("cmj.chat_id")
	clause := fmt.Sprintf(`cmj.chat_id IN (
		SELECT chj.chat_id FROM chat_handle_join chj
		JOIN handle h ON h.ROWID = chj.handle_id
		WHERE h.id IN (%s)
	) AND %s AND %s`, strings.Join(placeholders, ","), filter.DirectChatExpr("cmj.chat_id"), exclClause)
	return clause, append(args, exclArgs...)
}

// yearBounds returns the Apple-raw timestamps spanning a calendar year in
// the engine's location.
func (e *Engine) yearBounds(year int) (int64, int64) {
	const appleEpochUnix = 978307200
	start := time.Date(year, 1, 1, 0, 0, 0, 0, e.loc)
	end := start.AddDate(1, 0, 0)
	return (start.Unix() - appleEpochUnix) * 1_000_000_000, (end.Unix() - appleEpochUnix) * 1_000_000_000
}

// yearCondition appends a raw-timestamp range condition when year is set.
// The bounds come from the same location as Go-side bucketing, so SQL
// filtering and Go bucketing always agree on year boundaries.
func (e *Engine) yearCondition(conds []string, args []any, year int) ([]string, []any) {
	if year == 0 {
		return conds, args
	}
	lo, hi := e.yearBounds(year)
	conds = append(conds, "m.date >= ?", "m.date < ?")
	args = append(args, lo, hi)
	return conds, args
}

// directedDate is one eligible message's timestamp and direction.
type directedDate struct {
	raw    int64
	fromMe bool
}

// fetchDirectedDates runs a (ROWID, date, is_from_me) query and returns the
// directed timestamps, excluding NULL dates.
func fetchDirectedDates(ctx context.Context, db *sql.DB, where string, args []any) ([]directedDate, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT m.ROWID, m.date, m.is_from_me
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE %s AND m.date IS NOT NULL
	`, where)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directed dates: %w", err)
	}
	defer rows.Close()

	var out []directedDate
	for rows.Next() {
		var id, raw int64
		var fromMe int
		if err := rows.Scan(&id, &raw, &fromMe); err != nil {
			return nil, err
		}
		out = append(out, directedDate{raw: raw, fromMe: fromMe == 1})
	}
	return out, rows.Err()
}

// buildStatsBlock derives the shared statistics block from directed
// timestamps. all holds every eligible message (for the unfiltered by-year
// breakdown); scoped holds the year-filtered subset when year != 0,
// otherwise the same set.
func (e *Engine) buildStatsBlock(all, scoped []directedDate, year int) StatsBlock {
	var block StatsBlock

	block.MessagesByYear = e.yearBuckets(rawsOf(all))

	block.TotalMessages = int64(len(scoped))
	for _, d := range scoped {
		if d.fromMe {
			block.SentMessages++
		} else {
			block.ReceivedMessages++
		}
	}

	dates := e.datesOf(rawsOf(scoped))
	var first time.Time
	for _, t := range dates {
		if first.IsZero() || t.Before(first) {
			first = t
		}
	}
	if !first.IsZero() {
		block.FirstMessageDate = &first
	}

	if year != 0 {
		// Most-active over the filtered set; with a single-year scope this
		// is that year (or nothing).
		block.MostActiveYear, block.MostActiveCount = mostActive(e.yearBuckets(rawsOf(scoped)))
		block.AvgPerDay = temporal.AveragePerDay(float64(block.TotalMessages), temporal.DaysInYear(year), temporal.RoundTenth)
	} else {
		block.MostActiveYear, block.MostActiveCount = mostActive(block.MessagesByYear)
		if block.FirstMessageDate != nil {
			span := temporal.DayDelta(*block.FirstMessageDate, time.Now().In(e.loc))
			block.AvgPerDay = temporal.AveragePerDay(float64(block.TotalMessages), span, temporal.RoundWhole)
		}
	}

	block.LongestStreak = temporal.LongestRunDistinct(dates)
	return block
}

func rawsOf(dates []directedDate) []int64 {
	out := make([]int64, len(dates))
	for i, d := range dates {
		out[i] = d.raw
	}
	return out
}

// contactStats is the shared implementation for single and combined
// contact statistics. Multi-handle people are always the handle-wise merge
// of per-handle rows: one query over the union of the handles' chats.
func (e *Engine) contactStats(ctx context.Context, handles []string, year int) *ContactStats {
	if len(handles) == 0 {
		return nil
	}
	return run(e, ctx, "contact_stats", func(ctx context.Context, db *sql.DB) (*ContactStats, error) {
		chatClause, chatArgs := e.contactChatClause(handles)
		conds := []string{filter.EligibleExpr("m"), chatClause}
		args := chatArgs

		all, err := fetchDirectedDates(ctx, db, joinConds(conds), args)
		if err != nil {
			return nil, err
		}

		scoped := all
		if year != 0 {
			yConds, yArgs := e.yearCondition(conds, args, year)
			scoped, err = fetchDirectedDates(ctx, db, joinConds(yConds), yArgs)
			if err != nil {
				return nil, err
			}
		}

		return &ContactStats{
			StatsBlock: e.buildStatsBlock(all, scoped, year),
			HandleIDs:  append([]string(nil), handles...),
		}, nil
	})
}

// ContactStats returns the statistics block for one handle's direct
// conversation. A year of 0 means all time. Returns nil when the snapshot
// is unavailable.
func (e *Engine) ContactStats(ctx context.Context, handle string, year int) *ContactStats {
	if handle == "" {
		return nil
	}
	return e.contactStats(ctx, []string{handle}, year)
}

// CombinedContactStats merges statistics across all of a person's handles:
// counts sum, the first-message date is the earliest, the most-active year
// is re-derived from the merged per-year buckets, and the longest streak is
// recomputed from the union of every handle's message dates. An empty
// handle list returns nil.
func (e *Engine) CombinedContactStats(ctx context.Context, handles []string) *ContactStats {
	return e.contactStats(ctx, handles, 0)
}

// contactTexts fetches eligible message bodies for the handles' direct
// conversations under a sender filter.
func (e *Engine) contactTexts(ctx context.Context, db *sql.DB, handles []string, sender filter.SenderFilter, year int) ([]string, error) {
	chatClause, args := e.contactChatClause(handles)
	conds := []string{filter.EligibleExpr("m"), chatClause, "m.text IS NOT NULL"}
	if c := sender.Condition("m"); c != "" {
		conds = append(conds, c)
	}
	conds, args = e.yearCondition(conds, args, year)

	query := fmt.Sprintf(`
		SELECT DISTINCT m.ROWID, m.text
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE %s
	`, joinConds(conds))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("contact texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var id int64
		var text sql.NullString
		if err := rows.Scan(&id, &text); err != nil {
			return nil, err
		}
		texts = append(texts, text.String)
	}
	return texts, rows.Err()
}

// ContactWords returns word frequencies for a person's direct conversation,
// optionally restricted to one side.
func (e *Engine) ContactWords(ctx context.Context, handles []string, limit int, sender filter.SenderFilter) []TokenCount {
	if len(handles) == 0 {
		return nil
	}
	return run(e, ctx, "contact_words", func(ctx context.Context, db *sql.DB) ([]TokenCount, error) {
		texts, err := e.contactTexts(ctx, db, handles, sender, 0)
		if err != nil {
			return nil, err
		}
		return textstats.WordFrequencies(texts, limit), nil
	})
}

// ContactEmojis returns emoji frequencies for a person's direct
// conversation, optionally restricted to one side.
func (e *Engine) ContactEmojis(ctx context.Context, handles []string, limit int, sender filter.SenderFilter) []TokenCount {
	if len(handles) == 0 {
		return nil
	}
	return run(e, ctx, "contact_emojis", func(ctx context.Context, db *sql.DB) ([]TokenCount, error) {
		texts, err := e.contactTexts(ctx, db, handles, sender, 0)
		if err != nil {
			return nil, err
		}
		return textstats.EmojiFrequencies(texts, limit), nil
	})
}

// SearchContactMessages finds eligible messages in a person's direct
// conversation whose text contains term (SQLite LIKE semantics; pattern
// metacharacters in term are not escaped). Examples page newest-first.
// Returns an empty result rather than an error in every failure case.
func (e *Engine) SearchContactMessages(ctx context.Context, handles []string, term string, limit, offset int, sender filter.SenderFilter) SearchResult {
	if len(handles) == 0 {
		return SearchResult{Examples: []SearchExample{}}
	}
	result := run(e, ctx, "search_contact_messages", func(ctx context.Context, db *sql.DB) (SearchResult, error) {
		chatClause, args := e.contactChatClause(handles)
		conds := []string{filter.EligibleExpr("m"), chatClause, "m.text LIKE ?"}
		args = append(args, "%"+term+"%")
		if c := sender.Condition("m"); c != "" {
			conds = append(conds, c)
		}
		return e.searchMessages(ctx, db, joinConds(conds), args, limit, offset)
	})
	if result.Examples == nil {
		result.Examples = []SearchExample{}
	}
	return result
}

// searchMessages is the shared count-plus-page implementation behind contact
// and group-chat search.
func (e *Engine) searchMessages(ctx context.Context, db *sql.DB, where string, args []any, limit, offset int) (SearchResult, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(DISTINCT m.ROWID)
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE %s
	`, where)

	var result SearchResult
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&result.Count); err != nil {
		return SearchResult{}, fmt.Errorf("search count: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	pageQuery := fmt.Sprintf(`
		SELECT DISTINCT m.ROWID, m.text, m.date, m.is_from_me
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE %s
		ORDER BY m.date DESC
		LIMIT ? OFFSET ?
	`, where)
	pageArgs := append(append([]any(nil), args...), limit, offset)

	rows, err := db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search page: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var text sql.NullString
		var raw sql.NullInt64
		var fromMe int
		if err := rows.Scan(&id, &text, &raw, &fromMe); err != nil {
			return SearchResult{}, err
		}
		ex := SearchExample{Text: text.String, IsFromMe: fromMe == 1}
		if raw.Valid {
			ex.Date = temporal.ToTime(raw.Int64, e.loc)
			ex.FormattedDate = formatDate(ex.Date)
		}
		result.Examples = append(result.Examples, ex)
	}
	return result, rows.Err()
}
