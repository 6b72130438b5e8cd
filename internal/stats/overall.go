package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/temporal"
	"github.com/FO214/remess/internal/textstats"
)

// directMessagesFrom is the FROM/JOIN spine shared by the app-wide queries.
// A message can join to multiple rows through its chat, so counts are always
// DISTINCT over message ROWIDs.
const directMessagesFrom = `
	FROM message m
	JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
`

// TotalMessages returns the count of eligible direct-conversation messages.
// Returns 0 when the snapshot is unavailable.
func (e *Engine) TotalMessages(ctx context.Context) int64 {
	return run(e, ctx, "total_messages", func(ctx context.Context, db *sql.DB) (int64, error) {
		conds, args := e.baseConditions(false)
		query := fmt.Sprintf(`SELECT COUNT(DISTINCT m.ROWID) %s WHERE %s`, directMessagesFrom, joinConds(conds))
		var n int64
		if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("total messages: %w", err)
		}
		return n, nil
	})
}

// eligibleDirectDates fetches the raw timestamps of all eligible direct
// messages, NULL dates excluded.
func (e *Engine) eligibleDirectDates(ctx context.Context, db *sql.DB) ([]int64, error) {
	conds, args := e.baseConditions(false)
	conds = append(conds, "m.date IS NOT NULL")
	query := fmt.Sprintf(`SELECT DISTINCT m.ROWID, m.date %s WHERE %s`, directMessagesFrom, joinConds(conds))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("eligible dates: %w", err)
	}
	defer rows.Close()

	var raws []int64
	for rows.Next() {
		var id, raw int64
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	return raws, rows.Err()
}

// MessagesByYear returns ascending (year, count) buckets over eligible
// direct messages. Messages without a timestamp are excluded.
func (e *Engine) MessagesByYear(ctx context.Context) []YearCount {
	return run(e, ctx, "messages_by_year", func(ctx context.Context, db *sql.DB) ([]YearCount, error) {
		raws, err := e.eligibleDirectDates(ctx, db)
		if err != nil {
			return nil, err
		}
		return e.yearBuckets(raws), nil
	})
}

// MostActiveYear returns the year bucket with the highest count, first
// encountered winning ties. Returns nil when there is no data.
func (e *Engine) MostActiveYear(ctx context.Context) *YearCount {
	byYear := e.MessagesByYear(ctx)
	if len(byYear) == 0 {
		return nil
	}
	year, count := mostActive(byYear)
	return &YearCount{Year: year, Count: count}
}

// SentVsReceived partitions eligible direct messages by direction. Missing
// categories default to 0.
func (e *Engine) SentVsReceived(ctx context.Context) SentReceived {
	return run(e, ctx, "sent_vs_received", func(ctx context.Context, db *sql.DB) (SentReceived, error) {
		conds, args := e.baseConditions(false)
		query := fmt.Sprintf(`
			SELECT m.is_from_me, COUNT(DISTINCT m.ROWID)
			%s
			WHERE %s
			GROUP BY m.is_from_me
		`, directMessagesFrom, joinConds(conds))

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return SentReceived{}, fmt.Errorf("sent vs received: %w", err)
		}
		defer rows.Close()

		var sr SentReceived
		for rows.Next() {
			var fromMe int
			var count int64
			if err := rows.Scan(&fromMe, &count); err != nil {
				return SentReceived{}, err
			}
			if fromMe == 1 {
				sr.Sent = count
			} else {
				sr.Received = count
			}
		}
		return sr, rows.Err()
	})
}

// AverageMessagesPerDay divides total eligible direct messages by the number
// of distinct calendar days having at least one, rounded to a whole number.
// Returns 0 when there are no active days.
func (e *Engine) AverageMessagesPerDay(ctx context.Context) float64 {
	return run(e, ctx, "average_messages_per_day", func(ctx context.Context, db *sql.DB) (float64, error) {
		raws, err := e.eligibleDirectDates(ctx, db)
		if err != nil {
			return 0, err
		}
		days := make(map[string]struct{})
		for _, t := range e.datesOf(raws) {
			days[t.Format("2006-01-02")] = struct{}{}
		}
		return temporal.AveragePerDay(float64(len(raws)), len(days), temporal.RoundWhole), nil
	})
}

// TopContacts ranks non-excluded handles by eligible direct-message count,
// descending. A limit <= 0 returns all contacts. Each entry carries a
// formatted display label.
func (e *Engine) TopContacts(ctx context.Context, limit int) []ContactCount {
	return run(e, ctx, "top_contacts", func(ctx context.Context, db *sql.DB) ([]ContactCount, error) {
		notIn, notInArgs := e.excl.NotInClause("h.id")
		conds := []string{
			filter.EligibleExpr("m"),
			filter.DirectChatExpr("cmj.chat_id"),
			"h.id IS NOT NULL",
			"h.id != ''",
			notIn,
		}
		query := fmt.Sprintf(`
			SELECT h.id, COUNT(DISTINCT m.ROWID) AS n
			FROM message m
			JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
			JOIN chat_handle_join chj ON chj.chat_id = cmj.chat_id
			JOIN handle h ON h.ROWID = chj.handle_id
			WHERE %s
			GROUP BY h.id
			ORDER BY n DESC
		`, joinConds(conds))

		args := notInArgs
		if limit > 0 {
			query += " LIMIT ?"
			args = append(args, limit)
		}

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("top contacts: %w", err)
		}
		defer rows.Close()

		var out []ContactCount
		for rows.Next() {
			var cc ContactCount
			if err := rows.Scan(&cc.HandleID, &cc.MessageCount); err != nil {
				return nil, err
			}
			cc.DisplayLabel = FormatHandle(cc.HandleID)
			out = append(out, cc)
		}
		return out, rows.Err()
	})
}

// AllWords returns the top word frequencies across every eligible message
// you sent, app-wide. Unlike per-contact word statistics this spans direct
// and group conversations alike; the population is intentionally different.
func (e *Engine) AllWords(ctx context.Context, limit int) []TokenCount {
	return run(e, ctx, "all_words", func(ctx context.Context, db *sql.DB) ([]TokenCount, error) {
		exclClause, args := e.excl.ChatNotExcludedClause("cmj.chat_id")
		query := fmt.Sprintf(`
			SELECT DISTINCT m.ROWID, m.text
			FROM message m
			JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
			WHERE %s AND m.is_from_me = 1 AND %s AND m.text IS NOT NULL
		`, filter.EligibleExpr("m"), exclClause)

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("all words: %w", err)
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
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return textstats.WordFrequencies(texts, limit), nil
	})
}
