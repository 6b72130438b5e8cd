package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/textstats"
)

// displayNameOf suppresses empty and auto-generated chat names. iMessage
// fills display_name with "chat" plus a numeric blob for unnamed groups;
// user-chosen names that merely start with "Chat" are kept.
func displayNameOf(raw sql.NullString) *string {
	name := strings.TrimSpace(raw.String)
	if name == "" || isAutoChatName(name) {
		return nil
	}
	return &name
}

func isAutoChatName(name string) bool {
	rest, ok := strings.CutPrefix(name, "chat")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// groupChatMembers returns the handle ids joined to a chat, ascending by
// handle ROWID.
func groupChatMembers(ctx context.Context, db *sql.DB, chatID int64) ([]string, error) {
	return queryTexts(ctx, db, `
		SELECT h.id
		FROM chat_handle_join chj
		JOIN handle h ON h.ROWID = chj.handle_id
		WHERE chj.chat_id = ?
		ORDER BY h.ROWID
	`, chatID)
}

// TopGroupChats ranks group conversations by eligible message count,
// descending. Each entry carries its member count and up to five sample
// participant labels. A limit <= 0 returns all group chats.
func (e *Engine) TopGroupChats(ctx context.Context, limit int) []GroupChatSummary {
	return run(e, ctx, "top_group_chats", func(ctx context.Context, db *sql.DB) ([]GroupChatSummary, error) {
		conds, args := e.baseConditions(true)
		query := fmt.Sprintf(`
			SELECT c.ROWID, c.display_name, COUNT(DISTINCT m.ROWID) AS n
			FROM message m
			JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
			JOIN chat c ON c.ROWID = cmj.chat_id
			WHERE %s
			GROUP BY c.ROWID
			ORDER BY n DESC
		`, joinConds(conds))
		if limit > 0 {
			query += " LIMIT ?"
			args = append(args, limit)
		}

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("top group chats: %w", err)
		}
		defer rows.Close()

		var out []GroupChatSummary
		for rows.Next() {
			var gc GroupChatSummary
			var name sql.NullString
			if err := rows.Scan(&gc.ChatID, &name, &gc.MessageCount); err != nil {
				return nil, err
			}
			gc.DisplayName = displayNameOf(name)
			out = append(out, gc)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for i := range out {
			members, err := groupChatMembers(ctx, db, out[i].ChatID)
			if err != nil {
				return nil, err
			}
			out[i].ParticipantCount = len(members)
			sample := members
			if len(sample) > 5 {
				sample = sample[:5]
			}
			labels := make([]string, len(sample))
			for j, id := range sample {
				labels[j] = FormatHandle(id)
			}
			out[i].SampleParticipants = labels
		}
		return out, nil
	})
}

// chatScopeConds starts the condition list shared by every per-chat query:
// the row predicate, chat identity, and excluded-chat removal. A chat with
// an excluded member contributes nothing even when addressed by id.
func (e *Engine) chatScopeConds(rowExpr string, chatID int64) ([]string, []any) {
	exclClause, exclArgs := e.excl.ChatNotExcludedClause("cmj.chat_id")
	conds := []string{rowExpr, "cmj.chat_id = ?", exclClause}
	args := append([]any{chatID}, exclArgs...)
	return conds, args
}

// groupDirectedDates fetches (date, is_from_me) for a group chat's eligible
// messages under an optional person filter and year scope.
func (e *Engine) groupDirectedDates(ctx context.Context, db *sql.DB, chatID int64, person filter.PersonFilter, year int) ([]directedDate, error) {
	conds, args := e.chatScopeConds(filter.EligibleExpr("m"), chatID)
	pConds, pArgs := person.Conditions("m")
	conds = append(conds, pConds...)
	args = append(args, pArgs...)
	conds, args = e.yearCondition(conds, args, year)
	return fetchDirectedDates(ctx, db, joinConds(conds), args)
}

// GroupChatStats returns the statistics block for one group chat. A year of
// 0 means all time; the by-year breakdown is always unfiltered. Returns nil
// when the snapshot is unavailable or the chat does not exist.
func (e *Engine) GroupChatStats(ctx context.Context, chatID int64, year int) *GroupChatStats {
	return run(e, ctx, "group_chat_stats", func(ctx context.Context, db *sql.DB) (*GroupChatStats, error) {
		var name sql.NullString
		err := db.QueryRowContext(ctx, `SELECT display_name FROM chat WHERE ROWID = ?`, chatID).Scan(&name)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("group chat %d: %w", chatID, err)
		}

		all, err := e.groupDirectedDates(ctx, db, chatID, filter.PersonNone(), 0)
		if err != nil {
			return nil, err
		}
		scoped := all
		if year != 0 {
			scoped, err = e.groupDirectedDates(ctx, db, chatID, filter.PersonNone(), year)
			if err != nil {
				return nil, err
			}
		}

		members, err := groupChatMembers(ctx, db, chatID)
		if err != nil {
			return nil, err
		}

		return &GroupChatStats{
			StatsBlock:       e.buildStatsBlock(all, scoped, year),
			ChatID:           chatID,
			DisplayName:      displayNameOf(name),
			ParticipantCount: len(members),
		}, nil
	})
}

// GroupChatParticipants ranks a group chat's members by eligible messages
// received from them, descending. Your own sent messages are not counted.
// A year of 0 means all time.
func (e *Engine) GroupChatParticipants(ctx context.Context, chatID int64, year int) []ParticipantCount {
	return run(e, ctx, "group_chat_participants", func(ctx context.Context, db *sql.DB) ([]ParticipantCount, error) {
		conds, args := e.chatScopeConds(filter.EligibleExpr("m"), chatID)
		conds = append(conds, "m.is_from_me = 0", "m.handle_id IS NOT NULL")
		conds, args = e.yearCondition(conds, args, year)

		query := fmt.Sprintf(`
			SELECT h.id, COUNT(DISTINCT m.ROWID) AS n
			FROM message m
			JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
			JOIN handle h ON h.ROWID = m.handle_id
			WHERE %s
			GROUP BY h.id
			ORDER BY n DESC
		`, joinConds(conds))

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("group chat participants: %w", err)
		}
		defer rows.Close()

		var out []ParticipantCount
		for rows.Next() {
			var pc ParticipantCount
			if err := rows.Scan(&pc.HandleID, &pc.MessageCount); err != nil {
				return nil, err
			}
			pc.DisplayLabel = FormatHandle(pc.HandleID)
			out = append(out, pc)
		}
		return out, rows.Err()
	})
}

// groupChatTexts fetches eligible message bodies for one group chat under a
// person filter.
func (e *Engine) groupChatTexts(ctx context.Context, db *sql.DB, chatID int64, person filter.PersonFilter, year int) ([]string, error) {
	conds, args := e.chatScopeConds(filter.EligibleExpr("m"), chatID)
	conds = append(conds, "m.text IS NOT NULL")
	pConds, pArgs := person.Conditions("m")
	conds = append(conds, pConds...)
	args = append(args, pArgs...)
	conds, args = e.yearCondition(conds, args, year)

	query := fmt.Sprintf(`
		SELECT DISTINCT m.ROWID, m.text
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE %s
	`, joinConds(conds))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group chat texts: %w", err)
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

// GroupChatWords returns word frequencies for one group chat, optionally
// restricted to a single participant.
func (e *Engine) GroupChatWords(ctx context.Context, chatID int64, limit int, person filter.PersonFilter) []TokenCount {
	return run(e, ctx, "group_chat_words", func(ctx context.Context, db *sql.DB) ([]TokenCount, error) {
		texts, err := e.groupChatTexts(ctx, db, chatID, person, 0)
		if err != nil {
			return nil, err
		}
		return textstats.WordFrequencies(texts, limit), nil
	})
}

// GroupChatEmojis returns emoji frequencies for one group chat, optionally
// restricted to a single participant.
func (e *Engine) GroupChatEmojis(ctx context.Context, chatID int64, limit int, person filter.PersonFilter) []TokenCount {
	return run(e, ctx, "group_chat_emojis", func(ctx context.Context, db *sql.DB) ([]TokenCount, error) {
		texts, err := e.groupChatTexts(ctx, db, chatID, person, 0)
		if err != nil {
			return nil, err
		}
		return textstats.EmojiFrequencies(texts, limit), nil
	})
}

// SearchGroupChatMessages finds eligible messages in one group chat whose
// text contains term, under an optional person filter. Examples page
// newest-first.
func (e *Engine) SearchGroupChatMessages(ctx context.Context, chatID int64, term string, limit, offset int, person filter.PersonFilter) SearchResult {
	result := run(e, ctx, "search_group_chat_messages", func(ctx context.Context, db *sql.DB) (SearchResult, error) {
		conds, args := e.chatScopeConds(filter.EligibleExpr("m"), chatID)
		conds = append(conds, "m.text LIKE ?")
		args = append(args, "%"+term+"%")
		pConds, pArgs := person.Conditions("m")
		conds = append(conds, pConds...)
		args = append(args, pArgs...)
		return e.searchMessages(ctx, db, joinConds(conds), args, limit, offset)
	})
	if result.Examples == nil {
		result.Examples = []SearchExample{}
	}
	return result
}
