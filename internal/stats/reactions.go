package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FO214/remess/internal/filter"
)

// reactionKinds is the canonical category order. Every tally reports all
// six, zero-filled.
var reactionKinds = []string{"love", "like", "dislike", "laugh", "emphasize", "question"}

// reactionKind maps an associated_message_type code to its category. The
// 2000 range is the modern tapback encoding; the 1000 range is the legacy
// one, offset differently (1005 is love, not question). The 3000 range
// marks removed tapbacks and everything else is not a reaction; both map
// to "".
func reactionKind(code int64) string {
	switch code {
	case 2000, 1005:
		return "love"
	case 2001, 1000:
		return "like"
	case 2002, 1001:
		return "dislike"
	case 2003, 1002:
		return "laugh"
	case 2004, 1003:
		return "emphasize"
	case 2005, 1004:
		return "question"
	}
	return ""
}

// tallyReactions folds (code, is_from_me, count) rows into a two-sided
// tally with all categories present in canonical order.
func tallyReactions(ctx context.Context, db *sql.DB, where string, args []any) (ReactionTally, error) {
	query := fmt.Sprintf(`
		SELECT m.associated_message_type, m.is_from_me, COUNT(DISTINCT m.ROWID)
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE %s
		GROUP BY m.associated_message_type, m.is_from_me
	`, where)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return ReactionTally{}, fmt.Errorf("reactions: %w", err)
	}
	defer rows.Close()

	yours := make(map[string]int64)
	theirs := make(map[string]int64)
	for rows.Next() {
		var code int64
		var fromMe int
		var count int64
		if err := rows.Scan(&code, &fromMe, &count); err != nil {
			return ReactionTally{}, err
		}
		kind := reactionKind(code)
		if kind == "" {
			continue
		}
		if fromMe == 1 {
			yours[kind] += count
		} else {
			theirs[kind] += count
		}
	}
	if err := rows.Err(); err != nil {
		return ReactionTally{}, err
	}

	tally := ReactionTally{
		YourReactions:  make([]ReactionCount, len(reactionKinds)),
		TheirReactions: make([]ReactionCount, len(reactionKinds)),
	}
	for i, kind := range reactionKinds {
		tally.YourReactions[i] = ReactionCount{Kind: kind, Count: yours[kind]}
		tally.TheirReactions[i] = ReactionCount{Kind: kind, Count: theirs[kind]}
	}
	return tally, nil
}

// zeroTally is the degradation default: both sides present, all zero.
func zeroTally() ReactionTally {
	tally := ReactionTally{
		YourReactions:  make([]ReactionCount, len(reactionKinds)),
		TheirReactions: make([]ReactionCount, len(reactionKinds)),
	}
	for i, kind := range reactionKinds {
		tally.YourReactions[i] = ReactionCount{Kind: kind}
		tally.TheirReactions[i] = ReactionCount{Kind: kind}
	}
	return tally
}

// ContactReactions tallies tapbacks exchanged in a person's direct
// conversation, split by who sent them. A year of 0 means all time.
func (e *Engine) ContactReactions(ctx context.Context, handles []string, year int) ReactionTally {
	if len(handles) == 0 {
		return zeroTally()
	}
	tally := run(e, ctx, "contact_reactions", func(ctx context.Context, db *sql.DB) (ReactionTally, error) {
		chatClause, args := e.contactChatClause(handles)
		conds := []string{filter.TapbackExpr("m"), chatClause}
		conds, args = e.yearCondition(conds, args, year)
		return tallyReactions(ctx, db, joinConds(conds), args)
	})
	if tally.YourReactions == nil {
		return zeroTally()
	}
	return tally
}

// GroupChatReactions tallies tapbacks in one group chat, split into yours
// versus everyone else's, optionally restricted to a single participant.
func (e *Engine) GroupChatReactions(ctx context.Context, chatID int64, person filter.PersonFilter, year int) ReactionTally {
	tally := run(e, ctx, "group_chat_reactions", func(ctx context.Context, db *sql.DB) (ReactionTally, error) {
		conds, args := e.chatScopeConds(filter.TapbackExpr("m"), chatID)
		pConds, pArgs := person.Conditions("m")
		conds = append(conds, pConds...)
		args = append(args, pArgs...)
		conds, args = e.yearCondition(conds, args, year)
		return tallyReactions(ctx, db, joinConds(conds), args)
	})
	if tally.YourReactions == nil {
		return zeroTally()
	}
	return tally
}
