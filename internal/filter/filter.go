// Package filter holds the row-eligibility rules shared by every statistic:
// which messages count as real messages, which handles are excluded, and how
// chats partition into direct conversations and group chats. The rules are
// exposed both as plain predicates (unit-testable without a database) and as
// parameterized SQL fragments consumed by the aggregation queries.
package filter

import (
	"database/sql"
	"fmt"
	"strings"
)

// sentinelHandle can never match a real phone number or email. It keeps the
// generated NOT IN clause well-formed when no handles are excluded.
const sentinelHandle = "no-such-handle"

// Exclusion is a set of handle identifiers removed from all statistics.
type Exclusion struct {
	handles map[string]struct{}
	ordered []string
}

// NewExclusion builds an exclusion set. An empty list still produces a
// one-element set containing the sentinel, so SQL clauses are never vacuous.
func NewExclusion(handles []string) Exclusion {
	ex := Exclusion{handles: make(map[string]struct{}, len(handles)+1)}
	for _, h := range handles {
		if h == "" {
			continue
		}
		if _, ok := ex.handles[h]; ok {
			continue
		}
		ex.handles[h] = struct{}{}
		ex.ordered = append(ex.ordered, h)
	}
	if len(ex.ordered) == 0 {
		ex.handles[sentinelHandle] = struct{}{}
		ex.ordered = []string{sentinelHandle}
	}
	return ex
}

// Contains reports whether a handle identifier is excluded.
func (ex Exclusion) Contains(handleID string) bool {
	_, ok := ex.handles[handleID]
	return ok
}

// Handles returns the excluded handles in insertion order.
func (ex Exclusion) Handles() []string {
	return append([]string(nil), ex.ordered...)
}

// NotInClause returns "col NOT IN (?, ...)" with matching args.
func (ex Exclusion) NotInClause(col string) (string, []any) {
	placeholders := make([]string, len(ex.ordered))
	args := make([]any, len(ex.ordered))
	for i, h := range ex.ordered {
		placeholders[i] = "?"
		args[i] = h
	}
	return fmt.Sprintf("%s NOT IN (%s)", col, strings.Join(placeholders, ",")), args
}

// ChatNotExcludedClause returns a condition removing every chat that has an
// excluded handle among its members. chatCol is the chat ROWID expression in
// the outer query. Message-scope queries use this so that a chat involving an
// excluded handle contributes nothing, whichever side sent the message.
func (ex Exclusion) ChatNotExcludedClause(chatCol string) (string, []any) {
	placeholders := make([]string, len(ex.ordered))
	args := make([]any, len(ex.ordered))
	for i, h := range ex.ordered {
		placeholders[i] = "?"
		args[i] = h
	}
	clause := fmt.Sprintf(`%s NOT IN (
		SELECT xchj.chat_id FROM chat_handle_join xchj
		JOIN handle xh ON xh.ROWID = xchj.handle_id
		WHERE xh.id IN (%s)
	)`, chatCol, strings.Join(placeholders, ","))
	return clause, args
}

// IsEligible reports whether an associated-message type marks a plain
// message rather than a tapback. NULL and 0 are plain.
func IsEligible(associatedType sql.NullInt64) bool {
	return !associatedType.Valid || associatedType.Int64 == 0
}

// EligibleExpr is the SQL form of IsEligible for a message table alias.
func EligibleExpr(alias string) string {
	return fmt.Sprintf("(%s.associated_message_type IS NULL OR %s.associated_message_type = 0)", alias, alias)
}

// TapbackExpr matches reaction rows (the complement of EligibleExpr).
func TapbackExpr(alias string) string {
	return fmt.Sprintf("(%s.associated_message_type IS NOT NULL AND %s.associated_message_type != 0)", alias, alias)
}

// memberCountExpr counts the distinct member handles of a chat. Chat kind is
// always derived from this cardinality, never from chat metadata.
func memberCountExpr(chatCol string) string {
	return fmt.Sprintf("(SELECT COUNT(DISTINCT chj.handle_id) FROM chat_handle_join chj WHERE chj.chat_id = %s)", chatCol)
}

// DirectChatExpr matches chats with exactly one member handle.
func DirectChatExpr(chatCol string) string {
	return memberCountExpr(chatCol) + " = 1"
}

// GroupChatExpr matches chats with more than one member handle.
func GroupChatExpr(chatCol string) string {
	return memberCountExpr(chatCol) + " > 1"
}

// Kind classifies a chat as a direct conversation or a group chat.
type Kind int

const (
	KindDirect Kind = iota
	KindGroup
)

func (k Kind) String() string {
	if k == KindDirect {
		return "direct"
	}
	return "group"
}

// KindFromMemberCount maps a chat's distinct-member cardinality to its kind.
func KindFromMemberCount(n int) Kind {
	if n <= 1 {
		return KindDirect
	}
	return KindGroup
}

// PersonFilter restricts a group-chat statistic to a subset of senders.
type PersonFilter struct {
	kind   personKind
	handle string
}

type personKind int

const (
	personNone personKind = iota
	personYou
	personAll
	personSpecific
)

// PersonNone applies no sender restriction.
func PersonNone() PersonFilter { return PersonFilter{kind: personNone} }

// PersonYou restricts to messages you sent.
func PersonYou() PersonFilter { return PersonFilter{kind: personYou} }

// PersonAll restricts to messages received from any other member.
func PersonAll() PersonFilter { return PersonFilter{kind: personAll} }

// PersonSpecific restricts to messages sent by one member handle.
func PersonSpecific(handleID string) PersonFilter {
	return PersonFilter{kind: personSpecific, handle: handleID}
}

// ParsePerson maps the wire values "you", "all", "", or a handle identifier
// onto a PersonFilter.
func ParsePerson(s string) PersonFilter {
	switch s {
	case "":
		return PersonNone()
	case "you":
		return PersonYou()
	case "all":
		return PersonAll()
	default:
		return PersonSpecific(s)
	}
}

// Conditions returns the WHERE fragments and args for this filter. alias is
// the message table alias.
func (p PersonFilter) Conditions(alias string) ([]string, []any) {
	switch p.kind {
	case personYou:
		return []string{alias + ".is_from_me = 1"}, nil
	case personAll:
		return []string{alias + ".is_from_me = 0"}, nil
	case personSpecific:
		cond := fmt.Sprintf(`%s.handle_id IN (SELECT ROWID FROM handle WHERE id = ?)`, alias)
		return []string{cond}, []any{p.handle}
	default:
		return nil, nil
	}
}

// SenderFilter restricts direct-message search to one side of the
// conversation.
type SenderFilter int

const (
	SenderBoth SenderFilter = iota
	SenderYou
	SenderThem
)

// ParseSender maps "you", "them", and anything else ("both", "") onto a
// SenderFilter.
func ParseSender(s string) SenderFilter {
	switch s {
	case "you":
		return SenderYou
	case "them":
		return SenderThem
	default:
		return SenderBoth
	}
}

// Condition returns the WHERE fragment for this filter, or "" for both sides.
func (f SenderFilter) Condition(alias string) string {
	switch f {
	case SenderYou:
		return alias + ".is_from_me = 1"
	case SenderThem:
		return alias + ".is_from_me = 0"
	default:
		return ""
	}
}
