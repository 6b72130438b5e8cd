// Package stats is the aggregation engine: a family of read-only queries
// (totals, by-year, by-contact, by-group, reactions, streaks, search) over a
// chat.db snapshot, all built from the same filter, temporal, and text
// policies so their results compose.
package stats

import (
	"time"

	"github.com/FO214/remess/internal/textstats"
)

// YearCount is one year bucket of message counts.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// SentReceived partitions eligible messages by direction.
type SentReceived struct {
	Sent     int64 `json:"sent"`
	Received int64 `json:"received"`
}

// ContactCount ranks a handle by eligible direct-message volume.
type ContactCount struct {
	HandleID     string `json:"handle"`
	DisplayLabel string `json:"displayLabel"`
	MessageCount int64  `json:"messageCount"`
}

// TokenCount re-exports the text analyzer's frequency entry.
type TokenCount = textstats.TokenCount

// StatsBlock holds the per-conversation statistics shared by contact and
// group-chat views.
type StatsBlock struct {
	TotalMessages    int64       `json:"totalMessages"`
	SentMessages     int64       `json:"sentMessages"`
	ReceivedMessages int64       `json:"receivedMessages"`
	FirstMessageDate *time.Time  `json:"firstMessageDate"`
	MessagesByYear   []YearCount `json:"messagesByYear"`
	MostActiveYear   int         `json:"mostActiveYear"`
	MostActiveCount  int64       `json:"mostActiveYearCount"`
	AvgPerDay        float64     `json:"avgPerDay"`
	LongestStreak    int         `json:"longestStreak"`
}

// ContactStats is the per-person statistics block. HandleIDs lists the
// handles merged into it (one entry except for combined multi-handle views).
type ContactStats struct {
	StatsBlock
	HandleIDs []string `json:"handles"`
}

// GroupChatSummary is one entry in the group-chat ranking. DisplayName is
// nil when the chat has no name or only an auto-generated placeholder.
type GroupChatSummary struct {
	ChatID             int64    `json:"chatId"`
	DisplayName        *string  `json:"displayName"`
	MessageCount       int64    `json:"messageCount"`
	ParticipantCount   int      `json:"participantCount"`
	SampleParticipants []string `json:"sampleParticipants"`
}

// GroupChatStats is the per-group statistics block.
type GroupChatStats struct {
	StatsBlock
	ChatID           int64   `json:"chatId"`
	DisplayName      *string `json:"displayName"`
	ParticipantCount int     `json:"participantCount"`
}

// ParticipantCount ranks one group-chat member by received messages.
type ParticipantCount struct {
	HandleID     string `json:"handle"`
	DisplayLabel string `json:"displayLabel"`
	MessageCount int64  `json:"messageCount"`
}

// SearchExample is one message in a search result page.
type SearchExample struct {
	Text          string    `json:"text"`
	Date          time.Time `json:"date"`
	FormattedDate string    `json:"formattedDate"`
	IsFromMe      bool      `json:"isFromMe"`
}

// SearchResult is a total match count plus one page of newest-first matches.
type SearchResult struct {
	Count    int64           `json:"count"`
	Examples []SearchExample `json:"examples"`
}

// ReactionCount is one tapback category tally.
type ReactionCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// ReactionTally splits tapbacks by who sent them. Both sides always carry
// all six categories in canonical order, zero-filled.
type ReactionTally struct {
	YourReactions  []ReactionCount `json:"yourReactions"`
	TheirReactions []ReactionCount `json:"theirReactions"`
}
