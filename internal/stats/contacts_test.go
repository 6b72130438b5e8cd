package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/testutil/dbtest"
)

func TestContactStats(t *testing.T) {
	e, tdb := newTestEngine(t, Options{})
	tdb.SeedStandardDataSet()

	got := e.ContactStats(context.Background(), "+15195551234", 0)
	if got == nil {
		t.Fatal("ContactStats returned nil")
	}
	if got.TotalMessages != 4 || got.SentMessages != 1 || got.ReceivedMessages != 3 {
		t.Errorf("counts = %d/%d/%d, want 4/1/3", got.TotalMessages, got.SentMessages, got.ReceivedMessages)
	}
	wantFirst := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)
	if got.FirstMessageDate == nil || !got.FirstMessageDate.Equal(wantFirst) {
		t.Errorf("FirstMessageDate = %v, want %v", got.FirstMessageDate, wantFirst)
	}
	if diff := cmp.Diff([]YearCount{{Year: 2023, Count: 4}}, got.MessagesByYear); diff != "" {
		t.Errorf("MessagesByYear mismatch (-want +got):\n%s", diff)
	}
	if got.MostActiveYear != 2023 || got.MostActiveCount != 4 {
		t.Errorf("most active = %d/%d, want 2023/4", got.MostActiveYear, got.MostActiveCount)
	}
	// Jan 1 and Jan 2 are consecutive; Jun 1 stands alone.
	if got.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", got.LongestStreak)
	}
	if diff := cmp.Diff([]string{"+15195551234"}, got.HandleIDs); diff != "" {
		t.Errorf("HandleIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestContactStatsYearScope(t *testing.T) {
	e, tdb := newTestEngine(t, Options{})
	sd := tdb.SeedStandardDataSet()
	tdb.AddMessage(dbtest.MessageOpts{
		ChatID: sd.AliceChat, HandleRow: sd.AliceHandle,
		Text: "happy new year", SentAt: time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC),
	})

	got := e.ContactStats(context.Background(), "+15195551234", 2024)
	if got == nil {
		t.Fatal("ContactStats returned nil")
	}
	if got.TotalMessages != 1 || got.ReceivedMessages != 1 {
		t.Errorf("scoped counts = %d/%d, want 1 total, 1 received", got.TotalMessages, got.ReceivedMessages)
	}
	// The by-year breakdown stays unfiltered.
	wantYears := []YearCount{{Year: 2023, Count: 4}, {Year: 2024, Count: 1}}
	if diff := cmp.Diff(wantYears, got.MessagesByYear); diff != "" {
		t.Errorf("MessagesByYear mismatch (-want +got):\n%s", diff)
	}
	if got.MostActiveYear != 2024 || got.MostActiveCount != 1 {
		t.Errorf("most active = %d/%d, want 2024/1", got.MostActiveYear, got.MostActiveCount)
	}
}

func TestContactStatsUnknownHandleIsZero(t *testing.T) {
	e, tdb := newTestEngine(t, Options{})
	tdb.SeedStandardDataSet()

	got := e.ContactStats(context.Background(), "nobody@example.com", 0)
	if got == nil {
		t.Fatal("ContactStats returned nil for unknown handle")
	}
	if got.TotalMessages != 0 || got.FirstMessageDate != nil || got.LongestStreak != 0 {
		t.Errorf("unknown handle stats = %+v, want zeros", got.StatsBlock)
	}
}

func TestContactStatsEmptyHandle(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	if got := e.ContactStats(context.Background(), "", 0); got != nil {
		t.Errorf("ContactStats(\"\") = %+v, want nil", got)
	}
}

func TestContactStatsHonorsExclusion(t *testing.T) {
	e, tdb := newTestEngine(t, Options{ExcludedHandles: []string{"spam@example.com"}})
	tdb.SeedStandardDataSet()
	spamChat, spamHandle := tdb.AddDirectChat("spam@example.com")
	tdb.AddMessage(dbtest.MessageOpts{
		ChatID: spamChat, HandleRow: spamHandle,
		Text: "you won a prize", SentAt: time.Date(2023, 5, 5, 12, 0, 0, 0, time.UTC),
	})
	tdb.AddMessage(dbtest.MessageOpts{
		ChatID: spamChat, FromMe: true,
		Text: "stop messaging me", SentAt: time.Date(2023, 5, 6, 12, 0, 0, 0, time.UTC),
	})
	ctx := context.Background()
	spam := []string{"spam@example.com"}

	// Asking about the excluded handle directly still yields nothing, sent
	// side included.
	got := e.ContactStats(ctx, "spam@example.com", 0)
	if got == nil {
		t.Fatal("ContactStats returned nil")
	}
	if got.TotalMessages != 0 || got.FirstMessageDate != nil || len(got.MessagesByYear) != 0 {
		t.Errorf("excluded handle stats = %+v, want zeros", got.StatsBlock)
	}

	res := e.SearchContactMessages(ctx, spam, "prize", 10, 0, filter.SenderBoth)
	if res.Count != 0 || len(res.Examples) != 0 {
		t.Errorf("excluded handle search = %+v, want empty", res)
	}

	if words := e.ContactWords(ctx, spam, 0, filter.SenderBoth); len(words) != 0 {
		t.Errorf("excluded handle words = %+v, want none", words)
	}
}

func TestCombinedContactStats(t *testing.T) {
	e, tdb := newTestEngine(t, Options{})
	tdb.SeedStandardDataSet()

	got := e.CombinedContactStats(context.Background(), []string{"+15195551234", "bob@example.com"})
	if got == nil {
		t.Fatal("CombinedContactStats returned nil")
	}
	if got.TotalMessages != 6 || got.SentMessages != 2 || got.ReceivedMessages != 4 {
		t.Errorf("counts = %d/%d/%d, want 6/2/4", got.TotalMessages, got.SentMessages, got.ReceivedMessages)
	}
	wantFirst := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)
	if got.FirstMessageDate == nil || !got.FirstMessageDate.Equal(wantFirst) {
		t.Errorf("FirstMessageDate = %v, want earliest across handles %v", got.FirstMessageDate, wantFirst)
	}
	wantYears := []YearCount{{Year: 2023, Count: 4}, {Year: 2024, Count: 2}}
	if diff := cmp.Diff(wantYears, got.MessagesByYear); diff != "" {
		t.Errorf("MessagesByYear mismatch (-want +got):\n%s", diff)
	}
	// Mar 10 and Mar 11 from Bob's chat form the longest run in the union.
	if got.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", got.LongestStreak)
	}
	if len(got.HandleIDs) != 2 {
		t.Errorf("HandleIDs = %v, want both handles", got.HandleIDs)
	}
}

func TestCombinedContactStatsEmptyList(t *testing.T) {
	e, _ := newTestEngine(t, Options{})
	if got := e.CombinedContactStats(context.Background(), nil); got != nil {
		t.Errorf("CombinedContactStats(nil) = %+v, want nil", got)
	}
}

func TestContactWords(t *testing.T) {
	e, tdb := newTestEngine(t, Options{})
	tdb.SeedStandardDataSet()
	ctx := context.Background()
	alice := []string{"+15195551234"}

	got := e.ContactWords(ctx, alice, 1, filter.SenderBoth)
	want := []TokenCount{{Token: "coffee", Count: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ContactWords mismatch (-want +got):\n%s", diff)
	}

	// Only "no problem see you soon" is yours; stop words and short tokens
	// drop out.
	yours := e.ContactWords(ctx, alice, 0, filter.SenderYou)
	counts := make(map[string]int)
	for _, tc := range yours {
		counts[tc.Token] = tc.Count
	}
	if counts["problem"] != 1 || counts["soon"] != 1 {
		t.Errorf("ContactWords(you) = %+v, want problem and soon", yours)
	}
	if _, ok := counts["coffee"]; ok {
		t.Error("ContactWords(you) includes a received-side token")
	}
}

func TestContactEmojis(t *testing.T) {
	e, tdb := newTestEngine(t, Options{})
	tdb.SeedStandardDataSet()

	got := e.ContactEmojis(context.Background(), []string{"+15195551234"}, 0, filter.SenderBoth)
	want := []TokenCount{{Token: "\U0001F602", Count: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ContactEmojis mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchContactMessages(t *testing.T) {
	e, tdb := newTestEngine(t, Options{})
	tdb.SeedStandardDataSet()
	ctx := context.Background()
	alice := []string{"+15195551234"}

	got := e.SearchContactMessages(ctx, alice, "coffee", 10, 0, filter.SenderBoth)
	if got.Count != 2 {
		t.Fatalf("Count = %d, want 2", got.Count)
	}
	if len(got.Examples) != 2 {
		t.Fatalf("Examples = %d, want 2", len(got.Examples))
	}
	// Newest first.
	if got.Examples[0].Text != "coffee sounds great \U0001F602" {
		t.Errorf("Examples[0].Text = %q", got.Examples[0].Text)
	}
	if got.Examples[0].FormattedDate != "Jan 2, 2023 11:00 AM" {
		t.Errorf("FormattedDate = %q, want %q", got.Examples[0].FormattedDate, "Jan 2, 2023 11:00 AM")
	}
	if got.Examples[1].Text != "coffee tomorrow morning" {
		t.Errorf("Examples[1].Text = %q", got.Examples[1].Text)
	}

	// Pagination.
	page := e.SearchContactMessages(ctx, alice, "coffee", 1, 1, filter.SenderBoth)
	if page.Count != 2 || len(page.Examples) != 1 || page.Examples[0].Text != "coffee tomorrow morning" {
		t.Errorf("page = %+v, want count 2 with second match", page)
	}

	// Sender filter: you never said "coffee".
	none := e.SearchContactMessages(ctx, alice, "coffee", 10, 0, filter.SenderYou)
	if none.Count != 0 || len(none.Examples) != 0 {
		t.Errorf("SenderYou result = %+v, want empty", none)
	}
	if none.Examples == nil {
		t.Error("Examples is nil, want empty slice")
	}
}
