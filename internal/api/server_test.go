package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/FO214/remess/internal/contacts"
	"github.com/FO214/remess/internal/stats"
	"github.com/FO214/remess/internal/testutil/dbtest"
)

// testLogger returns a logger for tests that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer builds a server over the standard fixture data set with a
// contacts file naming Alice.
func newTestServer(t *testing.T) (*Server, dbtest.StandardData) {
	t.Helper()

	tdb := dbtest.NewTestDB(t, "../snapshot/schema.sql")
	sd := tdb.SeedStandardDataSet()

	engine := stats.NewFromDB(tdb.DB, stats.Options{
		Logger:   testLogger(),
		Location: time.UTC,
	})

	bookPath := filepath.Join(t.TempDir(), "contacts.toml")
	bookContent := `
[[contact]]
name = "Alice"
handles = ["+15195551234"]
`
	if err := os.WriteFile(bookPath, []byte(bookContent), 0o644); err != nil {
		t.Fatalf("write contacts: %v", err)
	}
	book, err := contacts.Load(bookPath)
	if err != nil {
		t.Fatalf("load contacts: %v", err)
	}

	return NewServer(0, engine, book, testLogger()), sd
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestOverview(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/overview")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp OverviewResponse
	decode(t, rec, &resp)
	if resp.TotalMessages != 6 {
		t.Errorf("TotalMessages = %d, want 6", resp.TotalMessages)
	}
	if resp.Sent != 2 || resp.Received != 4 {
		t.Errorf("sent/received = %d/%d, want 2/4", resp.Sent, resp.Received)
	}
	if resp.MostActiveYear == nil || resp.MostActiveYear.Year != 2023 {
		t.Errorf("MostActiveYear = %+v, want 2023", resp.MostActiveYear)
	}
}

func TestTopContactsEnrichment(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/contacts?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp []ContactEntry
	decode(t, rec, &resp)
	if len(resp) != 2 {
		t.Fatalf("contacts = %d, want 2", len(resp))
	}
	if resp[0].HandleID != "+15195551234" || resp[0].Name != "Alice" {
		t.Errorf("top contact = %+v, want Alice's handle with name", resp[0])
	}
	if resp[1].Name != "" {
		t.Errorf("unnamed contact got name %q", resp[1].Name)
	}
}

func TestContactStatsByNameAndHandle(t *testing.T) {
	s, _ := newTestServer(t)

	for _, ident := range []string{"Alice", "+15195551234"} {
		rec := get(t, s, "/api/v1/contacts/"+ident+"/stats")
		if rec.Code != http.StatusOK {
			t.Fatalf("status for %q = %d, want 200", ident, rec.Code)
		}
		var resp stats.ContactStats
		decode(t, rec, &resp)
		if resp.TotalMessages != 4 {
			t.Errorf("%q TotalMessages = %d, want 4", ident, resp.TotalMessages)
		}
	}
}

func TestContactSearch(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/v1/contacts/Alice/search?q=coffee")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp stats.SearchResult
	decode(t, rec, &resp)
	if resp.Count != 2 || len(resp.Examples) != 2 {
		t.Errorf("result = %+v, want 2 matches", resp)
	}

	// Missing q is a client error.
	if rec := get(t, s, "/api/v1/contacts/Alice/search"); rec.Code != http.StatusBadRequest {
		t.Errorf("status without q = %d, want 400", rec.Code)
	}
}

func TestContactReactionsAlwaysZeroFilled(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/contacts/Alice/reactions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp stats.ReactionTally
	decode(t, rec, &resp)
	if len(resp.YourReactions) != 6 || len(resp.TheirReactions) != 6 {
		t.Errorf("tally = %+v, want six categories each side", resp)
	}
}

func TestGroupRoutes(t *testing.T) {
	s, sd := newTestServer(t)

	rec := get(t, s, "/api/v1/groups")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var groups []GroupEntry
	decode(t, rec, &groups)
	if len(groups) != 1 || groups[0].ChatID != sd.GroupChat {
		t.Fatalf("groups = %+v, want the Ski Trip chat", groups)
	}

	rec = get(t, s, "/api/v1/groups/"+itoa(sd.GroupChat)+"/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", rec.Code)
	}
	var gs stats.GroupChatStats
	decode(t, rec, &gs)
	if gs.TotalMessages != 3 || gs.ParticipantCount != 2 {
		t.Errorf("group stats = %+v, want 3 messages, 2 participants", gs)
	}
}

func TestGroupStatsErrors(t *testing.T) {
	s, _ := newTestServer(t)

	if rec := get(t, s, "/api/v1/groups/notanumber/stats"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad chat id status = %d, want 400", rec.Code)
	}
	if rec := get(t, s, "/api/v1/groups/99999/stats"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown chat status = %d, want 404", rec.Code)
	}
}

func TestGroupWordsPersonParam(t *testing.T) {
	s, sd := newTestServer(t)

	rec := get(t, s, "/api/v1/groups/"+itoa(sd.GroupChat)+"/words?person=%2B14165550000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var words []stats.TokenCount
	decode(t, rec, &words)
	found := false
	for _, tc := range words {
		if tc.Token == "snacks" {
			found = true
		}
		if tc.Token == "driving" {
			t.Errorf("person filter leaked another sender's token: %+v", tc)
		}
	}
	if !found {
		t.Errorf("words = %+v, want carol's \"snacks\"", words)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
