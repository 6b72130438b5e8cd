package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/FO214/remess/internal/filter"
	"github.com/FO214/remess/internal/testutil/dbtest"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	if err == nil {
		t.Fatal("Open should fail when the snapshot file does not exist")
	}
}

func TestMemberCount(t *testing.T) {
	tdb := dbtest.NewTestDB(t, "schema.sql")
	sd := tdb.SeedStandardDataSet()
	s := FromDB(tdb.DB)
	ctx := context.Background()

	cases := []struct {
		chatID int64
		want   int
	}{
		{sd.AliceChat, 1},
		{sd.GroupChat, 2},
		{99999, 0},
	}
	for _, tc := range cases {
		got, err := s.MemberCount(ctx, tc.chatID)
		if err != nil {
			t.Fatalf("MemberCount(%d) error = %v", tc.chatID, err)
		}
		if got != tc.want {
			t.Errorf("MemberCount(%d) = %d, want %d", tc.chatID, got, tc.want)
		}
	}
}

func TestChatKind(t *testing.T) {
	tdb := dbtest.NewTestDB(t, "schema.sql")
	sd := tdb.SeedStandardDataSet()
	s := FromDB(tdb.DB)
	ctx := context.Background()

	kind, err := s.ChatKind(ctx, sd.AliceChat)
	if err != nil || kind != filter.KindDirect {
		t.Errorf("ChatKind(alice) = %v, %v, want direct", kind, err)
	}
	kind, err = s.ChatKind(ctx, sd.GroupChat)
	if err != nil || kind != filter.KindGroup {
		t.Errorf("ChatKind(group) = %v, %v, want group", kind, err)
	}
}

func TestChatExists(t *testing.T) {
	tdb := dbtest.NewTestDB(t, "schema.sql")
	sd := tdb.SeedStandardDataSet()
	s := FromDB(tdb.DB)
	ctx := context.Background()

	ok, err := s.ChatExists(ctx, sd.GroupChat)
	if err != nil || !ok {
		t.Errorf("ChatExists(%d) = %v, %v, want true", sd.GroupChat, ok, err)
	}
	ok, err = s.ChatExists(ctx, 99999)
	if err != nil || ok {
		t.Errorf("ChatExists(99999) = %v, %v, want false", ok, err)
	}
}

func TestFromDBHasNoPath(t *testing.T) {
	tdb := dbtest.NewTestDB(t, "schema.sql")
	s := FromDB(tdb.DB)
	if s.Path() != "" {
		t.Errorf("Path() = %q, want empty for wrapped database", s.Path())
	}
	if s.DB() != tdb.DB {
		t.Error("DB() should return the wrapped connection")
	}
}
