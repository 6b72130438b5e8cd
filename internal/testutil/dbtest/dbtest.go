// Package dbtest provides shared database test helpers for seeding fixture
// snapshots with the chat.db schema. It is importable from any test package
// without circular dependency issues (it does not import internal/stats).
package dbtest

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AppleRaw converts a time to the chat.db date encoding (nanoseconds since
// 2001-01-01 00:00:00 UTC).
func AppleRaw(t time.Time) int64 {
	const appleEpochUnix = 978307200
	return (t.Unix() - appleEpochUnix) * 1_000_000_000
}

// TestDB wraps a *sql.DB holding an in-memory chat.db-shaped fixture.
type TestDB struct {
	DB *sql.DB
	T  testing.TB
}

// NewTestDB creates an in-memory SQLite database with the snapshot schema
// loaded. schemaPath is the path to schema.sql relative to the caller's
// package (e.g. "../snapshot/schema.sql").
func NewTestDB(t testing.TB, schemaPath string) *TestDB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema.sql: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return &TestDB{DB: db, T: t}
}

// AddHandle inserts a handle row and returns its ROWID.
func (tdb *TestDB) AddHandle(id string) int64 {
	tdb.T.Helper()
	res, err := tdb.DB.Exec(`INSERT INTO handle (id, service) VALUES (?, 'iMessage')`, id)
	if err != nil {
		tdb.T.Fatalf("AddHandle(%q): %v", id, err)
	}
	rowID, _ := res.LastInsertId()
	return rowID
}

// ChatOpts configures AddChat.
type ChatOpts struct {
	Identifier  string
	DisplayName string
	HandleRows  []int64 // member handle ROWIDs
}

// AddChat inserts a chat with its memberships and returns the chat ROWID.
func (tdb *TestDB) AddChat(opts ChatOpts) int64 {
	tdb.T.Helper()
	res, err := tdb.DB.Exec(`
		INSERT INTO chat (guid, chat_identifier, display_name, service_name)
		VALUES (?, ?, ?, 'iMessage')
	`, "guid-"+opts.Identifier, opts.Identifier, opts.DisplayName)
	if err != nil {
		tdb.T.Fatalf("AddChat(%q): %v", opts.Identifier, err)
	}
	chatID, _ := res.LastInsertId()
	for _, h := range opts.HandleRows {
		if _, err := tdb.DB.Exec(`INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (?, ?)`, chatID, h); err != nil {
			tdb.T.Fatalf("AddChat membership: %v", err)
		}
	}
	return chatID
}

// AddDirectChat inserts a handle plus a single-member chat for it, returning
// the chat ROWID and handle ROWID.
func (tdb *TestDB) AddDirectChat(handleID string) (int64, int64) {
	tdb.T.Helper()
	h := tdb.AddHandle(handleID)
	c := tdb.AddChat(ChatOpts{Identifier: handleID, HandleRows: []int64{h}})
	return c, h
}

// MessageOpts configures AddMessage. FromMe messages leave handle_id NULL,
// matching how chat.db stores self-authored rows.
type MessageOpts struct {
	ChatID         int64
	HandleRow      int64 // sender handle ROWID (0 = NULL)
	Text           string
	SentAt         time.Time
	FromMe         bool
	AssociatedType int64 // 0 = plain message
	NullDate       bool
}

// AddMessage inserts a message joined to its chat and returns the ROWID.
func (tdb *TestDB) AddMessage(opts MessageOpts) int64 {
	tdb.T.Helper()

	var handleRow any
	if opts.HandleRow != 0 {
		handleRow = opts.HandleRow
	}
	var date any
	if !opts.NullDate {
		date = AppleRaw(opts.SentAt)
	}
	fromMe := 0
	if opts.FromMe {
		fromMe = 1
	}

	res, err := tdb.DB.Exec(`
		INSERT INTO message (guid, text, handle_id, date, is_from_me, associated_message_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, "", opts.Text, handleRow, date, fromMe, opts.AssociatedType)
	if err != nil {
		tdb.T.Fatalf("AddMessage: %v", err)
	}
	msgID, _ := res.LastInsertId()

	if opts.ChatID != 0 {
		if _, err := tdb.DB.Exec(`INSERT INTO chat_message_join (chat_id, message_id) VALUES (?, ?)`, opts.ChatID, msgID); err != nil {
			tdb.T.Fatalf("AddMessage join: %v", err)
		}
	}
	return msgID
}

// StandardData holds the row IDs created by SeedStandardDataSet.
type StandardData struct {
	AliceChat, AliceHandle int64
	BobChat, BobHandle     int64
	GroupChat              int64
	CarolHandle            int64
}

// SeedStandardDataSet inserts the standard fixture: two direct conversations
// (Alice with 4 messages across 2023, Bob with 2 messages in 2024) and one
// named group chat with Alice and Carol (3 messages).
func (tdb *TestDB) SeedStandardDataSet() StandardData {
	tdb.T.Helper()

	d := func(y int, m time.Month, day, hour int) time.Time {
		return time.Date(y, m, day, hour, 0, 0, 0, time.UTC)
	}

	var sd StandardData
	sd.AliceChat, sd.AliceHandle = tdb.AddDirectChat("+15195551234")
	sd.BobChat, sd.BobHandle = tdb.AddDirectChat("bob@example.com")
	sd.CarolHandle = tdb.AddHandle("+14165550000")
	sd.GroupChat = tdb.AddChat(ChatOpts{
		Identifier:  "chat100200300",
		DisplayName: "Ski Trip",
		HandleRows:  []int64{sd.AliceHandle, sd.CarolHandle},
	})

	// Alice: three received, one sent.
	tdb.AddMessage(MessageOpts{ChatID: sd.AliceChat, HandleRow: sd.AliceHandle, Text: "coffee tomorrow morning", SentAt: d(2023, 1, 1, 10)})
	tdb.AddMessage(MessageOpts{ChatID: sd.AliceChat, HandleRow: sd.AliceHandle, Text: "coffee sounds great \U0001F602", SentAt: d(2023, 1, 2, 11)})
	tdb.AddMessage(MessageOpts{ChatID: sd.AliceChat, HandleRow: sd.AliceHandle, Text: "running late", SentAt: d(2023, 6, 1, 9)})
	tdb.AddMessage(MessageOpts{ChatID: sd.AliceChat, FromMe: true, Text: "no problem see you soon", SentAt: d(2023, 6, 1, 10)})

	// Bob: one received, one sent.
	tdb.AddMessage(MessageOpts{ChatID: sd.BobChat, HandleRow: sd.BobHandle, Text: "invoice attached", SentAt: d(2024, 3, 10, 15)})
	tdb.AddMessage(MessageOpts{ChatID: sd.BobChat, FromMe: true, Text: "thanks received", SentAt: d(2024, 3, 11, 9)})

	// Group chat: Alice, Carol, and one from me.
	tdb.AddMessage(MessageOpts{ChatID: sd.GroupChat, HandleRow: sd.AliceHandle, Text: "cabin booked \U0001F973", SentAt: d(2023, 2, 1, 18)})
	tdb.AddMessage(MessageOpts{ChatID: sd.GroupChat, HandleRow: sd.CarolHandle, Text: "bringing snacks", SentAt: d(2023, 2, 2, 12)})
	tdb.AddMessage(MessageOpts{ChatID: sd.GroupChat, FromMe: true, Text: "driving up friday", SentAt: d(2023, 2, 3, 8)})

	return sd
}
