// Package testutil builds on-disk SQLite fixtures shaped like the macOS
// Messages and Contacts stores.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Napageneral/msgstats/internal/timeline"
)

const chatSchema = `
	CREATE TABLE handle (ROWID INTEGER PRIMARY KEY AUTOINCREMENT, id TEXT NOT NULL);
	CREATE TABLE chat (ROWID INTEGER PRIMARY KEY AUTOINCREMENT, guid TEXT);
	CREATE TABLE message (ROWID INTEGER PRIMARY KEY AUTOINCREMENT, text TEXT, is_from_me INTEGER DEFAULT 0, date INTEGER DEFAULT 0);
	CREATE TABLE chat_handle_join (chat_id INTEGER, handle_id INTEGER);
	CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER);
`

const addressBookSchema = `
	CREATE TABLE ZABCDRECORD (Z_PK INTEGER PRIMARY KEY, ZFIRSTNAME TEXT, ZLASTNAME TEXT);
	CREATE TABLE ZABCDPHONENUMBER (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZFULLNUMBER TEXT);
	CREATE TABLE ZABCDEMAILADDRESS (Z_PK INTEGER PRIMARY KEY, ZOWNER INTEGER, ZADDRESS TEXT);
`

// ChatDB writes a chat.db-shaped database.
type ChatDB struct {
	t    *testing.T
	db   *sql.DB
	Path string
}

// NewChatDB creates an empty chat.db in a temp dir.
func NewChatDB(t *testing.T) *ChatDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")
	d := open(t, path, chatSchema)
	return &ChatDB{t: t, db: d, Path: path}
}

// Chat creates a chat whose members are the given handle identifiers and
// returns its ROWID.
func (c *ChatDB) Chat(handles ...string) int64 {
	c.t.Helper()
	chatID := c.insert(`INSERT INTO chat (guid) VALUES (?)`, "chat")
	for _, h := range handles {
		var handleID int64
		err := c.db.QueryRow(`SELECT ROWID FROM handle WHERE id = ?`, h).Scan(&handleID)
		if err == sql.ErrNoRows {
			handleID = c.insert(`INSERT INTO handle (id) VALUES (?)`, h)
		} else if err != nil {
			c.t.Fatalf("lookup handle: %v", err)
		}
		c.insert(`INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (?, ?)`, chatID, handleID)
	}
	return chatID
}

// Message adds a message to a chat at the given time.
func (c *ChatDB) Message(chatID int64, fromMe bool, at time.Time) int64 {
	c.t.Helper()
	return c.MessageRaw(chatID, fromMe, timeline.ToApple(at))
}

// MessageRaw adds a message with a native date value.
func (c *ChatDB) MessageRaw(chatID int64, fromMe bool, date int64) int64 {
	c.t.Helper()
	me := 0
	if fromMe {
		me = 1
	}
	msgID := c.insert(`INSERT INTO message (text, is_from_me, date) VALUES ('', ?, ?)`, me, date)
	c.insert(`INSERT INTO chat_message_join (chat_id, message_id) VALUES (?, ?)`, chatID, msgID)
	return msgID
}

// Orphan adds a message that belongs to no chat. It still counts toward
// the store's date range.
func (c *ChatDB) Orphan(at time.Time) int64 {
	c.t.Helper()
	return c.insert(`INSERT INTO message (text, is_from_me, date) VALUES ('', 0, ?)`, timeline.ToApple(at))
}

// Close flushes the fixture so production code can open it read-only.
func (c *ChatDB) Close() {
	c.t.Helper()
	if err := c.db.Close(); err != nil {
		c.t.Fatalf("close chat.db: %v", err)
	}
}

func (c *ChatDB) insert(query string, args ...any) int64 {
	c.t.Helper()
	res, err := c.db.Exec(query, args...)
	if err != nil {
		c.t.Fatalf("fixture insert: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		c.t.Fatalf("fixture insert id: %v", err)
	}
	return id
}

// Person is a contact written into an AddressBook fixture.
type Person struct {
	First  string
	Last   string
	Phones []string
	Emails []string
}

// AddressBook writes an AddressBook-v22.abcddb row by row, for tests that
// care about table order.
type AddressBook struct {
	t  *testing.T
	db *sql.DB
}

func NewAddressBook(t *testing.T, path string) *AddressBook {
	t.Helper()
	return &AddressBook{t: t, db: open(t, path, addressBookSchema)}
}

// Person inserts a ZABCDRECORD row and returns its ROWID.
func (a *AddressBook) Person(first, last string) int64 {
	a.t.Helper()
	return a.insert(`INSERT INTO ZABCDRECORD (ZFIRSTNAME, ZLASTNAME) VALUES (?, ?)`, nullable(first), nullable(last))
}

func (a *AddressBook) Phone(owner int64, number string) {
	a.t.Helper()
	a.insert(`INSERT INTO ZABCDPHONENUMBER (ZOWNER, ZFULLNUMBER) VALUES (?, ?)`, owner, number)
}

func (a *AddressBook) Email(owner int64, address string) {
	a.t.Helper()
	a.insert(`INSERT INTO ZABCDEMAILADDRESS (ZOWNER, ZADDRESS) VALUES (?, ?)`, owner, address)
}

func (a *AddressBook) Close() {
	a.db.Close()
}

func (a *AddressBook) insert(query string, args ...any) int64 {
	a.t.Helper()
	res, err := a.db.Exec(query, args...)
	if err != nil {
		a.t.Fatalf("insert: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// WriteAddressBook creates an AddressBook-v22.abcddb at path, writing each
// person's phones and emails right after their record.
func WriteAddressBook(t *testing.T, path string, people ...Person) {
	t.Helper()
	ab := NewAddressBook(t, path)
	defer ab.Close()

	for _, p := range people {
		owner := ab.Person(p.First, p.Last)
		for _, phone := range p.Phones {
			ab.Phone(owner, phone)
		}
		for _, email := range p.Emails {
			ab.Email(owner, email)
		}
	}
}

func open(t *testing.T, path, schema string) *sql.DB {
	t.Helper()
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if _, err := d.Exec(schema); err != nil {
		d.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	return d
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
