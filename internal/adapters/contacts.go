package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Napageneral/msgstats/internal/contacts"
	"github.com/Napageneral/msgstats/internal/db"
)

// AddressBookFile is the macOS Contacts database file name.
const AddressBookFile = "AddressBook-v22.abcddb"

// DefaultAddressBookDir returns ~/Library/Application Support/AddressBook.
func DefaultAddressBookDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("Library", "Application Support", "AddressBook")
	}
	return filepath.Join(home, "Library", "Application Support", "AddressBook")
}

// DiscoverAddressBooks lists the per-account databases under
// dir/Sources/*/ followed by the top-level database, skipping any that
// do not exist. Later paths win key collisions when building a directory.
func DiscoverAddressBooks(dir string) []string {
	paths, _ := filepath.Glob(filepath.Join(dir, "Sources", "*", AddressBookFile))
	sort.Strings(paths)
	top := filepath.Join(dir, AddressBookFile)
	if _, err := os.Stat(top); err == nil {
		paths = append(paths, top)
	}
	return paths
}

var _ ContactSource = (*AddressBookSource)(nil)

// AddressBookSource reads contact entries from one AddressBook database.
type AddressBookSource struct {
	path string
}

func NewAddressBookSource(path string) *AddressBookSource {
	return &AddressBookSource{path: path}
}

func (s *AddressBookSource) Path() string { return s.path }

// Entries loads every phone number, then every email address, owned by a
// named person. Rows keep table order so a number shared between cards
// goes to whichever row the store lists last. The database is opened
// read-only and closed before returning.
func (s *AddressBookSource) Entries(ctx context.Context) ([]contacts.Entry, error) {
	conn, err := db.OpenReadOnly(ctx, s.path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	people, err := loadNames(ctx, conn)
	if err != nil {
		return nil, err
	}

	var entries []contacts.Entry
	for _, q := range []struct {
		kind  contacts.Kind
		label string
		query string
	}{
		{contacts.Phone, "phone numbers", `SELECT ZOWNER, ZFULLNUMBER FROM ZABCDPHONENUMBER WHERE ZFULLNUMBER IS NOT NULL ORDER BY ROWID`},
		{contacts.Email, "email addresses", `SELECT ZOWNER, ZADDRESS FROM ZABCDEMAILADDRESS WHERE ZADDRESS IS NOT NULL ORDER BY ROWID`},
	} {
		entries, err = appendOwned(ctx, conn, entries, people, q.kind, q.query)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", q.label, err)
		}
	}
	return entries, nil
}

func loadNames(ctx context.Context, conn *sql.DB) (map[int64]string, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT ROWID, ZFIRSTNAME, ZLASTNAME
		FROM ZABCDRECORD
		WHERE ZFIRSTNAME IS NOT NULL OR ZLASTNAME IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	people := make(map[int64]string)
	for rows.Next() {
		var id int64
		var first, last sql.NullString
		if err := rows.Scan(&id, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if name := contacts.DisplayName(first.String, last.String); name != "" {
			people[id] = name
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return people, nil
}

func appendOwned(ctx context.Context, conn *sql.DB, entries []contacts.Entry, people map[int64]string, kind contacts.Kind, query string) ([]contacts.Entry, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var owner sql.NullInt64
		var value string
		if err := rows.Scan(&owner, &value); err != nil {
			return nil, err
		}
		name, ok := people[owner.Int64]
		if !owner.Valid || !ok {
			continue
		}
		entries = append(entries, contacts.Entry{Owner: owner.Int64, Name: name, Kind: kind, Value: value})
	}
	return entries, rows.Err()
}

// SourceStatus reports how one contacts source fared while building the directory.
type SourceStatus struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// LoadDirectory builds a directory from every source in order. A source
// that cannot be read is skipped entirely and reported in its status;
// it never fails the load.
func LoadDirectory(ctx context.Context, sources []ContactSource, logger *slog.Logger) (*contacts.Directory, []SourceStatus) {
	if logger == nil {
		logger = slog.Default()
	}
	b := contacts.NewBuilder()
	statuses := make([]SourceStatus, 0, len(sources))

	for _, src := range sources {
		st := SourceStatus{Path: src.Path()}
		entries, err := src.Entries(ctx)
		if err != nil {
			st.Error = err.Error()
			logger.Warn("skipping contacts source", "path", src.Path(), "error", err)
			statuses = append(statuses, st)
			continue
		}
		st.Records = b.AddAll(entries)
		logger.Debug("loaded contacts source", "path", src.Path(), "records", st.Records)
		statuses = append(statuses, st)
	}
	return b.Build(), statuses
}
