package adapters

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Napageneral/msgstats/internal/contacts"
	"github.com/Napageneral/msgstats/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddressBookEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), AddressBookFile)
	testutil.WriteAddressBook(t, path,
		testutil.Person{First: "Alice", Last: "Smith", Phones: []string{"+1 (555) 123-4567"}, Emails: []string{"Alice@Example.com"}},
		testutil.Person{Last: "Jones", Emails: []string{"jones@example.com"}},
		testutil.Person{Phones: []string{"5550000000"}},
	)

	entries, err := NewAddressBookSource(path).Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	want := []contacts.Entry{
		{Owner: 1, Name: "Alice Smith", Kind: contacts.Phone, Value: "+1 (555) 123-4567"},
		{Owner: 1, Name: "Alice Smith", Kind: contacts.Email, Value: "Alice@Example.com"},
		{Owner: 2, Name: "Jones", Kind: contacts.Email, Value: "jones@example.com"},
	}
	if !slices.Equal(entries, want) {
		t.Fatalf("Entries = %+v, want %+v", entries, want)
	}
}

func TestAddressBookSharedNumberFollowsPhoneRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), AddressBookFile)
	ab := testutil.NewAddressBook(t, path)
	alice := ab.Person("Alice", "")
	bob := ab.Person("Bob", "")
	ab.Phone(bob, "555-123-4567")
	ab.Phone(alice, "(555) 123-4567")
	ab.Close()

	dir, statuses := LoadDirectory(context.Background(), []ContactSource{NewAddressBookSource(path)}, quietLogger())
	if statuses[0].Error != "" {
		t.Fatalf("load failed: %s", statuses[0].Error)
	}
	if statuses[0].Records != 2 {
		t.Fatalf("Records = %d, want 2", statuses[0].Records)
	}
	if got := dir.Resolve("5551234567"); got != "Alice" {
		t.Fatalf("Resolve = %q, want Alice (last phone row)", got)
	}
}

func TestAddressBookEmailsFollowPhones(t *testing.T) {
	path := filepath.Join(t.TempDir(), AddressBookFile)
	ab := testutil.NewAddressBook(t, path)
	alice := ab.Person("Alice", "")
	bob := ab.Person("Bob", "")
	ab.Email(alice, "shared@example.com")
	ab.Phone(bob, "5551234567")
	ab.Close()

	entries, err := NewAddressBookSource(path).Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != contacts.Phone || entries[1].Kind != contacts.Email {
		t.Fatalf("Entries = %+v, want phone then email", entries)
	}
}

func TestDiscoverAddressBooks(t *testing.T) {
	dir := t.TempDir()
	for _, src := range []string{"B", "A"} {
		if err := os.MkdirAll(filepath.Join(dir, "Sources", src), 0755); err != nil {
			t.Fatal(err)
		}
		testutil.WriteAddressBook(t, filepath.Join(dir, "Sources", src, AddressBookFile))
	}
	if err := os.MkdirAll(filepath.Join(dir, "Sources", "Empty"), 0755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteAddressBook(t, filepath.Join(dir, AddressBookFile))

	got := DiscoverAddressBooks(dir)
	want := []string{
		filepath.Join(dir, "Sources", "A", AddressBookFile),
		filepath.Join(dir, "Sources", "B", AddressBookFile),
		filepath.Join(dir, AddressBookFile),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("DiscoverAddressBooks = %v, want %v", got, want)
	}

	if got := DiscoverAddressBooks(filepath.Join(dir, "missing")); len(got) != 0 {
		t.Fatalf("DiscoverAddressBooks(missing) = %v, want empty", got)
	}
}

type failingSource struct{ path string }

func (f failingSource) Path() string { return f.path }
func (f failingSource) Entries(context.Context) ([]contacts.Entry, error) {
	return nil, errors.New("file is not a database")
}

type staticSource struct {
	path    string
	entries []contacts.Entry
}

func (s staticSource) Path() string { return s.path }
func (s staticSource) Entries(context.Context) ([]contacts.Entry, error) {
	return s.entries, nil
}

func TestLoadDirectorySkipsBrokenSources(t *testing.T) {
	dir, statuses := LoadDirectory(context.Background(), []ContactSource{
		staticSource{path: "first", entries: []contacts.Entry{{Owner: 1, Name: "Alice", Kind: contacts.Phone, Value: "5551234567"}}},
		failingSource{path: "broken"},
		NewAddressBookSource(filepath.Join(t.TempDir(), "missing.abcddb")),
		staticSource{path: "last", entries: []contacts.Entry{{Owner: 1, Name: "Alicia", Kind: contacts.Phone, Value: "5551234567"}}},
	}, quietLogger())

	if len(statuses) != 4 {
		t.Fatalf("got %d statuses, want 4", len(statuses))
	}
	if statuses[0].Records != 1 {
		t.Fatalf("first source records = %d, want 1", statuses[0].Records)
	}
	if statuses[1].Error == "" || statuses[2].Error == "" {
		t.Fatalf("broken sources not reported: %+v", statuses)
	}
	if statuses[3].Error != "" {
		t.Fatalf("last source failed: %s", statuses[3].Error)
	}
	if got := dir.Resolve("5551234567"); got != "Alicia" {
		t.Fatalf("Resolve = %q, want Alicia", got)
	}
}

func TestLoadDirectoryEmpty(t *testing.T) {
	dir, statuses := LoadDirectory(context.Background(), nil, quietLogger())
	if len(statuses) != 0 || dir.Len() != 0 {
		t.Fatalf("got %d statuses and %d keys, want none", len(statuses), dir.Len())
	}
	if got := dir.Resolve("5551234567"); got != "5551234567" {
		t.Fatalf("Resolve = %q, want passthrough", got)
	}
}

func TestAddressBookEntriesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), AddressBookFile)
	if err := os.WriteFile(path, []byte("not sqlite"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewAddressBookSource(path).Entries(context.Background()); err == nil {
		t.Fatal("expected error for a file that is not a database")
	}
}
