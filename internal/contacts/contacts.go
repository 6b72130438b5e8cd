// Package contacts maps raw message handles to named people. The mapping
// lives in a user-maintained TOML file; a person may claim several handles
// (phone plus email is common), and statistics for them merge across all of
// them.
package contacts

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Contact is one named person and the handles that reach them.
type Contact struct {
	Name    string   `toml:"name"`
	Handles []string `toml:"handles"`
	Photo   string   `toml:"photo"`
}

type fileFormat struct {
	Contacts []Contact `toml:"contact"`
}

// Book is a loaded contacts file with a handle index.
type Book struct {
	contacts []Contact
	byHandle map[string]int
}

// Load reads a contacts TOML file. A missing file yields an empty book:
// the mapping is an optional enrichment, not a requirement.
func Load(path string) (*Book, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return newBook(nil), nil
	}

	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	return newBook(ff.Contacts), nil
}

func newBook(cs []Contact) *Book {
	b := &Book{contacts: cs, byHandle: make(map[string]int)}
	for i, c := range cs {
		for _, h := range c.Handles {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			// First claim wins when two contacts list the same handle.
			if _, taken := b.byHandle[h]; !taken {
				b.byHandle[h] = i
			}
		}
	}
	return b
}

// All returns every contact in file order.
func (b *Book) All() []Contact {
	return b.contacts
}

// ByHandle returns the contact claiming a handle, or nil.
func (b *Book) ByHandle(handle string) *Contact {
	i, ok := b.byHandle[handle]
	if !ok {
		return nil
	}
	return &b.contacts[i]
}

// ByName returns the contact with the given name (case-insensitive), or nil.
func (b *Book) ByName(name string) *Contact {
	for i := range b.contacts {
		if strings.EqualFold(b.contacts[i].Name, name) {
			return &b.contacts[i]
		}
	}
	return nil
}

// Resolve maps an identifier that may be either a contact name or a raw
// handle to the set of handles to query. Unknown identifiers fall through
// as a single raw handle.
func (b *Book) Resolve(ident string) []string {
	if c := b.ByName(ident); c != nil && len(c.Handles) > 0 {
		return c.Handles
	}
	if c := b.ByHandle(ident); c != nil && len(c.Handles) > 0 {
		return c.Handles
	}
	return []string{ident}
}

// DisplayName returns the contact name for a handle, or fallback when the
// handle is unclaimed.
func (b *Book) DisplayName(handle, fallback string) string {
	if c := b.ByHandle(handle); c != nil && c.Name != "" {
		return c.Name
	}
	return fallback
}
