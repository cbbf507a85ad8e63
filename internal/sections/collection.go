package sections

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrProtectedSection is returned when removing one of the always-present sections.
var ErrProtectedSection = errors.New("section cannot be removed")

// Collection is an ordered set of sections. Order is display order and ids are unique.
// A Collection is owned by a single editing session and is not safe for concurrent use.
type Collection struct {
	sections []Section
	newID    func() string
}

// NewCollection builds a collection from secs, dropping later duplicates of an id.
func NewCollection(secs ...Section) *Collection {
	c := &Collection{sections: make([]Section, 0, len(secs))}
	for _, s := range secs {
		if c.indexOf(s.ID) >= 0 {
			continue
		}
		c.sections = append(c.sections, s)
	}
	return c
}

// Len returns the number of sections.
func (c *Collection) Len() int {
	return len(c.sections)
}

// Sections returns a copy of the sections in display order.
func (c *Collection) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// IDs returns section ids in display order.
func (c *Collection) IDs() []ID {
	ids := make([]ID, len(c.sections))
	for i, s := range c.sections {
		ids[i] = s.ID
	}
	return ids
}

// Get returns the section with the given id.
func (c *Collection) Get(id ID) (Section, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.sections[i], true
	}
	return Section{}, false
}

// Clone returns an independent copy of the collection.
func (c *Collection) Clone() *Collection {
	return &Collection{sections: c.Sections(), newID: c.newID}
}

// UpdateContent replaces the content of section id. It reports false when id is absent.
func (c *Collection) UpdateContent(id ID, content string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.sections[i].Content = content
	return true
}

// UpdateTitle replaces the title of section id. The id itself never changes.
func (c *Collection) UpdateTitle(id ID, title string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.sections[i].Title = title
	return true
}

// Add appends an empty user section with a fresh id and returns it.
func (c *Collection) Add() Section {
	s := Section{ID: c.freshID(), Title: NewSectionTitle}
	c.sections = append(c.sections, s)
	return s
}

// Remove deletes section id. Always-present sections are refused with ErrProtectedSection;
// an absent id is a no-op.
func (c *Collection) Remove(id ID) error {
	if AlwaysPresent(id) {
		return ErrProtectedSection
	}
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	c.sections = append(c.sections[:i], c.sections[i+1:]...)
	return nil
}

// Serialize renders the collection as plain text: every section with content becomes
// "title\ncontent", sections are separated by a blank line.
func (c *Collection) Serialize() string {
	parts := make([]string, 0, len(c.sections))
	for _, s := range c.sections {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		parts = append(parts, s.Title+"\n"+s.Content)
	}
	return strings.Join(parts, "\n\n")
}

// MarshalJSON encodes the collection as its ordered section list.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Sections())
}

// UnmarshalJSON decodes an ordered section list, dropping duplicate ids.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var secs []Section
	if err := json.Unmarshal(data, &secs); err != nil {
		return err
	}
	*c = *NewCollection(secs...)
	return nil
}

func (c *Collection) indexOf(id ID) int {
	for i, s := range c.sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) freshID() ID {
	gen := c.newID
	if gen == nil {
		gen = uuid.NewString
	}
	for {
		id := ID(CustomIDPrefix + gen())
		if c.indexOf(id) < 0 {
			return id
		}
	}
}
