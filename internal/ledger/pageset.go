package ledger

import (
	"sort"
	"strconv"
	"strings"
)

// PageSet is a set of 1-based page numbers. Domain logic works on the set;
// the comma-joined string form exists only at the storage boundary.
type PageSet map[int]struct{}

// NewPageSet builds a set from the given pages.
func NewPageSet(pages ...int) PageSet {
	s := make(PageSet, len(pages))
	for _, p := range pages {
		s[p] = struct{}{}
	}
	return s
}

// ParsePageSet decodes the stored comma-joined form. Empty segments and
// non-numeric garbage are skipped rather than failing the whole record.
func ParsePageSet(encoded string) PageSet {
	s := make(PageSet)
	for _, part := range strings.Split(encoded, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, err := strconv.Atoi(part); err == nil {
			s[p] = struct{}{}
		}
	}
	return s
}

// Contains reports whether page is in the set.
func (s PageSet) Contains(page int) bool {
	_, ok := s[page]
	return ok
}

// Add inserts page into the set.
func (s PageSet) Add(page int) {
	s[page] = struct{}{}
}

// Len returns the number of pages in the set.
func (s PageSet) Len() int {
	return len(s)
}

// Clone returns an independent copy.
func (s PageSet) Clone() PageSet {
	c := make(PageSet, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// Sorted returns the pages in ascending order. Never nil, so JSON encodes
// as [] rather than null.
func (s PageSet) Sorted() []int {
	pages := make([]int, 0, len(s))
	for p := range s {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Encode renders the storage form: sorted pages joined by commas.
func (s PageSet) Encode() string {
	pages := s.Sorted()
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s PageSet) MarshalJSON() ([]byte, error) {
	pages := s.Sorted()
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}
