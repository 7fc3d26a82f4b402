package contact

import (
	"iter"
	"maps"
	"slices"
)

// Store maps phone numbers to contacts. It is not safe for concurrent use.
//
// Store does not validate keys; callers validate phone numbers at the point
// where user input enters the system.
type Store struct {
	contacts map[string]Contact
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{contacts: make(map[string]Contact)}
}

// FromMap returns a Store holding a copy of m.
func FromMap(m map[string]Contact) *Store {
	s := &Store{contacts: make(map[string]Contact, len(m))}
	maps.Copy(s.contacts, m)
	return s
}

// Upsert stores c under phone, replacing any existing contact.
// It reports whether an existing contact was replaced.
func (s *Store) Upsert(phone string, c Contact) (updated bool) {
	_, updated = s.contacts[phone]
	s.contacts[phone] = c
	return updated
}

// Get returns the contact stored under phone.
func (s *Store) Get(phone string) (Contact, bool) {
	c, ok := s.contacts[phone]
	return c, ok
}

// Remove deletes the contact stored under phone and reports whether it existed.
func (s *Store) Remove(phone string) bool {
	if _, ok := s.contacts[phone]; !ok {
		return false
	}
	delete(s.contacts, phone)
	return true
}

// Len returns the number of stored contacts.
func (s *Store) Len() int {
	return len(s.contacts)
}

// Keys returns the phone numbers in ascending lexicographic order.
// The order is computed when iteration starts; mutating the store while
// iterating does not affect the keys already collected.
func (s *Store) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range slices.Sorted(maps.Keys(s.contacts)) {
			if !yield(k) {
				return
			}
		}
	}
}

// All iterates phone/contact pairs in ascending phone order.
// Contacts removed during iteration are skipped.
func (s *Store) All() iter.Seq2[string, Contact] {
	return func(yield func(string, Contact) bool) {
		for k := range s.Keys() {
			c, ok := s.contacts[k]
			if !ok {
				continue
			}
			if !yield(k, c) {
				return
			}
		}
	}
}

// Entries returns every contact as a slice in ascending phone order.
func (s *Store) Entries() []Entry {
	entries := make([]Entry, 0, len(s.contacts))
	for phone, c := range s.All() {
		entries = append(entries, Entry{Phone: phone, Contact: c})
	}
	return entries
}

// Snapshot returns a copy of the underlying phone→contact mapping.
func (s *Store) Snapshot() map[string]Contact {
	return maps.Clone(s.contacts)
}
