// Package query implements paginated listing and substring search over a contact store.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/smileynet/agenda/internal/contact"
)

var (
	// ErrNoContacts indicates the store is empty.
	ErrNoContacts = errors.New("no contacts in the address book")
	// ErrInvalidPage indicates a page number outside 1..TotalPages.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidPageSize indicates a page size below 1.
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrNoMatches indicates a search that matched nothing in a non-empty store.
	ErrNoMatches = errors.New("no matching contacts")
	// ErrInvalidField indicates an unknown search field.
	ErrInvalidField = errors.New("invalid search field")
)

// Page is one bounded slice of the phone-sorted contact list.
type Page struct {
	Number     int
	TotalPages int
	Entries    []contact.Entry
}

// TotalPages returns ceil(count / pageSize), or 0 when pageSize is not positive.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ListPage returns page number page (1-based) of the contacts sorted by phone.
func ListPage(store *contact.Store, page, pageSize int) (Page, error) {
	if pageSize < 1 {
		return Page{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	count := store.Len()
	if count == 0 {
		return Page{}, ErrNoContacts
	}

	total := TotalPages(count, pageSize)
	if page < 1 || page > total {
		return Page{}, fmt.Errorf("%w: %d (1-%d)", ErrInvalidPage, page, total)
	}

	keys := slices.Collect(store.Keys())
	start := (page - 1) * pageSize
	end := min(start+pageSize, count)

	entries := make([]contact.Entry, 0, end-start)
	for _, phone := range keys[start:end] {
		c, _ := store.Get(phone)
		entries = append(entries, contact.Entry{Phone: phone, Contact: c})
	}

	return Page{Number: page, TotalPages: total, Entries: entries}, nil
}

// Field selects which attribute Search matches against.
type Field string

const (
	FieldName  Field = "name"
	FieldPhone Field = "phone"
	FieldEmail Field = "email"
)

// ParseField maps a field name, or its menu number ("1" name, "2" phone,
// "3" email), to a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "1":
		return FieldName, nil
	case "phone", "2":
		return FieldPhone, nil
	case "email", "3":
		return FieldEmail, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
}

// Search returns every contact whose chosen field contains term,
// ignoring case, in store iteration order.
func Search(store *contact.Store, field Field, term string) ([]contact.Entry, error) {
	switch field {
	case FieldName, FieldPhone, FieldEmail:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, string(field))
	}
	if store.Len() == 0 {
		return nil, ErrNoContacts
	}

	needle := strings.ToLower(term)
	var matches []contact.Entry
	for phone, c := range store.All() {
		if strings.Contains(strings.ToLower(fieldValue(field, phone, c)), needle) {
			matches = append(matches, contact.Entry{Phone: phone, Contact: c})
		}
	}
	if len(matches) == 0 {
		return nil, ErrNoMatches
	}
	return matches, nil
}

// Filter returns the contacts whose name, phone or email contains term,
// ignoring case, in store iteration order. An empty term returns every contact.
func Filter(store *contact.Store, term string) []contact.Entry {
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []contact.Entry
	for phone, c := range store.All() {
		for _, f := range []Field{FieldName, FieldPhone, FieldEmail} {
			if strings.Contains(strings.ToLower(fieldValue(f, phone, c)), needle) {
				out = append(out, contact.Entry{Phone: phone, Contact: c})
				break
			}
		}
	}
	return out
}

func fieldValue(field Field, phone string, c contact.Contact) string {
	switch field {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	default:
		return phone
	}
}
