// Package contact defines contact records and the in-memory store keyed by phone number.
package contact

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPhone indicates a phone number that is not exactly 10 decimal digits.
var ErrInvalidPhone = errors.New("invalid phone format: must be 10 digits")

// ErrNotFound indicates no contact is stored under the given phone number.
var ErrNotFound = errors.New("contact not found")

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Contact holds the details stored for one phone number.
type Contact struct {
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Address string `json:"address" yaml:"address"`
	Notes   string `json:"notes" yaml:"notes"`
}

// String renders the contact as labelled lines for console output.
func (c Contact) String() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nAddress: %s\nNotes: %s", c.Name, c.Email, c.Address, c.Notes)
}

// Entry pairs a phone number with its contact.
type Entry struct {
	Phone   string
	Contact Contact
}

// IsValidPhone reports whether s is exactly 10 decimal digits.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ValidatePhone returns ErrInvalidPhone when s is not a valid phone number.
func ValidatePhone(s string) error {
	if !IsValidPhone(s) {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, s)
	}
	return nil
}
