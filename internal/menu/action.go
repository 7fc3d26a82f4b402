// Package menu implements the interactive numbered console menu over a contact store.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidChoice indicates input that does not name a menu entry.
var ErrInvalidChoice = errors.New("invalid option")

// Action is a menu request. The concrete types below are the only implementations.
type Action interface {
	Name() string
	isAction()
}

type (
	// ListPage shows the current page.
	ListPage struct{}
	// Create adds a contact or updates an existing one.
	Create struct{}
	// Search finds contacts by name, phone or email.
	Search struct{}
	// Delete removes a contact after confirmation.
	Delete struct{}
	// Export writes all contacts to a file.
	Export struct{}
	// NextPage advances the page cursor and shows it.
	NextPage struct{}
	// PrevPage moves the page cursor back, stopping at the first page.
	PrevPage struct{}
	// SaveAndExit persists the store and ends the session.
	SaveAndExit struct{}
)

func (ListPage) Name() string    { return "list" }
func (Create) Name() string      { return "create" }
func (Search) Name() string      { return "search" }
func (Delete) Name() string      { return "delete" }
func (Export) Name() string      { return "export" }
func (NextPage) Name() string    { return "next-page" }
func (PrevPage) Name() string    { return "prev-page" }
func (SaveAndExit) Name() string { return "save-and-exit" }

func (ListPage) isAction()    {}
func (Create) isAction()      {}
func (Search) isAction()      {}
func (Delete) isAction()      {}
func (Export) isAction()      {}
func (NextPage) isAction()    {}
func (PrevPage) isAction()    {}
func (SaveAndExit) isAction() {}

// entries lists menu actions in display order; position+1 is the menu number.
var entries = []struct {
	action Action
	label  string
}{
	{ListPage{}, "View contacts (paged)"},
	{Create{}, "Add/update contact"},
	{Search{}, "Search contacts"},
	{Delete{}, "Delete contact"},
	{Export{}, "Export contacts"},
	{NextPage{}, "Next page"},
	{PrevPage{}, "Previous page"},
	{SaveAndExit{}, "Save and exit"},
}

// ParseChoice maps a menu number ("1".."8") to its Action.
func ParseChoice(s string) (Action, error) {
	s = strings.TrimSpace(s)
	for i, e := range entries {
		if s == fmt.Sprint(i+1) {
			return e.action, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// Input is a source of user input lines.
type Input interface {
	// ReadLine returns the next line without its terminator, or io.EOF
	// when input is exhausted.
	ReadLine() (string, error)
}

// LineInput reads lines from an io.Reader.
type LineInput struct {
	sc *bufio.Scanner
}

// NewLineInput returns an Input reading newline-terminated lines from r.
func NewLineInput(r io.Reader) *LineInput {
	return &LineInput{sc: bufio.NewScanner(r)}
}

// ReadLine returns the next line with surrounding whitespace and any
// trailing carriage return removed.
func (l *LineInput) ReadLine() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(l.sc.Text()), nil
}
