package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/smileynet/agenda/internal/contact"
	"github.com/smileynet/agenda/internal/export"
	"github.com/smileynet/agenda/internal/query"
)

// ErrEmptyName indicates an export was requested without a file name.
var ErrEmptyName = errors.New("file name cannot be empty")

// Saver persists the whole store.
type Saver interface {
	Save(store *contact.Store) error
}

// Session runs the console menu against one store.
type Session struct {
	store    *contact.Store
	saver    Saver
	in       Input
	out      io.Writer
	pageSize int
	page     int

	exportDir    string
	exportFormat export.Format
	logger       *zap.Logger

	title   lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
}

// Option configures a Session.
type Option func(*Session)

// WithPageSize sets the number of contacts per page (default 5).
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithExport sets the directory export names resolve against and the file format.
func WithExport(dir string, f export.Format) Option {
	return func(s *Session) {
		s.exportDir = dir
		s.exportFormat = f
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a Session reading from in and writing to out.
func NewSession(store *contact.Store, saver Saver, in Input, out io.Writer, opts ...Option) *Session {
	r := lipgloss.NewRenderer(out)
	s := &Session{
		store:        store,
		saver:        saver,
		in:           in,
		out:          out,
		pageSize:     5,
		page:         1,
		exportDir:    ".",
		exportFormat: export.FormatCSV,
		logger:       zap.NewNop(),
		title:        r.NewStyle().Bold(true),
		heading:      r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}),
		muted:        r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"}),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.Named("menu")
	return s
}

// Page returns the current page cursor.
func (s *Session) Page() int {
	return s.page
}

// Run shows the menu and dispatches choices until SaveAndExit succeeds,
// input is exhausted, or ctx is cancelled. Only SaveAndExit persists the
// store.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.renderMenu()
		line, err := s.in.ReadLine()
		if err != nil {
			return s.finish(err)
		}

		action, err := ParseChoice(line)
		if err != nil {
			s.report(err)
			continue
		}

		done, err := s.Dispatch(action)
		if err != nil {
			return s.finish(err)
		}
		if done {
			return nil
		}
	}
}

// finish ends the session when input fails. Exhausted input discards
// unsaved changes like any other exit that is not SaveAndExit.
func (s *Session) finish(err error) error {
	if !errors.Is(err, io.EOF) {
		return fmt.Errorf("menu: reading input: %w", err)
	}
	s.logger.Debug("input closed, exiting without saving")
	s.println("")
	s.println("Input closed. Exiting without saving.")
	return nil
}

// Dispatch runs one action. It reports whether the session should end.
// Operation failures are printed and swallowed; only input errors are returned.
func (s *Session) Dispatch(a Action) (done bool, err error) {
	s.logger.Debug("dispatch", zap.String("action", a.Name()))

	switch a.(type) {
	case ListPage:
		s.clampPage()
		err = s.listPage()
	case NextPage:
		s.page++
		if err = s.listPage(); err != nil {
			s.page--
		}
	case PrevPage:
		s.page = max(1, s.page-1)
		s.clampPage()
		err = s.listPage()
	case Create:
		err = s.create()
	case Search:
		err = s.search()
	case Delete:
		err = s.delete()
	case Export:
		err = s.exportAll()
	case SaveAndExit:
		if err = s.saver.Save(s.store); err == nil {
			s.println("Contacts saved.")
			s.println("Goodbye.")
			return true, nil
		}
	}

	if isInputErr(err) {
		return false, err
	}
	s.report(err)
	return false, nil
}

func (s *Session) listPage() error {
	p, err := query.ListPage(s.store, s.page, s.pageSize)
	if err != nil {
		return err
	}

	s.println("")
	s.println(s.heading.Render(fmt.Sprintf("=== CONTACTS (page %d of %d) ===", p.Number, p.TotalPages)))
	for _, e := range p.Entries {
		s.printEntry(e)
	}
	return nil
}

// clampPage pulls the cursor back to the last page when deletes have
// shrunk the book below it.
func (s *Session) clampPage() {
	if last := query.TotalPages(s.store.Len(), s.pageSize); last > 0 && s.page > last {
		s.page = last
	}
}

func (s *Session) create() error {
	s.println("")
	s.println(s.heading.Render("=== NEW CONTACT ==="))

	var phone string
	for {
		line, err := s.prompt("Phone (10 digits): ")
		if err != nil {
			return err
		}
		if err := contact.ValidatePhone(line); err != nil {
			s.report(err)
			continue
		}
		phone = line
		break
	}

	if existing, ok := s.store.Get(phone); ok {
		s.println("This number already exists. Current contact:")
		s.println(existing.String())
		ok, err := s.confirm("Update it? (y/n): ")
		if err != nil {
			return err
		}
		if !ok {
			s.println("Cancelled.")
			return nil
		}
	}

	var c contact.Contact
	fields := []struct {
		label string
		dst   *string
	}{
		{"Full name: ", &c.Name},
		{"Email: ", &c.Email},
		{"Address: ", &c.Address},
		{"Notes: ", &c.Notes},
	}
	for _, f := range fields {
		v, err := s.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if s.store.Upsert(phone, c) {
		s.logger.Info("contact updated", zap.String("phone", phone))
		s.println("Contact updated.")
	} else {
		s.logger.Info("contact added", zap.String("phone", phone))
		s.println("Contact added.")
	}
	return nil
}

func (s *Session) search() error {
	s.println("")
	s.println(s.heading.Render("=== SEARCH CONTACTS ==="))
	s.println("1. By name")
	s.println("2. By phone")
	s.println("3. By email")

	choice, err := s.prompt("Choose an option: ")
	if err != nil {
		return err
	}
	field, err := query.ParseField(choice)
	if err != nil {
		return err
	}
	term, err := s.prompt("Search term: ")
	if err != nil {
		return err
	}

	matches, err := query.Search(s.store, field, term)
	if err != nil {
		return err
	}
	for _, e := range matches {
		s.printEntry(e)
	}
	s.println(s.muted.Render(fmt.Sprintf("%d match(es).", len(matches))))
	return nil
}

func (s *Session) delete() error {
	phone, err := s.prompt("Phone number to delete: ")
	if err != nil {
		return err
	}
	c, ok := s.store.Get(phone)
	if !ok {
		return fmt.Errorf("%w: %s", contact.ErrNotFound, phone)
	}

	s.println("")
	s.println("Contact to delete:")
	s.printEntry(contact.Entry{Phone: phone, Contact: c})
	ok, err = s.confirm("Are you sure you want to delete this contact? (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		s.println("Cancelled.")
		return nil
	}

	s.store.Remove(phone)
	s.logger.Info("contact deleted", zap.String("phone", phone))
	s.println("Contact deleted.")
	return nil
}

func (s *Session) exportAll() error {
	name, err := s.prompt(fmt.Sprintf("File name (without %s): ", s.exportFormat.Ext()))
	if err != nil {
		return err
	}
	if name == "" {
		return ErrEmptyName
	}

	path, err := export.Export(s.store, filepath.Join(s.exportDir, name), s.exportFormat)
	if err != nil {
		return err
	}
	s.logger.Info("exported contacts", zap.String("path", path), zap.Int("count", s.store.Len()))
	s.println(fmt.Sprintf("Exported %d contact(s) to %s", s.store.Len(), path))
	return nil
}

func (s *Session) renderMenu() {
	s.println("")
	s.println(s.title.Render("=== ADDRESS BOOK ==="))
	for i, e := range entries {
		s.println(fmt.Sprintf("%d. %s", i+1, e.label))
	}
	_, _ = fmt.Fprint(s.out, "Choose an option: ")
}

func (s *Session) prompt(label string) (string, error) {
	_, _ = fmt.Fprint(s.out, label)
	line, err := s.in.ReadLine()
	if err != nil {
		return "", &inputError{err: err}
	}
	return line, nil
}

// confirm asks a yes/no question answered by IsYes.
func (s *Session) confirm(label string) (bool, error) {
	answer, err := s.prompt(label)
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// IsYes reports whether answer confirms a prompt: "y" or "yes" in any case.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (s *Session) printEntry(e contact.Entry) {
	s.println("Phone: " + e.Phone)
	s.println(e.Contact.String())
	s.println(s.muted.Render("---------------------"))
}

func (s *Session) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}

// report prints a user-facing message for err. Nil is ignored.
func (s *Session) report(err error) {
	if err == nil {
		return
	}
	s.logger.Debug("operation failed", zap.Error(err))
	s.println(Message(err))
}

// Message maps an operation error to the text shown to the user.
func Message(err error) string {
	switch {
	case errors.Is(err, contact.ErrInvalidPhone):
		return "Invalid format. Must be 10 digits."
	case errors.Is(err, contact.ErrNotFound):
		return "Phone number not found in the address book."
	case errors.Is(err, query.ErrNoContacts):
		return "No contacts in the address book."
	case errors.Is(err, query.ErrInvalidPage):
		return "Invalid page."
	case errors.Is(err, query.ErrNoMatches):
		return "No matching contacts found."
	case errors.Is(err, query.ErrInvalidField), errors.Is(err, ErrInvalidChoice):
		return "Invalid option."
	case errors.Is(err, ErrEmptyName):
		return "File name cannot be empty."
	default:
		return "Error: " + err.Error()
	}
}

// inputError marks a failure of the input source, as opposed to an operation.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func isInputErr(err error) bool {
	var ie *inputError
	return errors.As(err, &ie)
}
