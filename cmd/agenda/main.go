package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/agenda/internal/browse"
	"github.com/smileynet/agenda/internal/config"
	"github.com/smileynet/agenda/internal/contact"
	"github.com/smileynet/agenda/internal/export"
	"github.com/smileynet/agenda/internal/logging"
	"github.com/smileynet/agenda/internal/menu"
	"github.com/smileynet/agenda/internal/query"
	"github.com/smileynet/agenda/internal/storage"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals holds flags shared by every command.
type Globals struct {
	Config   string `help:"Extra config file layered over user and project config." placeholder:"PATH"`
	DataFile string `help:"Contacts data file (overrides storage.data_file)." placeholder:"PATH"`
	LogFile  string `help:"Write JSON logs to this file (overrides log.file)." placeholder:"PATH"`
	Verbose  bool   `help:"Log at debug level." short:"v"`
}

// CLI is the top-level command structure for agenda.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Menu    MenuCmd          `cmd:"" default:"1" help:"Open the interactive menu (default)."`
	List    ListCmd          `cmd:"" help:"List one page of contacts."`
	Show    ShowCmd          `cmd:"" help:"Show one contact."`
	Add     AddCmd           `cmd:"" help:"Add or update a contact."`
	Search  SearchCmd        `cmd:"" help:"Search contacts by name, phone or email."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact."`
	Export  ExportCmd        `cmd:"" help:"Export all contacts to CSV or XLSX."`
	Browse  BrowseCmd        `cmd:"" help:"Browse contacts in a full-screen view."`
}

// setupError marks failures that happen before any contact operation runs.
type setupError struct {
	err error
}

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

// app bundles the resolved configuration and the services built from it.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	files  *storage.FileStore
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
		files:  storage.NewFileStore(cfg.Storage.DataFile, logger),
	}
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig(extra string) (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/agenda/config.yaml"),
		".agenda/config.yaml",
	}
	if extra != "" {
		paths = append(paths, extra)
	}
	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open resolves configuration and builds the app for a command.
func (g *Globals) open() (*app, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, &setupError{err}
	}
	if g.DataFile != "" {
		cfg.Storage.DataFile = g.DataFile
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, &setupError{err}
	}
	logger, err := logging.New(cfg.Log, g.Verbose)
	if err != nil {
		return nil, &setupError{err}
	}
	return newApp(cfg, logger), nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// loadLenient loads the store, printing a warning on failure and carrying on
// with the empty store Load returns.
func (a *app) loadLenient(w io.Writer) *contact.Store {
	store, err := a.files.Load()
	if err != nil {
		_, _ = fmt.Fprintf(w, "warning: could not load contacts, starting empty: %v\n", err)
	}
	return store
}

// loadStrict loads the store for commands that save afterwards, so a
// damaged data file is never overwritten by an empty snapshot.
func (a *app) loadStrict() (*contact.Store, error) {
	store, err := a.files.Load()
	if err != nil {
		return nil, fmt.Errorf("%w (fix or move %s first)", err, a.files.Path())
	}
	return store, nil
}

// --- Menu command ---

// MenuCmd runs the interactive numbered menu.
type MenuCmd struct{}

// Run executes the menu command on the terminal.
func (c *MenuCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.run(ctx, os.Stdout, menu.NewLineInput(os.Stdin), a)
}

// run executes the menu with injected input and output, enabling testable wiring.
func (c *MenuCmd) run(ctx context.Context, w io.Writer, in menu.Input, a *app) error {
	store, err := a.files.Load()
	switch {
	case err != nil:
		_, _ = fmt.Fprintf(w, "Error loading contacts: %v\n", err)
		_, _ = fmt.Fprintln(w, "Starting with an empty address book.")
	case store.Len() == 0:
		_, _ = fmt.Fprintf(w, "No contacts found in %s; a new file will be created on save.\n", a.files.Path())
	default:
		_, _ = fmt.Fprintf(w, "Loaded %d contact(s).\n", store.Len())
	}

	format, err := export.ParseFormat(a.cfg.Export.Format)
	if err != nil {
		return &setupError{err}
	}

	session := menu.NewSession(store, a.files, in, w,
		menu.WithPageSize(a.cfg.Display.PageSize),
		menu.WithExport(a.cfg.Export.Dir, format),
		menu.WithLogger(a.logger),
	)
	return session.Run(ctx)
}

// --- List command ---

// ListCmd prints one page of contacts sorted by phone.
type ListCmd struct {
	Page     int `help:"Page number." default:"1"`
	PageSize int `help:"Contacts per page (default from config)."`
}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()
	return c.run(os.Stdout, a)
}

func (c *ListCmd) run(w io.Writer, a *app) error {
	store := a.loadLenient(w)
	size := c.PageSize
	if size == 0 {
		size = a.cfg.Display.PageSize
	}

	p, err := query.ListPage(store, c.Page, size)
	if errors.Is(err, query.ErrNoContacts) {
		_, _ = fmt.Fprintln(w, menu.Message(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	_, _ = fmt.Fprintf(w, "=== CONTACTS (page %d of %d) ===\n", p.Number, p.TotalPages)
	for _, e := range p.Entries {
		printEntry(w, e)
	}
	return nil
}

// --- Show command ---

// ShowCmd prints the contact stored under one phone number.
type ShowCmd struct {
	Phone string `arg:"" help:"10-digit phone number."`
}

// Run executes the show command.
func (c *ShowCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()
	return c.run(os.Stdout, a)
}

func (c *ShowCmd) run(w io.Writer, a *app) error {
	if err := contact.ValidatePhone(c.Phone); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	store := a.loadLenient(w)
	ct, ok := store.Get(c.Phone)
	if !ok {
		return fmt.Errorf("show: %w: %s", contact.ErrNotFound, c.Phone)
	}
	printEntry(w, contact.Entry{Phone: c.Phone, Contact: ct})
	return nil
}

// --- Add command ---

// AddCmd creates a contact, or replaces the one stored under the same phone.
type AddCmd struct {
	Phone   string `arg:"" help:"10-digit phone number."`
	Name    string `help:"Full name."`
	Email   string `help:"Email address."`
	Address string `help:"Postal address."`
	Notes   string `help:"Free-text notes."`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()
	return c.run(os.Stdout, a)
}

func (c *AddCmd) run(w io.Writer, a *app) error {
	if err := contact.ValidatePhone(c.Phone); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	store, err := a.loadStrict()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	updated := store.Upsert(c.Phone, contact.Contact{
		Name:    c.Name,
		Email:   c.Email,
		Address: c.Address,
		Notes:   c.Notes,
	})
	if err := a.files.Save(store); err != nil {
		return fmt.Errorf("add: %w", err)
	}

	if updated {
		_, _ = fmt.Fprintf(w, "Updated %s\n", c.Phone)
	} else {
		_, _ = fmt.Fprintf(w, "Added %s\n", c.Phone)
	}
	return nil
}

// --- Search command ---

// SearchCmd prints contacts whose field contains a term, ignoring case.
type SearchCmd struct {
	Field string `arg:"" enum:"name,phone,email" help:"Field to match: name, phone or email."`
	Term  string `arg:"" help:"Substring to look for."`
}

// Run executes the search command.
func (c *SearchCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()
	return c.run(os.Stdout, a)
}

func (c *SearchCmd) run(w io.Writer, a *app) error {
	field, err := query.ParseField(c.Field)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	store := a.loadLenient(w)

	matches, err := query.Search(store, field, c.Term)
	if errors.Is(err, query.ErrNoContacts) || errors.Is(err, query.ErrNoMatches) {
		_, _ = fmt.Fprintln(w, menu.Message(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	for _, e := range matches {
		printEntry(w, e)
	}
	return nil
}

// --- Delete command ---

// DeleteCmd removes a contact after confirmation.
type DeleteCmd struct {
	Phone string `arg:"" help:"10-digit phone number."`
	Yes   bool   `help:"Skip the confirmation prompt." short:"y"`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()
	return c.run(os.Stdout, menu.NewLineInput(os.Stdin), a)
}

func (c *DeleteCmd) run(w io.Writer, in menu.Input, a *app) error {
	store, err := a.loadStrict()
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	ct, ok := store.Get(c.Phone)
	if !ok {
		return fmt.Errorf("delete: %w: %s", contact.ErrNotFound, c.Phone)
	}

	if !c.Yes {
		printEntry(w, contact.Entry{Phone: c.Phone, Contact: ct})
		_, _ = fmt.Fprint(w, "Delete this contact? (y/n): ")
		answer, err := in.ReadLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("delete: reading confirmation: %w", err)
		}
		if !menu.IsYes(answer) {
			_, _ = fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	store.Remove(c.Phone)
	if err := a.files.Save(store); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Deleted %s\n", c.Phone)
	return nil
}

// --- Export command ---

// ExportCmd writes every contact to NAME.csv or NAME.xlsx.
type ExportCmd struct {
	Name   string `arg:"" help:"Output file name without extension."`
	Format string `help:"Output format: csv or xlsx (default from config)." short:"f"`
}

// Run executes the export command.
func (c *ExportCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()
	return c.run(os.Stdout, a)
}

func (c *ExportCmd) run(w io.Writer, a *app) error {
	name := c.Format
	if name == "" {
		name = a.cfg.Export.Format
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	store := a.loadLenient(w)
	path, err := export.Export(store, filepath.Join(a.cfg.Export.Dir, c.Name), format)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Exported %d contact(s) to %s\n", store.Len(), path)
	return nil
}

// --- Browse command ---

// BrowseCmd opens the full-screen contact browser.
type BrowseCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run loads the store and launches the browser TUI.
func (c *BrowseCmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}

	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.close()

	store := a.loadLenient(os.Stderr)
	prog := tea.NewProgram(browse.NewModel(store, a.cfg.Display.PageSize), tea.WithAltScreen())
	return c.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (c *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// printEntry writes one contact in the labelled multi-line layout.
func printEntry(w io.Writer, e contact.Entry) {
	_, _ = fmt.Fprintf(w, "Phone: %s\n%s\n---------------------\n", e.Phone, e.Contact)
}

// Exit codes.
const (
	exitSuccess   = 0
	exitOperation = 1
	exitSetup     = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *setupError
	if errors.As(err, &se) {
		return exitSetup
	}
	return exitOperation
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("agenda"),
		kong.Description("A phone-indexed address book."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
