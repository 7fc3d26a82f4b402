// Package export writes the contact store to delimited text or spreadsheet files.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smileynet/agenda/internal/contact"
)

// Header is the column row written before any contact.
var Header = []string{"Phone", "Name", "Email", "Address", "Notes"}

// ErrUnknownFormat indicates an export format other than csv or xlsx.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format selects the export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a format name to a Format. An empty string selects CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Path returns base with the format's extension appended.
func Path(base string, f Format) string {
	return base + f.Ext()
}

// Export writes every contact in store to base plus the format extension,
// returning the path written. The store is only read.
func Export(store *contact.Store, base string, f Format) (string, error) {
	path := Path(base, f)
	switch f {
	case FormatCSV:
		return path, ExportCSV(store, path)
	case FormatXLSX:
		return path, ExportXLSX(store, path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// ExportCSV writes store to path as CSV.
func ExportCSV(store *contact.Store, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: creating %s: %w", path, err)
	}
	if err := WriteCSV(f, store.Entries()); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: writing %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the header row and one row per entry. Every field is
// wrapped in double quotes; quotes inside a field are written as-is, so
// values containing '"' do not survive a strict CSV reader.
func WriteCSV(w io.Writer, entries []contact.Entry) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, strings.Join(Header, ",")); err != nil {
		return err
	}
	for _, e := range entries {
		c := e.Contact
		if _, err := fmt.Fprintf(bw, "\"%s\",\"%s\",\"%s\",\"%s\",\"%s\"\n", e.Phone, c.Name, c.Email, c.Address, c.Notes); err != nil {
			return err
		}
	}
	return bw.Flush()
}
