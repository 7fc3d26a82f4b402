package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/smileynet/agenda/internal/contact"
)

// SheetName is the worksheet that holds exported contacts.
const SheetName = "Contacts"

// ExportXLSX writes store to path as a single-sheet workbook with the same
// columns as the CSV export.
func ExportXLSX(store *contact.Store, path string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // nothing to flush after SaveAs

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: preparing sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export: writing header: %w", err)
	}

	row := 2
	for _, e := range store.Entries() {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("export: row %d: %w", row, err)
		}
		values := []any{e.Phone, e.Contact.Name, e.Contact.Email, e.Contact.Address, e.Contact.Notes}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("export: writing row %d: %w", row, err)
		}
		row++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: writing %s: %w", path, err)
	}
	return nil
}
