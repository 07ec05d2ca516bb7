// Package export renders a ledger as CSV. Unlike the original export,
// fields are properly quoted, so descriptions containing commas survive
// a round trip through a spreadsheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"moneta/internal/core"
)

var header = []string{"Date", "Description", "Amount", "Type", "Category"}

// WriteCSV emits one header row and one data row per transaction, in
// the order given (most recent first, the display convention).
func WriteCSV(w io.Writer, records []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range records {
		row := []string{t.Date, t.Description, t.Amount.DecimalString(), string(t.Kind), t.Category}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
