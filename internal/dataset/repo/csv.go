package repo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// DecodeCSV reads a headed CSV export of table into d. Columns are matched by
// name, case-insensitively, in any order.
func DecodeCSV(table string, r io.Reader, d *Decoder) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: empty file", table)
	}
	if err != nil {
		return fmt.Errorf("%s: read header: %w", table, err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if err := CheckColumns(table, func(c string) bool { _, ok := idx[c]; return ok }); err != nil {
		return err
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: line %d: %w", table, line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		if err := d.Add(table, get); err != nil {
			return err
		}
	}
}

// opener returns the CSV export of one table.
type opener func(ctx context.Context, table string) (io.ReadCloser, error)

// loadCSVTables decodes every table through open.
func loadCSVTables(ctx context.Context, open opener) (*entity.Tables, error) {
	d := NewDecoder()
	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc, err := open(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", table, err)
		}
		err = DecodeCSV(table, rc, d)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}
	return d.Tables(), nil
}
