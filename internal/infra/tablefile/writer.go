package tablefile

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/pgzip"
	"github.com/xuri/excelize/v2"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// WriteTable writes to a temp file in the target directory and renames it into place.
func (s *Store) WriteTable(path string, t domain.Table) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return writeErr(path, err)
	}

	tmp, err := os.CreateTemp(dir, ".kcatflux-table-*")
	if err != nil {
		return writeErr(path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if format.Excel {
		err = s.writeExcel(tmp, t)
	} else {
		err = writeDelimited(tmp, format, t)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return writeErr(path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return writeErr(path, err)
	}
	return nil
}

func writeDelimited(w io.Writer, format Format, t domain.Table) error {
	bw := bufio.NewWriter(w)
	var dst io.Writer = bw

	var zw *pgzip.Writer
	if format.Gzip {
		zw = pgzip.NewWriter(bw)
		dst = zw
	}

	cw := csv.NewWriter(dst)
	cw.Comma = format.Comma
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(padRow(row, len(t.Columns))); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (s *Store) writeExcel(w io.Writer, t domain.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Sheet1"
	if s.Sheet != "" && s.Sheet != sheet {
		if err := f.SetSheetName(sheet, s.Sheet); err != nil {
			return err
		}
		sheet = s.Sheet
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	write := func(r int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		return sw.SetRow(cell, values)
	}

	if err := write(1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := write(i+2, padRow(row, len(t.Columns))); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func writeErr(path string, err error) error {
	return &domain.OpError{
		Op:   "tablefile.write",
		Kind: domain.KindExecution,
		Path: path,
		Err:  fmt.Errorf("write table: %w", err),
	}
}
