package tablefile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/xuri/excelize/v2"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Store reads and writes domain tables as delimited text or XLSX files.
type Store struct {
	// Sheet is the XLSX sheet used for reading and writing; empty means the first sheet / "Sheet1".
	Sheet string
}

var (
	_ ports.TableReader = (*Store)(nil)
	_ ports.TableWriter = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{}
}

// ReadTable treats the first non-empty row as the header. Short rows are padded.
func (s *Store) ReadTable(path string) (domain.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return domain.Table{}, err
	}

	var records [][]string
	if format.Excel {
		records, err = s.readExcel(path)
	} else {
		records, err = readDelimited(path, format)
	}
	if err != nil {
		kind := domain.KindInvalidConfig
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return domain.Table{}, &domain.OpError{Op: "tablefile.read", Kind: kind, Path: path, Err: err}
	}

	t, err := normalize(records)
	if err != nil {
		return domain.Table{}, &domain.OpError{Op: "tablefile.read", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	return t, nil
}

func readDelimited(path string, format Format) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if format.Gzip {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	reader := bufio.NewReader(src)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	r := csv.NewReader(reader)
	r.Comma = format.Comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = format.Comma == '\t'

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited: %w", err)
	}
	return records, nil
}

func (s *Store) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("excel file has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func normalize(records [][]string) (domain.Table, error) {
	var t domain.Table
	for _, row := range records {
		if isBlank(row) {
			continue
		}
		if t.Columns == nil {
			t.Columns = headers(row)
			continue
		}
		t.Rows = append(t.Rows, padRow(row, len(t.Columns)))
	}
	if t.Columns == nil {
		return domain.Table{}, errors.New("no header row found")
	}
	if t.Rows == nil {
		t.Rows = [][]string{}
	}
	return t, nil
}

// headers trims names and fills blanks, e.g. an unnamed index column.
func headers(raw []string) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		name := strings.TrimSpace(v)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		out[i] = name
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func padRow(row []string, length int) []string {
	out := make([]string, length)
	copy(out, row)
	return out
}
