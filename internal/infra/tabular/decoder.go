package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrParse       = errors.New("failed to parse file")
	ErrTooManyRows = errors.New("too many rows")
)

const DefaultMaxRows = 10000

// Row maps header names to cell values.
type Row = map[string]any

type Decoder struct {
	MaxRows int
}

func NewDecoder(maxRows int) *Decoder {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Decoder{MaxRows: maxRows}
}

var zipMagic = []byte("PK\x03\x04")

// Decode reads a spreadsheet upload. Excel extensions are opened by content:
// zip containers go through excelize, anything else through the BIFF reader.
// Every other extension is read as CSV. The first row is always the header.
func (d *Decoder) Decode(filename string, r io.Reader) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		records, err = readExcel(r)
	default:
		records, err = readCSV(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return d.toRows(records)
}

func readExcel(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, zipMagic) {
		return readWorkbook(bytes.NewReader(data))
	}
	return readLegacyWorkbook(bytes.NewReader(data))
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// readLegacyWorkbook reads the first sheet of a BIFF (.xls) workbook.
// The reader panics on some truncated files, so panics become errors.
func readLegacyWorkbook(r io.ReadSeeker) (records [][]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			records, err = nil, fmt.Errorf("malformed xls workbook: %v", p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		records = append(records, cells)
	}
	return records, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	return cr.ReadAll()
}

func (d *Decoder) toRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		if d.MaxRows > 0 && len(rows) >= d.MaxRows {
			return nil, fmt.Errorf("%w: %w (limit %d)", ErrParse, ErrTooManyRows, d.MaxRows)
		}
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
