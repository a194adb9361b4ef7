package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"

	"settlement-ingest-backend/internal/services/normalization"
)

const defaultCSVChunkSize = 50000

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidExtension  = errors.New("invalid file extension")
)

// Format is the declared encoding of an uploaded file.
type Format string

const (
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

// FormatFromFileName derives the declared format from a file's extension.
func FormatFromFileName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return FormatExcel, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidExtension, name)
}

// File is one uploaded file held in memory until its submission runs.
type File struct {
	Name    string
	Content []byte
	Format  Format
}

// Decoder turns file bytes into chunks of rows keyed by raw header.
type Decoder struct {
	chunkSize int
}

func NewDecoder(csvChunkSize int) *Decoder {
	if csvChunkSize <= 0 {
		csvChunkSize = defaultCSVChunkSize
	}
	return &Decoder{chunkSize: csvChunkSize}
}

// Decode calls emit for every chunk of f in order. CSV input is split into
// chunks of at most chunkSize rows; a spreadsheet is one chunk. A file with a
// header row and no data emits nothing.
func (d *Decoder) Decode(f File, emit func(normalization.Chunk) error) error {
	switch f.Format {
	case FormatCSV:
		return d.decodeCSV(f, emit)
	case FormatExcel:
		rows, err := readSpreadsheet(f)
		if err != nil {
			return err
		}
		return emitTable(f.Name, rows, emit)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f.Format)
}

func (d *Decoder) decodeCSV(f File, emit func(normalization.Chunk) error) error {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(f.Content, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}

	index := 0
	rows := make([]normalization.Row, 0, min(d.chunkSize, 1024))
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		chunk := normalization.Chunk{FileName: f.Name, Index: index, Headers: headers, Rows: rows}
		index++
		rows = make([]normalization.Row, 0, min(d.chunkSize, 1024))
		return emit(chunk)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv line: %w", err)
		}
		if blank(record) {
			continue
		}
		rows = append(rows, toRow(headers, record))
		if len(rows) == d.chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func readSpreadsheet(f File) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".xlsx":
		return readXLSX(f.Content)
	case ".xls":
		return readXLS(f.Content)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidExtension, f.Name)
}

func readXLSX(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	rows, err := xl.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}

	dates := newXLSXDates(xl)
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("read xlsx rows: %w", err)
			}
			if iso, ok := dates.value(sheet, cell); ok {
				row[c] = iso
			}
		}
	}
	return rows, nil
}

// readXLS panics on some malformed workbooks; that is returned as an error.
func readXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("open xls: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("open xls: no sheets found")
	}

	for _, xr := range sheet.GetRows() {
		var row []string
		for _, col := range xr.GetCols() {
			row = append(row, xlsCellText(&book, col))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// xlsCellText renders date-formatted numeric cells in ISO form and every other
// cell as xlsReader reads it.
func xlsCellText(book *xls.Workbook, cell structure.CellData) string {
	switch cell.GetType() {
	case "*record.Number", "*record.Rk":
	default:
		return cell.GetString()
	}
	xf := book.GetXFbyIndex(cell.GetXFIndex())
	id := xf.GetFormatIndex()
	isDate := isBuiltInDateFormat(id)
	if id >= 164 {
		format := book.GetFormatByIndex(id)
		isDate = isDateFormatCode(format.String())
	}
	if !isDate {
		return cell.GetString()
	}
	if iso, ok := formatSerial(cell.GetFloat64(), false); ok {
		return iso
	}
	return cell.GetString()
}

func emitTable(name string, table [][]string, emit func(normalization.Chunk) error) error {
	if len(table) == 0 {
		return nil
	}
	headers := table[0]
	rows := make([]normalization.Row, 0, len(table)-1)
	for _, record := range table[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, toRow(headers, record))
	}
	if len(rows) == 0 {
		return nil
	}
	return emit(normalization.Chunk{FileName: name, Headers: headers, Rows: rows})
}

// toRow keys a record by header. Missing and empty cells are null; cells
// beyond the header row are dropped.
func toRow(headers, record []string) normalization.Row {
	row := make(normalization.Row, len(headers))
	for i, h := range headers {
		if i >= len(record) || record[i] == "" {
			row[h] = nil
			continue
		}
		v := record[i]
		row[h] = &v
	}
	return row
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
