package ingestion

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	isoDate     = "2006-01-02"
	isoDateTime = "2006-01-02 15:04:05"
)

// isBuiltInDateFormat reports whether a built-in number format id renders a
// calendar date. Time-only and duration formats are not dates.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 17, id == 22:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		// East Asian locale date formats.
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code has a day or year
// token outside of quoted literals, bracketed sections and escapes.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	quoted, bracketed, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracketed = true
		case r == ']':
			bracketed = false
		case bracketed:
		default:
			b.WriteRune(r)
		}
	}
	section := strings.ToLower(b.String())
	return strings.ContainsAny(section, "dy")
}

// formatSerial renders an Excel serial date, dropping a midnight time.
func formatSerial(serial float64, date1904 bool) (string, bool) {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(isoDate), true
	}
	return t.Format(isoDateTime), true
}

// xlsxDates rewrites date-styled cells of an xlsx sheet to ISO text so the
// locale of the display format never reaches the timestamp parser.
type xlsxDates struct {
	file     *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newXLSXDates(file *excelize.File) *xlsxDates {
	d := &xlsxDates{file: file, styles: make(map[int]bool)}
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *xlsxDates) isDateStyle(id int) bool {
	if v, ok := d.styles[id]; ok {
		return v
	}
	v := false
	if style, err := d.file.GetStyle(id); err == nil {
		if style.CustomNumFmt != nil {
			v = isDateFormatCode(*style.CustomNumFmt)
		} else {
			v = isBuiltInDateFormat(style.NumFmt)
		}
	}
	d.styles[id] = v
	return v
}

// value returns the ISO form of cell when it holds a date-styled number.
func (d *xlsxDates) value(sheet, cell string) (string, bool) {
	id, err := d.file.GetCellStyle(sheet, cell)
	if err != nil || !d.isDateStyle(id) {
		return "", false
	}
	raw, err := d.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", false
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", false
	}
	return formatSerial(serial, d.date1904)
}
