// Package spreadsheet turns uploaded xlsx, xls and csv files into a header
// row plus string cells, and writes report workbooks back out.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Format is the container format of an uploaded file.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

const maxLegacyRows = 100000

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// DecodeError reports a file that could not be read as a spreadsheet.
type DecodeError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Filename, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Dataset is the first worksheet of a file: trimmed headers plus data rows,
// each padded or truncated to the header width.
type Dataset struct {
	Format  Format
	Headers []string
	Rows    [][]string
}

// DetectFormat picks the container format from the file name, falling back to
// the leading bytes when the extension is missing or unknown.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".csv", ".txt":
		return FormatCSV
	}
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	default:
		return FormatCSV
	}
}

// Decode reads the whole upload and returns its first worksheet.
func Decode(r io.Reader, filename string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Filename: filename, Reason: "read upload", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{Filename: filename, Reason: "file is empty"}
	}

	format := DetectFormat(filename, data)
	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	default:
		rows, err = readCSV(data)
	}
	if err == nil {
		err = checkEncoding(rows)
	}
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Filename = filename
			return nil, decodeErr
		}
		return nil, &DecodeError{Filename: filename, Reason: fmt.Sprintf("parse %s", format), Err: err}
	}

	ds := fromRows(rows)
	if len(ds.Headers) == 0 {
		return nil, &DecodeError{Filename: filename, Reason: "worksheet has no header row"}
	}
	ds.Format = format
	return ds, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, &DecodeError{Reason: "no worksheet found"}
	}
	// Raw values keep currency and date formatting out of numeric cells.
	return file.GetRows(sheetName, excelize.Options{RawCellValue: true})
}

func readXLS(data []byte) (rows [][]string, err error) {
	// The BIFF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed xls: %v", r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, &DecodeError{Reason: "no worksheet found"}
	}
	if workbook.NumSheets() > 1 {
		return nil, &DecodeError{Reason: "multiple worksheets found; upload a file with a single sheet"}
	}
	return workbook.ReadAllCells(maxLegacyRows), nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// checkEncoding rejects cells that are not UTF-8, which is what legacy
// Windows exports produce when saved as "CSV" instead of "CSV UTF-8".
func checkEncoding(rows [][]string) error {
	for i, row := range rows {
		for _, cell := range row {
			if !utf8.ValidString(cell) {
				return &DecodeError{Reason: fmt.Sprintf("line %d is not valid UTF-8; re-export the file with UTF-8 encoding", i+1)}
			}
		}
	}
	return nil
}

func fromRows(rows [][]string) *Dataset {
	ds := &Dataset{}
	headerAt := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return ds
	}

	header := rows[headerAt]
	width := len(header)
	for width > 0 && strings.TrimSpace(header[width-1]) == "" {
		width--
	}
	ds.Headers = make([]string, width)
	for i := 0; i < width; i++ {
		ds.Headers[i] = strings.TrimSpace(header[i])
	}

	for _, row := range rows[headerAt+1:] {
		if blankRow(row) {
			continue
		}
		cells := make([]string, width)
		copy(cells, row)
		ds.Rows = append(ds.Rows, cells)
	}
	return ds
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
