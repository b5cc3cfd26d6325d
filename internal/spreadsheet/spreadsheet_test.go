package spreadsheet

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSVStripsBOMAndPadsRows(t *testing.T) {
	input := "\xEF\xBB\xBFInterpreter Name , Interpreter Pay,CallId\nJane Doe,12.50\n\n,,\nJohn Roe,3.00,C2,extra\n"

	ds, err := Decode(strings.NewReader(input), "calls.csv")
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, ds.Format)
	assert.Equal(t, []string{"Interpreter Name", "Interpreter Pay", "CallId"}, ds.Headers)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, []string{"Jane Doe", "12.50", ""}, ds.Rows[0])
	assert.Equal(t, []string{"John Roe", "3.00", "C2"}, ds.Rows[1])
}

func TestDecodeXLSXReadsRawValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Table{
		Sheet:   "Calls",
		Headers: []string{"Interpreter Name", "Interpreter Pay", "Interpreter Calltime"},
		Rows: [][]any{
			{"Jane Doe", 12.5, 100},
			{"John Roe", 7.25, nil},
		},
	}))

	ds, err := Decode(bytes.NewReader(buf.Bytes()), "export.xlsx")
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, ds.Format)
	assert.Equal(t, []string{"Interpreter Name", "Interpreter Pay", "Interpreter Calltime"}, ds.Headers)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "Jane Doe", ds.Rows[0][0])
	assert.Equal(t, "12.5", ds.Rows[0][1])
	assert.Equal(t, "100", ds.Rows[0][2])
	assert.Equal(t, "", ds.Rows[1][2])
}

func TestDecodeSniffsFormatWithoutExtension(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Table{Headers: []string{"Name"}, Rows: [][]any{{"Jane Doe"}}}))

	ds, err := Decode(bytes.NewReader(buf.Bytes()), "upload")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, ds.Format)
	assert.Equal(t, []string{"Name"}, ds.Headers)
}

func TestDecodeErrors(t *testing.T) {
	var decodeErr *DecodeError

	_, err := Decode(strings.NewReader("   \n"), "empty.csv")
	require.Error(t, err)
	assert.ErrorAs(t, err, &decodeErr)

	_, err = Decode(strings.NewReader("not a workbook"), "broken.xlsx")
	require.Error(t, err)
	assert.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, err.Error(), "broken.xlsx")

	_, err = Decode(strings.NewReader("not a workbook"), "broken.xls")
	require.Error(t, err)
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeRejectsNonUTF8CSV(t *testing.T) {
	// Windows-1252 bytes for "José Pérez".
	input := "CallId,Interpreter Name,Interpreter Pay,Interpreter Calltime\nC1,Jos\xe9 P\xe9rez,1.00,10\n"

	ds, err := Decode(strings.NewReader(input), "calls.csv")
	require.Error(t, err)
	assert.Nil(t, ds)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "calls.csv", decodeErr.Filename)
	assert.Contains(t, decodeErr.Reason, "line 2")
	assert.Contains(t, decodeErr.Reason, "UTF-8")

	ds, err = Decode(strings.NewReader("Interpreter Name\nJosé Pérez\n"), "calls.csv")
	require.NoError(t, err)
	assert.Equal(t, "José Pérez", ds.Rows[0][0])
}

func TestWriteXLSXUsesSheetName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Table{
		Sheet:   "Interpreters",
		Headers: []string{"Name", "Total Amount"},
		Rows:    [][]any{{"Jane Doe", 19.75}},
	}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Interpreters", f.GetSheetName(0))
	value, err := f.GetCellValue("Interpreters", "B2")
	require.NoError(t, err)
	assert.Equal(t, "19.75", value)
}

func TestParseDecimal(t *testing.T) {
	cases := map[string]string{
		"12.50":     "12.5",
		" $1,234.5": "1234.5",
		"(3.25)":    "-3.25",
		"0":         "0",
	}
	for raw, want := range cases {
		got, ok := ParseDecimal(raw)
		require.Truef(t, ok, "expected %q to parse", raw)
		assert.Equal(t, want, got.String())
	}

	for _, raw := range []string{"", "  ", "n/a", "12.5.1"} {
		_, ok := ParseDecimal(raw)
		assert.Falsef(t, ok, "expected %q to be rejected", raw)
	}
}

func TestParseDecimalRejectsOutOfRange(t *testing.T) {
	got, ok := ParseDecimal("9999999999.99")
	require.True(t, ok)
	assert.Equal(t, "9999999999.99", got.String())

	got, ok = ParseDecimal("1.5e2")
	require.True(t, ok)
	assert.Equal(t, "150", got.String())

	for _, raw := range []string{"1e-50000000", "1e-2000000000", "1e30", "10000000000", "-10000000000", "1e19"} {
		_, ok := ParseDecimal(raw)
		assert.Falsef(t, ok, "expected %q to be rejected", raw)
	}
}

func TestParseWholeNumber(t *testing.T) {
	n, ok := ParseWholeNumber("100")
	require.True(t, ok)
	assert.Equal(t, int64(100), n)

	n, ok = ParseWholeNumber("59.9")
	require.True(t, ok)
	assert.Equal(t, int64(59), n)

	n, ok = ParseWholeNumber("-2.7")
	require.True(t, ok)
	assert.Equal(t, int64(-2), n)

	_, ok = ParseWholeNumber("abc")
	assert.False(t, ok)

	n, ok = ParseWholeNumber("9223372036854775807")
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), n)

	for _, raw := range []string{"1e30", "99999999999999999999", "-1e19", "9223372036854775808", "1e-2000000000"} {
		_, ok := ParseWholeNumber(raw)
		assert.Falsef(t, ok, "expected %q to be rejected", raw)
	}
}

func TestParseTime(t *testing.T) {
	got, ok := ParseTime("2024-03-05 21:15:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 21, 15, 0, 0, time.UTC), got)

	got, ok = ParseTime("3/5/2024 9:15 PM")
	require.True(t, ok)
	assert.Equal(t, 21, got.Hour())

	// 45356.5 is 2024-03-05 12:00 in the 1900 date system.
	got, ok = ParseTime("45356.5")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), got)

	_, ok = ParseTime("yesterday")
	assert.False(t, ok)
	_, ok = ParseTime("")
	assert.False(t, ok)
}
