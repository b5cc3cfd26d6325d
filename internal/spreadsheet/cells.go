package spreadsheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"01/02/06 15:04",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// maxNumericExponent bounds the decimal exponent of accepted cells. Larger
// exponents make every later sum rescale to enormous integers.
const maxNumericExponent = 18

var (
	// maxPay is the first value the numeric(12,2) pay columns cannot store.
	maxPay   = decimal.New(1, 10)
	minWhole = decimal.NewFromInt(math.MinInt64)
	maxWhole = decimal.NewFromInt(math.MaxInt64)
)

// cleanNumeric strips the decorations vendor exports put on money columns.
func cleanNumeric(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	return strings.TrimSpace(s)
}

func parseNumber(raw string) (decimal.Decimal, bool) {
	s := cleanNumeric(raw)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp < -maxNumericExponent || exp > maxNumericExponent {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDecimal reads a money cell exactly. ok is false for blank, non-numeric
// or out-of-range input.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	d, ok := parseNumber(raw)
	if !ok || d.Abs().GreaterThanOrEqual(maxPay) {
		return decimal.Zero, false
	}
	return d, true
}

// ParseWholeNumber reads a numeric cell and truncates it toward zero. Values
// outside the int64 range are rejected.
func ParseWholeNumber(raw string) (int64, bool) {
	if n, err := strconv.ParseInt(cleanNumeric(raw), 10, 64); err == nil {
		return n, true
	}
	d, ok := parseNumber(raw)
	if !ok {
		return 0, false
	}
	d = d.Truncate(0)
	if d.LessThan(minWhole) || d.GreaterThan(maxWhole) {
		return 0, false
	}
	return d.IntPart(), true
}

// ParseTime reads a date-time cell written either as text or as an Excel
// serial number.
func ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		parsed, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.Round(time.Second).UTC(), true
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
