// Package aggregate coerces normalized call rows and sums pay and call time
// per interpreter name.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/callpay-backend/internal/normalize"
	"github.com/angelmondragon/callpay-backend/internal/schema"
	"github.com/angelmondragon/callpay-backend/internal/spreadsheet"
)

// NumericCoercionWarning records a cell that could not be read as a number
// (or time) and was treated as missing.
type NumericCoercionWarning struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Record is one coerced call row. Missing values are invalid/nil.
type Record struct {
	Row             int
	CallID          string
	InterpreterName string
	Pay             decimal.NullDecimal
	Calltime        *int64
	CustomerName    string
	CallTime        *time.Time
}

// InterpreterTotal is the per-name sum. Missing cells contribute zero.
type InterpreterTotal struct {
	Name     string
	Pay      decimal.Decimal
	Calltime int64
	Calls    int
}

// Result is the aggregation output. Totals are ordered by descending pay,
// then name.
type Result struct {
	Totals   []InterpreterTotal
	Records  []Record
	Warnings []NumericCoercionWarning

	index map[string]int
}

// Lookup returns the totals for an exact interpreter name.
func (r *Result) Lookup(name string) (InterpreterTotal, bool) {
	if r == nil {
		return InterpreterTotal{}, false
	}
	i, ok := r.index[name]
	if !ok {
		return InterpreterTotal{}, false
	}
	return r.Totals[i], true
}

// PayTotal sums pay across every group.
func (r *Result) PayTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range r.Totals {
		sum = sum.Add(t.Pay)
	}
	return sum
}

// Aggregate coerces every row of ds and groups by interpreter name.
func Aggregate(ds *normalize.Dataset) *Result {
	res := &Result{index: map[string]int{}}
	if ds == nil {
		return res
	}

	header := func(f schema.Field) string {
		if i := ds.Index(f); i >= 0 {
			return ds.Headers[i]
		}
		return string(f)
	}

	for i, row := range ds.Rows {
		cells := ds.Canonicalize(row)
		// Row numbers are 1-based data rows; the header is not counted.
		rec := Record{
			Row:             i + 1,
			CallID:          cells[schema.FieldCallID],
			InterpreterName: cells[schema.FieldInterpreterName],
			CustomerName:    cells[schema.FieldCustomerName],
		}

		rawPay := cells[schema.FieldInterpreterPay]
		if pay, ok := spreadsheet.ParseDecimal(rawPay); ok {
			rec.Pay = decimal.NullDecimal{Decimal: pay, Valid: true}
		} else {
			res.Warnings = append(res.Warnings, NumericCoercionWarning{Row: rec.Row, Column: header(schema.FieldInterpreterPay), Value: rawPay})
		}

		rawCalltime := cells[schema.FieldInterpreterCalltime]
		if n, ok := spreadsheet.ParseWholeNumber(rawCalltime); ok {
			rec.Calltime = &n
		} else {
			res.Warnings = append(res.Warnings, NumericCoercionWarning{Row: rec.Row, Column: header(schema.FieldInterpreterCalltime), Value: rawCalltime})
		}

		if rawTime, kept := cells[schema.FieldCallTime]; kept {
			if ts, ok := spreadsheet.ParseTime(rawTime); ok {
				rec.CallTime = &ts
			} else if rawTime != "" {
				res.Warnings = append(res.Warnings, NumericCoercionWarning{Row: rec.Row, Column: header(schema.FieldCallTime), Value: rawTime})
			}
		}

		res.Records = append(res.Records, rec)
		res.add(rec)
	}

	res.sort()
	return res
}

func (r *Result) add(rec Record) {
	i, ok := r.index[rec.InterpreterName]
	if !ok {
		r.Totals = append(r.Totals, InterpreterTotal{Name: rec.InterpreterName, Pay: decimal.Zero})
		i = len(r.Totals) - 1
		r.index[rec.InterpreterName] = i
	}
	t := &r.Totals[i]
	t.Calls++
	if rec.Pay.Valid {
		t.Pay = t.Pay.Add(rec.Pay.Decimal)
	}
	if rec.Calltime != nil {
		t.Calltime = AddCalltime(t.Calltime, *rec.Calltime)
	}
}

// AddCalltime adds two call-time sums, clamping at the int64 bounds instead
// of wrapping.
func AddCalltime(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

func (r *Result) sort() {
	sort.SliceStable(r.Totals, func(i, j int) bool {
		if c := r.Totals[i].Pay.Cmp(r.Totals[j].Pay); c != 0 {
			return c > 0
		}
		return r.Totals[i].Name < r.Totals[j].Name
	})
	for i, t := range r.Totals {
		r.index[t.Name] = i
	}
}
