package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/callpay-backend/internal/spreadsheet"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
)

const callTimeLayout = "2006-01-02 15:04:05"

var (
	interpreterPayHeaders = []string{"Name", "Payment Method", "Service Center", "Total Amount", "Total Minutes"}
	callLogHeaders        = []string{"Interpreter Name", "Language", "Interpreter Pay", "Interpreter Calltime", "Call Time", "Call Id", "Service Center"}
	dayNightHeaders       = []string{"Interpreter Name", "Day Minutes", "Day Pay", "Night Minutes", "Night Pay", "Total Minutes", "Total Pay"}
)

// Window is the clock-hour range [StartHour, EndHour) billed at the day rate.
// Everything else is night.
type Window struct {
	StartHour int
	EndHour   int
	DayRate   decimal.Decimal
	NightRate decimal.Decimal
}

// IsDay reports whether a call placed at t bills at the day rate. Calls with
// no recorded time count as day calls.
func (w Window) IsDay(t *time.Time) bool {
	if t == nil {
		return true
	}
	hour := t.UTC().Hour()
	return hour >= w.StartHour && hour < w.EndHour
}

// DayNightRow is one interpreter's split.
type DayNightRow struct {
	Name         string
	DayMinutes   int64
	DayPay       decimal.Decimal
	NightMinutes int64
	NightPay     decimal.Decimal
}

// TotalMinutes is day plus night minutes.
func (r DayNightRow) TotalMinutes() int64 { return r.DayMinutes + r.NightMinutes }

// TotalPay is day plus night pay.
func (r DayNightRow) TotalPay() decimal.Decimal { return r.DayPay.Add(r.NightPay) }

// InterpreterPayTable projects roster rows in the order given.
func InterpreterPayTable(rows []models.Interpreter) spreadsheet.Table {
	table := spreadsheet.Table{Sheet: "Interpreters", Headers: interpreterPayHeaders}
	for _, row := range rows {
		var amount any
		if row.TotalAmount.Valid {
			amount = money(row.TotalAmount.Decimal)
		}
		table.Rows = append(table.Rows, []any{
			row.Name,
			string(row.PaymentMethod),
			string(row.ServiceCenter),
			amount,
			optionalInt(row.TotalMinutes),
		})
	}
	return table
}

// CallLogTable projects call logs in the order given.
func CallLogTable(logs []models.CallLog) spreadsheet.Table {
	table := spreadsheet.Table{Sheet: "Calls", Headers: callLogHeaders}
	for _, log := range logs {
		var pay, callTime any
		if log.InterpreterPay.Valid {
			pay = money(log.InterpreterPay.Decimal)
		}
		if log.CallTime != nil {
			callTime = log.CallTime.UTC().Format(callTimeLayout)
		}
		table.Rows = append(table.Rows, []any{
			log.InterpreterName,
			log.Language,
			pay,
			optionalInt(log.InterpreterCalltime),
			callTime,
			log.CallID,
			log.ServiceCenter,
		})
	}
	return table
}

// SplitDayNight buckets each interpreter's calls by the hour they were placed.
// Rows follow roster order; interpreters with no calls get zero rows.
func SplitDayNight(roster []models.Interpreter, logs []models.CallLog, window Window) []DayNightRow {
	out := make([]DayNightRow, len(roster))
	index := make(map[string]int, len(roster))
	for i, interpreter := range roster {
		out[i] = DayNightRow{Name: interpreter.Name, DayPay: decimal.Zero, NightPay: decimal.Zero}
		index[interpreter.Name] = i
	}

	for _, log := range logs {
		i, ok := index[log.InterpreterName]
		if !ok || log.InterpreterCalltime == nil {
			continue
		}
		if window.IsDay(log.CallTime) {
			out[i].DayMinutes += *log.InterpreterCalltime
		} else {
			out[i].NightMinutes += *log.InterpreterCalltime
		}
	}

	for i := range out {
		out[i].DayPay = window.DayRate.Mul(decimal.NewFromInt(out[i].DayMinutes)).Round(2)
		out[i].NightPay = window.NightRate.Mul(decimal.NewFromInt(out[i].NightMinutes)).Round(2)
	}
	return out
}

// DayNightTable renders a day/night split.
func DayNightTable(rows []DayNightRow) spreadsheet.Table {
	table := spreadsheet.Table{Sheet: "Day Night", Headers: dayNightHeaders}
	for _, row := range rows {
		table.Rows = append(table.Rows, []any{
			row.Name,
			row.DayMinutes,
			money(row.DayPay),
			row.NightMinutes,
			money(row.NightPay),
			row.TotalMinutes(),
			money(row.TotalPay()),
		})
	}
	return table
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func optionalInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
