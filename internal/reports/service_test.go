package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/callpay-backend/internal/calllogs"
	"github.com/angelmondragon/callpay-backend/internal/interpreters"
	"github.com/angelmondragon/callpay-backend/internal/repo/repotest"
	"github.com/angelmondragon/callpay-backend/internal/spreadsheet"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
	"github.com/angelmondragon/callpay-backend/pkg/enums"
)

var defaultWindow = Window{
	StartHour: 7,
	EndHour:   19,
	DayRate:   decimal.RequireFromString("0.25"),
	NightRate: decimal.RequireFromString("0.37"),
}

func at(hour int) *time.Time {
	t := time.Date(2024, 3, 5, hour, 30, 0, 0, time.UTC)
	return &t
}

func minutes(v int64) *int64 { return &v }

func column(t *testing.T, ds *spreadsheet.Dataset, header string) int {
	t.Helper()
	for i, h := range ds.Headers {
		if h == header {
			return i
		}
	}
	t.Fatalf("header %q not in %v", header, ds.Headers)
	return -1
}

func TestWindowIsDay(t *testing.T) {
	assert.True(t, defaultWindow.IsDay(nil))
	assert.True(t, defaultWindow.IsDay(at(7)))
	assert.True(t, defaultWindow.IsDay(at(18)))
	assert.False(t, defaultWindow.IsDay(at(19)))
	assert.False(t, defaultWindow.IsDay(at(3)))
}

func TestSplitDayNight(t *testing.T) {
	roster := []models.Interpreter{{Name: "Jane Doe"}, {Name: "John Roe"}}
	logs := []models.CallLog{
		{InterpreterName: "Jane Doe", InterpreterCalltime: minutes(100), CallTime: at(9)},
		{InterpreterName: "Jane Doe", InterpreterCalltime: minutes(50), CallTime: at(21)},
		{InterpreterName: "Jane Doe", InterpreterCalltime: minutes(10)},
		{InterpreterName: "Jane Doe", CallTime: at(22)},
		{InterpreterName: "Ghost", InterpreterCalltime: minutes(999), CallTime: at(9)},
	}

	rows := SplitDayNight(roster, logs, defaultWindow)
	require.Len(t, rows, 2)

	jane := rows[0]
	assert.Equal(t, int64(110), jane.DayMinutes)
	assert.Equal(t, int64(50), jane.NightMinutes)
	assert.Equal(t, "27.50", jane.DayPay.StringFixed(2))
	assert.Equal(t, "18.50", jane.NightPay.StringFixed(2))
	assert.Equal(t, int64(160), jane.TotalMinutes())
	assert.Equal(t, "46.00", jane.TotalPay().StringFixed(2))

	john := rows[1]
	assert.Zero(t, john.TotalMinutes())
	assert.True(t, john.TotalPay().IsZero())
}

func TestInterpreterPayTableLeavesMissingTotalsBlank(t *testing.T) {
	table := InterpreterPayTable([]models.Interpreter{
		{Name: "Jane Doe", PaymentMethod: enums.PaymentMethodGusto, ServiceCenter: enums.ServiceCenterVIPOPI,
			TotalAmount: decimal.NullDecimal{Decimal: decimal.RequireFromString("19.75"), Valid: true}, TotalMinutes: minutes(150)},
		{Name: "John Roe"},
	})

	assert.Equal(t, []string{"Name", "Payment Method", "Service Center", "Total Amount", "Total Minutes"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{"Jane Doe", "Gusto", "VIP OPI Center", 19.75, int64(150)}, table.Rows[0])
	assert.Nil(t, table.Rows[1][3])
	assert.Nil(t, table.Rows[1][4])
}

func TestServiceRendersWorkbooks(t *testing.T) {
	conn := repotest.Open(t)
	roster := interpreters.NewRepository(conn)
	logs := calllogs.NewRepository(conn)
	ctx := context.Background()

	jane := &models.Interpreter{Name: "Jane Doe", PaymentMethod: enums.PaymentMethodGusto, ServiceCenter: enums.ServiceCenterWWISpanish}
	require.NoError(t, roster.Create(ctx, jane))
	_, err := logs.Upsert(ctx, []models.CallLog{
		{CallID: "C1", InterpreterName: "Jane Doe", InterpreterCalltime: minutes(100), CallTime: at(9),
			InterpreterPay: decimal.NullDecimal{Decimal: decimal.RequireFromString("12.50"), Valid: true}},
		{CallID: "C2", InterpreterName: "Jane Doe", InterpreterCalltime: minutes(50), CallTime: at(21)},
	}, []string{"interpreter_name", "interpreter_pay", "interpreter_calltime", "call_time"})
	require.NoError(t, err)

	svc, err := NewService(roster, logs, defaultWindow, nil)
	require.NoError(t, err)

	file, err := svc.DayNight(ctx, []uuid.UUID{jane.ID})
	require.NoError(t, err)
	assert.Equal(t, DayNightFilename, file.Filename)
	assert.Equal(t, ContentTypeXLSX, file.ContentType)

	ds, err := spreadsheet.Decode(bytes.NewReader(file.Content), file.Filename)
	require.NoError(t, err)
	assert.Equal(t, dayNightHeaders, ds.Headers)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, []string{"Jane Doe", "100", "25", "50", "18.5", "150", "43.5"}, ds.Rows[0])

	file, err = svc.CallLogs(ctx, nil)
	require.NoError(t, err)
	ds, err = spreadsheet.Decode(bytes.NewReader(file.Content), file.Filename)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "C1", ds.Rows[0][column(t, ds, "Call Id")])
	assert.Equal(t, "2024-03-05 21:30:00", ds.Rows[1][column(t, ds, "Call Time")])

	file, err = svc.InterpretersPay(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, InterpretersPayFilename, file.Filename)
	ds, err = spreadsheet.Decode(bytes.NewReader(file.Content), file.Filename)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "Jane Doe", ds.Rows[0][0])
}

func TestNewServiceRejectsInvertedWindow(t *testing.T) {
	conn := repotest.Open(t)
	_, err := NewService(interpreters.NewRepository(conn), calllogs.NewRepository(conn), Window{StartHour: 19, EndHour: 7}, nil)
	assert.Error(t, err)
}
