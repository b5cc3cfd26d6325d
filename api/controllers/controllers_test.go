package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/callpay-backend/internal/calllogs"
	"github.com/angelmondragon/callpay-backend/internal/imports"
	"github.com/angelmondragon/callpay-backend/internal/interpreters"
	"github.com/angelmondragon/callpay-backend/internal/reports"
	"github.com/angelmondragon/callpay-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
	"github.com/angelmondragon/callpay-backend/pkg/types"
)

type stubImports struct {
	err      error
	filename string
	content  string
}

func (s *stubImports) ImportCallLogs(_ context.Context, upload imports.Upload) (*imports.CallLogReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	data, _ := io.ReadAll(upload.Content)
	s.filename, s.content = upload.Filename, string(data)
	return &imports.CallLogReport{Filename: upload.Filename, RowsUpserted: 1, InterpretersMatched: 1}, nil
}

func (s *stubImports) ImportRoster(_ context.Context, upload imports.Upload) (*imports.RosterReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &imports.RosterReport{Filename: upload.Filename, RowsUpserted: 2}, nil
}

func (s *stubImports) ListRuns(context.Context, int) ([]imports.RunDTO, error) {
	return []imports.RunDTO{{Filename: "calls.csv"}}, nil
}

func multipartRequest(t *testing.T, field, filename, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/call-logs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestImportCallLogsUpload(t *testing.T) {
	svc := &stubImports{}
	rec := httptest.NewRecorder()
	ImportCallLogs(svc, 1<<20, nil).ServeHTTP(rec, multipartRequest(t, "file", "calls.csv", "CallId\nC1\n"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "calls.csv", svc.filename)
	assert.Equal(t, "CallId\nC1\n", svc.content)

	var envelope struct {
		Data imports.CallLogReport `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, 1, envelope.Data.InterpretersMatched)
}

func TestImportCallLogsRequiresFileField(t *testing.T) {
	rec := httptest.NewRecorder()
	ImportCallLogs(&stubImports{}, 1<<20, nil).ServeHTTP(rec, multipartRequest(t, "upload", "calls.csv", "x"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, rec).Code)
}

func TestImportCallLogsRejectsOversizedUpload(t *testing.T) {
	rec := httptest.NewRecorder()
	ImportCallLogs(&stubImports{}, 64, nil).ServeHTTP(rec, multipartRequest(t, "file", "calls.csv", strings.Repeat("x", 4096)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportCallLogsInProgress(t *testing.T) {
	svc := &stubImports{err: pkgerrors.New(pkgerrors.CodeImportInProgress, "another import is in progress")}
	rec := httptest.NewRecorder()
	ImportCallLogs(svc, 1<<20, nil).ServeHTTP(rec, multipartRequest(t, "file", "calls.csv", "x"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeImportInProgress), decodeError(t, rec).Code)
}

func TestImportRosterAndRuns(t *testing.T) {
	rec := httptest.NewRecorder()
	ImportRoster(&stubImports{}, 1<<20, nil).ServeHTTP(rec, multipartRequest(t, "file", "roster.xlsx", "x"))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	ImportRunList(&stubImports{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports?limit=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubReports struct {
	ids []uuid.UUID
}

func (s *stubReports) file(name string, ids []uuid.UUID) (*reports.File, error) {
	s.ids = ids
	return &reports.File{Filename: name, ContentType: reports.ContentTypeXLSX, Content: []byte("PK")}, nil
}

func (s *stubReports) InterpretersPay(_ context.Context, ids []uuid.UUID) (*reports.File, error) {
	return s.file(reports.InterpretersPayFilename, ids)
}

func (s *stubReports) CallLogs(_ context.Context, ids []uuid.UUID) (*reports.File, error) {
	return s.file(reports.InterpreterCallsFilename, ids)
}

func (s *stubReports) DayNight(_ context.Context, ids []uuid.UUID) (*reports.File, error) {
	return s.file(reports.DayNightFilename, ids)
}

func TestReportDownload(t *testing.T) {
	svc := &stubReports{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/day-night", strings.NewReader(`{"ids":["`+id.String()+`"]}`))
	rec := httptest.NewRecorder()
	ReportDayNight(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), reports.DayNightFilename)
	assert.Equal(t, []uuid.UUID{id}, svc.ids)

	rec = httptest.NewRecorder()
	ReportInterpretersPay(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports/interpreters", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.ids)

	rec = httptest.NewRecorder()
	ReportCallLogs(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports/call-logs", strings.NewReader(`{"ids":["nope"]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubCallLogs struct {
	calllogs.Service
	ids []uuid.UUID
}

func (s *stubCallLogs) PayTotal(_ context.Context, ids []uuid.UUID) (*calllogs.PayTotal, error) {
	s.ids = ids
	total := decimal.RequireFromString("19.75")
	return &calllogs.PayTotal{Total: total, Count: 2, Message: "Total interpreter pay for 2 call logs: 19.75"}, nil
}

func (s *stubCallLogs) BackfillServiceCenter(context.Context, []uuid.UUID) (*calllogs.BackfillResult, error) {
	return &calllogs.BackfillResult{Updated: 3, Skipped: 1}, nil
}

func TestCallLogPayTotal(t *testing.T) {
	svc := &stubCallLogs{}
	rec := httptest.NewRecorder()
	CallLogPayTotal(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports/call-logs/pay-total", strings.NewReader(" ")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.ids)
	var envelope struct {
		Data struct {
			Total   string `json:"total"`
			Message string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, "19.75", envelope.Data.Total)
	assert.Contains(t, envelope.Data.Message, "19.75")
}

func TestCallLogBackfillServiceCenter(t *testing.T) {
	rec := httptest.NewRecorder()
	CallLogBackfillServiceCenter(&stubCallLogs{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/backfill-service-center", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"updated":3,"skipped":1}}`, rec.Body.String())
}

type stubInterpreters struct {
	interpreters.Service
	input  interpreters.Input
	params interpreters.ListParams
}

func (s *stubInterpreters) List(_ context.Context, params interpreters.ListParams) (*interpreters.ListResult, error) {
	s.params = params
	return &interpreters.ListResult{}, nil
}

func (s *stubInterpreters) Create(_ context.Context, input interpreters.Input) (*interpreters.InterpreterDTO, error) {
	s.input = input
	return &interpreters.InterpreterDTO{ID: uuid.New(), Name: input.Name}, nil
}

func TestInterpreterCreate(t *testing.T) {
	svc := &stubInterpreters{}
	rec := httptest.NewRecorder()
	body := `{"name":"Jane Doe","payment_method":"Gusto","service_center":"WWI Spanish"}`
	InterpreterCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/interpreters", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Gusto", svc.input.PaymentMethod)

	rec = httptest.NewRecorder()
	InterpreterCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/interpreters", strings.NewReader(`{"name":"Jane Doe"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterpreterListPassesNameFilterThrough(t *testing.T) {
	svc := &stubInterpreters{}
	rec := httptest.NewRecorder()
	InterpreterList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interpreters?name=+Jos%C3%A9+", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, " José ", svc.params.Name)

	rec = httptest.NewRecorder()
	long := strings.Repeat("é", maxNameRunes+1)
	InterpreterList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interpreters?name="+url.QueryEscape(long), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterpreterGetRejectsBadID(t *testing.T) {
	rec := httptest.NewRecorder()
	InterpreterGet(&stubInterpreters{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interpreters/x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, ok, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"skipped"`)

	rec = httptest.NewRecorder()
	HealthReady(cfg, nil, down, ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeDependency), decodeError(t, rec).Code)
}
