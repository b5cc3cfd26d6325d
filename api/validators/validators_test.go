package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
)

type payload struct {
	Name string `json:"name" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	var dest payload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jane Doe"}`))
	require.NoError(t, DecodeJSONBody(req, &dest))
	assert.Equal(t, "Jane Doe", dest.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"name": "is required"}, typed.Details())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nickname":"x"}`))
	assert.Error(t, DecodeJSONBody(req, &dest))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	got, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=500", nil), "limit", 25, 1, 100)
	assert.Error(t, err)
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("interpreterId", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "interpreterId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(req, "callLogId")
	assert.Error(t, err)
}

func TestParseUUIDs(t *testing.T) {
	id := uuid.New()
	got, err := ParseUUIDs([]string{id.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, got)

	_, err = ParseUUIDs([]string{id.String(), "nope"})
	assert.Error(t, err)
}

func TestParseQueryText(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?name=+Jane+Doe+", nil)
	got, err := ParseQueryText(req, "name", 255)
	require.NoError(t, err)
	assert.Equal(t, " Jane Doe ", got, "whitespace is part of the exact name")

	req = httptest.NewRequest(http.MethodGet, "/?name=Jos%C3%A9", nil)
	got, err = ParseQueryText(req, "name", 4)
	require.NoError(t, err)
	assert.Equal(t, "José", got, "the limit counts characters, not bytes")

	req = httptest.NewRequest(http.MethodGet, "/?name=Jos%C3%A9", nil)
	_, err = ParseQueryText(req, "name", 3)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	got, err = ParseQueryText(httptest.NewRequest(http.MethodGet, "/", nil), "name", 255)
	require.NoError(t, err)
	assert.Empty(t, got)
}
