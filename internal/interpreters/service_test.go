package interpreters

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/callpay-backend/internal/repo/repotest"
	"github.com/angelmondragon/callpay-backend/internal/schema"
	"github.com/angelmondragon/callpay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/callpay-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(repotest.Open(t)), schema.Latest())
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil, schema.Latest())
	require.Error(t, err)
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Jane Doe", PaymentMethod: "Gusto", ServiceCenter: "WWI Spanish"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Nil(t, created.TotalAmount, "totals start unset")
	assert.Nil(t, created.TotalMinutes)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, enums.PaymentMethodGusto, got.PaymentMethod)
	assert.Equal(t, enums.ServiceCenterWWISpanish, got.ServiceCenter)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "  "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, Input{Name: "Jane Doe", PaymentMethod: "Venmo"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCreateMigratesRenamedCenter(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), Input{Name: "Jane Doe", ServiceCenter: "VIP Call Center"})
	require.NoError(t, err)
	assert.Equal(t, enums.ServiceCenterVIPOPI, created.ServiceCenter)
}

func TestServiceCreateDuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "Jane Doe"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "Jane Doe"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestServiceUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Jane Doe", PaymentMethod: "Check"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Input{Name: "Jane Doe", PaymentMethod: "QBD", ServiceCenter: "WWI Foreign"})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodQBD, updated.PaymentMethod)
	assert.Equal(t, enums.ServiceCenterWWIForeign, updated.ServiceCenter)

	_, err = svc.Update(ctx, uuid.New(), Input{Name: "Nobody"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, Input{Name: name})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.NotEmpty(t, page.Cursor)

	all, err := svc.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)
	assert.Empty(t, all.Cursor)

	filtered, err := svc.List(ctx, ListParams{Name: "B"})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, "B", filtered.Items[0].Name)

	_, err = svc.List(ctx, ListParams{Cursor: "not-base64!"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
