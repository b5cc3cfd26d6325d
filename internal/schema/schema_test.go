package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/callpay-backend/pkg/enums"
)

func TestLookup(t *testing.T) {
	latest, err := Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, Latest().Version, latest.Version)

	rev, err := Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Version)

	_, err = Lookup(42)
	assert.Error(t, err)
}

func TestRevisionsKeepAndDropAreDisjoint(t *testing.T) {
	for _, rev := range revisions {
		for _, f := range rev.Keep {
			assert.Falsef(t, rev.Drops(f), "revision %d keeps and drops %s", rev.Version, f)
			assert.NotEmptyf(t, rev.HeadersFor(f), "revision %d keeps %s without a header mapping", rev.Version, f)
		}
	}
}

func TestRevisionsClassifyEveryVendorField(t *testing.T) {
	for _, rev := range revisions {
		for _, m := range rev.Mappings {
			assert.Truef(t, rev.Keeps(m.Field) || rev.Drops(m.Field),
				"revision %d neither keeps nor drops %s", rev.Version, m.Field)
		}
	}
}

func TestRevisionOneDropsCallDetails(t *testing.T) {
	rev, err := Lookup(1)
	require.NoError(t, err)

	assert.True(t, rev.Drops(FieldCustomerName))
	assert.True(t, rev.Drops(FieldCallTime))
	assert.False(t, rev.TracksMinutes)

	latest := Latest()
	assert.True(t, latest.Keeps(FieldCustomerName))
	assert.True(t, latest.Keeps(FieldCallTime))
	assert.True(t, latest.TracksMinutes)
}

func TestFieldForHeader(t *testing.T) {
	rev := Latest()

	field, ok := rev.FieldForHeader("CallId")
	require.True(t, ok)
	assert.Equal(t, FieldCallID, field)

	field, ok = rev.FieldForHeader("Call ID")
	require.True(t, ok)
	assert.Equal(t, FieldCallID, field)

	_, ok = rev.FieldForHeader("interpreter name")
	assert.False(t, ok, "header matching is exact")
}

func TestServiceCenterRename(t *testing.T) {
	legacy, err := Lookup(1)
	require.NoError(t, err)
	latest := Latest()

	assert.True(t, legacy.AllowsServiceCenter(enums.ServiceCenterVIP))
	assert.False(t, latest.AllowsServiceCenter(enums.ServiceCenterVIP))
	assert.True(t, latest.AllowsServiceCenter(enums.ServiceCenterVIPOPI))
	assert.Equal(t, string(enums.ServiceCenterVIPOPI), latest.MigrateServiceCenter("VIP Call Center"))
	assert.Equal(t, "WWI Spanish", latest.MigrateServiceCenter("WWI Spanish"))
	assert.True(t, latest.AllowsServiceCenter(""))
	assert.True(t, latest.AllowsPaymentMethod(""))
	assert.False(t, latest.AllowsPaymentMethod("Venmo"))
}
