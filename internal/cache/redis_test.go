package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	err := Init("", "", 0)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, GetClient())

	ctx := context.Background()
	SetCached(ctx, StoreSettingsKey, []byte(`{"store_name":"x"}`), time.Minute)
	_, ok := GetCached(ctx, StoreSettingsKey)
	assert.False(t, ok)

	InvalidateSettingCaches(ctx)
	InvalidateReportCaches(ctx)
	InvalidateKeys(ctx, DashboardKey)
	assert.False(t, IsHealthy())
	assert.NoError(t, Close())
}

func TestInitUnreachableFallsBack(t *testing.T) {
	err := Init("127.0.0.1:1", "", 0)
	assert.Error(t, err)
	assert.Nil(t, GetClient())
}
