package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

func TestCheckLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.createItem(t, "Zynth brand watch", monitoring.ItemTypeDomain, []string{"zynth"})

	require.NoError(t, env.scheduler.RunCheck(ctx, item.ID))

	got, err := env.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, monitoring.StatusActive, got.Status)
	require.NotNil(t, got.LastChecked)
	require.NotNil(t, got.NextCheck)
	assert.True(t, got.NextCheck.After(*got.LastChecked))
	assert.Empty(t, got.LastError)

	alerts, total, err := env.alerts.List(ctx, alert.WithItem(item.ID))
	require.NoError(t, err)
	assert.Equal(t, int(total), len(alerts))
	assert.Equal(t, got.AlertCount, len(alerts))
	for _, a := range alerts {
		assert.Equal(t, item.ID, a.MonitoringItemID)
		assert.NotEmpty(t, a.DetectionKey)
		assert.NotEmpty(t, a.ActionRequired)
	}
}

func TestCheckAcrossAllSurfaces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	types := []monitoring.ItemType{
		monitoring.ItemTypeTrademark,
		monitoring.ItemTypeDomain,
		monitoring.ItemTypeMarketplace,
		monitoring.ItemTypeSocial,
	}
	for _, typ := range types {
		item := env.createItem(t, "Zynth "+typ.String(), typ, []string{"zynth"})
		require.NoError(t, env.scheduler.RunCheck(ctx, item.ID), "type %s", typ)

		got, err := env.items.GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, monitoring.StatusActive, got.Status, "type %s", typ)
	}
}

func TestRunDuePicksUpNewItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A fresh item has no next_check and is due immediately.
	first := env.createItem(t, "Zynth due", monitoring.ItemTypeDomain, []string{"zynth"})
	second := env.createItem(t, "Nuvexa due", monitoring.ItemTypeDomain, []string{"nuvexa"})

	attempted, err := env.scheduler.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, attempted)

	for _, id := range []string{first.ID, second.ID} {
		got, err := env.items.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, monitoring.StatusActive, got.Status)
		require.NotNil(t, got.NextCheck)
	}

	// Everything has a future next_check now; a second pass finds nothing.
	attempted, err = env.scheduler.RunDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, attempted)
}

func TestDeleteItemRemovesAlerts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.createItem(t, "Zynth delete", monitoring.ItemTypeMarketplace, []string{"zynth"})
	require.NoError(t, env.scheduler.RunCheck(ctx, item.ID))

	require.NoError(t, env.scheduler.DeleteItem(ctx, item.ID))

	_, err := env.items.GetByID(ctx, item.ID)
	assert.Equal(t, errors.ErrCodeItemNotFound, errors.GetCode(err))

	n, err := env.alerts.CountByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConsecutiveChecksAccumulateAlerts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.createItem(t, "Zynth repeat", monitoring.ItemTypeSocial, []string{"zynth"})

	require.NoError(t, env.scheduler.RunCheck(ctx, item.ID))
	first, err := env.alerts.CountByItem(ctx, item.ID)
	require.NoError(t, err)

	// Clear next_check so the item is checkable again right away.
	got, err := env.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	got.NextCheck = nil
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, env.items.Update(ctx, got))

	require.NoError(t, env.scheduler.RunCheck(ctx, item.ID))
	second, err := env.alerts.CountByItem(ctx, item.ID)
	require.NoError(t, err)

	// The synthetic source is deterministic, so the same conflicts are
	// re-detected with fresh alert rows.
	assert.Equal(t, first*2, second)

	final, err := env.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int(second), final.AlertCount)
}
