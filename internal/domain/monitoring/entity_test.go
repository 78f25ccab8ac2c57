package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkSentinel/pkg/errors"
)

func TestNewMonitoringItem_Valid(t *testing.T) {
	item, err := NewMonitoringItem("Acme watch", ItemTypeTrademark, []string{"Acme"}, FrequencyDaily)
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, StatusActive, item.Status)
	assert.Equal(t, 0, item.AlertCount)
	assert.Nil(t, item.LastChecked)
}

func TestNewMonitoringItem_EmptyKeywords(t *testing.T) {
	_, err := NewMonitoringItem("Acme watch", ItemTypeTrademark, nil, FrequencyDaily)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyKeywords))
}

func TestNewMonitoringItem_UnknownType(t *testing.T) {
	_, err := NewMonitoringItem("watch", ItemType("video"), []string{"Acme"}, FrequencyDaily)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedItemType))
}

func TestValidate_EmptyKeywordEntry(t *testing.T) {
	item := &MonitoringItem{
		Name:     "watch",
		Type:     ItemTypeDomain,
		Keywords: []string{"Acme", ""},
	}
	assert.Error(t, item.Validate())
}

func TestFrequency_Interval(t *testing.T) {
	tests := []struct {
		freq Frequency
		want time.Duration
	}{
		{FrequencyHourly, time.Hour},
		{FrequencyDaily, 24 * time.Hour},
		{FrequencyWeekly, 7 * 24 * time.Hour},
		{FrequencyMonthly, 30 * 24 * time.Hour},
		{Frequency("fortnightly"), 24 * time.Hour},
		{Frequency(""), 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := tt.freq.Interval(); got != tt.want {
			t.Errorf("Interval(%q) = %v, want %v", tt.freq, got, tt.want)
		}
	}
}

func TestFrequency_Next(t *testing.T) {
	from := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, from.Add(time.Hour), FrequencyHourly.Next(from))
	assert.Equal(t, from.Add(7*24*time.Hour), FrequencyWeekly.Next(from))
	assert.Equal(t, from.Add(24*time.Hour), Frequency("bogus").Next(from))
}

func TestIsDue(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	item := &MonitoringItem{Status: StatusActive}
	assert.True(t, item.IsDue(now), "item without next check is always due")

	item.NextCheck = &past
	assert.True(t, item.IsDue(now))

	item.NextCheck = &future
	assert.False(t, item.IsDue(now))

	item.NextCheck = &past
	item.Status = StatusChecking
	assert.False(t, item.IsDue(now), "in-flight item must not be re-dispatched")
}

func TestApplyListOptions_Bounds(t *testing.T) {
	opts := ApplyListOptions(WithPage(1000, -5), WithType(ItemTypeSocial))
	assert.Equal(t, 200, opts.Limit)
	assert.Equal(t, 0, opts.Offset)
	assert.Equal(t, ItemTypeSocial, opts.Type)

	defaults := ApplyListOptions()
	assert.Equal(t, 20, defaults.Limit)
}
