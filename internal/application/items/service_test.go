package items

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

type memItemRepo struct {
	items map[string]*monitoring.MonitoringItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[string]*monitoring.MonitoringItem{}}
}

func (r *memItemRepo) Create(_ context.Context, item *monitoring.MonitoringItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *memItemRepo) GetByID(_ context.Context, id string) (*monitoring.MonitoringItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (r *memItemRepo) List(_ context.Context, opts ...monitoring.ListOption) ([]*monitoring.MonitoringItem, int64, error) {
	options := monitoring.ApplyListOptions(opts...)
	var out []*monitoring.MonitoringItem
	for _, item := range r.items {
		if options.Type != "" && item.Type != options.Type {
			continue
		}
		if options.Status != "" && item.Status != options.Status {
			continue
		}
		out = append(out, item)
	}
	return out, int64(len(out)), nil
}

func (r *memItemRepo) ListDue(context.Context, time.Time, int) ([]*monitoring.MonitoringItem, error) {
	return nil, nil
}

func (r *memItemRepo) Update(_ context.Context, item *monitoring.MonitoringItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", item.ID)
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memItemRepo) UpdateStatus(_ context.Context, id string, status monitoring.ItemStatus, lastError *string) error {
	item, ok := r.items[id]
	if !ok {
		return errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", id)
	}
	item.Status = status
	return nil
}

func (r *memItemRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func TestServiceCreate(t *testing.T) {
	repo := newMemItemRepo()
	svc := NewService(repo, logging.NewNopLogger())

	item, err := svc.Create(context.Background(), CreateInput{
		Name:       "Zynth brand",
		Type:       "domain",
		Keywords:   []string{"Zynth"},
		Frequency:  "daily",
		Extensions: []string{".com", ".io"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, monitoring.StatusActive, item.Status)
	assert.Nil(t, item.NextCheck) // due immediately
	assert.Equal(t, []string{".com", ".io"}, item.Extensions)
	assert.Contains(t, repo.items, item.ID)
}

func TestServiceCreateInvalid(t *testing.T) {
	svc := NewService(newMemItemRepo(), logging.NewNopLogger())

	_, err := svc.Create(context.Background(), CreateInput{
		Name: "No keywords", Type: "trademark", Frequency: "daily",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyKeywords))

	_, err = svc.Create(context.Background(), CreateInput{
		Name: "Bad type", Type: "podcast", Keywords: []string{"x"}, Frequency: "daily",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedItemType))
}

func TestServiceGet(t *testing.T) {
	repo := newMemItemRepo()
	svc := NewService(repo, logging.NewNopLogger())

	created, err := svc.Create(context.Background(), CreateInput{
		Name: "Zynth", Type: "trademark", Keywords: []string{"Zynth"}, Frequency: "weekly",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), "")
	assert.True(t, errors.IsValidation(err))

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestServiceListRejectsUnknownType(t *testing.T) {
	svc := NewService(newMemItemRepo(), logging.NewNopLogger())

	_, _, err := svc.List(context.Background(), ListInput{Type: "podcast"})
	assert.True(t, errors.IsValidation(err))
}

func TestServiceUpdate(t *testing.T) {
	repo := newMemItemRepo()
	svc := NewService(repo, logging.NewNopLogger())

	created, err := svc.Create(context.Background(), CreateInput{
		Name: "Zynth", Type: "trademark", Keywords: []string{"Zynth"}, Frequency: "daily",
	})
	require.NoError(t, err)

	name := "Zynth rebrand"
	freq := "hourly"
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		Name:      &name,
		Keywords:  []string{"Zynth", "Zynth Tech"},
		Frequency: &freq,
	})
	require.NoError(t, err)
	assert.Equal(t, "Zynth rebrand", updated.Name)
	assert.Equal(t, monitoring.FrequencyHourly, updated.Frequency)
	assert.Len(t, updated.Keywords, 2)
}

func TestServiceUpdateRejectsEmptyKeywords(t *testing.T) {
	repo := newMemItemRepo()
	svc := NewService(repo, logging.NewNopLogger())

	created, err := svc.Create(context.Background(), CreateInput{
		Name: "Zynth", Type: "trademark", Keywords: []string{"Zynth"}, Frequency: "daily",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Keywords: []string{}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyKeywords))
}

func TestServiceUpdateRejectsInFlight(t *testing.T) {
	repo := newMemItemRepo()
	svc := NewService(repo, logging.NewNopLogger())

	created, err := svc.Create(context.Background(), CreateInput{
		Name: "Zynth", Type: "trademark", Keywords: []string{"Zynth"}, Frequency: "daily",
	})
	require.NoError(t, err)
	repo.items[created.ID].Status = monitoring.StatusChecking

	name := "blocked"
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Name: &name})
	assert.True(t, errors.IsCode(err, errors.ErrCodeCheckInProgress))
}
