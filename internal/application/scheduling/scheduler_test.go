package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkSentinel/internal/application/detection"
	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

type fakeItemRepo struct {
	mu        sync.Mutex
	items     map[string]*monitoring.MonitoringItem
	statusLog []monitoring.ItemStatus
	updateErr error
	callLog   *[]string
}

func newFakeItemRepo(items ...*monitoring.MonitoringItem) *fakeItemRepo {
	m := make(map[string]*monitoring.MonitoringItem, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return &fakeItemRepo{items: m}
}

func (r *fakeItemRepo) record(call string) {
	if r.callLog != nil {
		*r.callLog = append(*r.callLog, call)
	}
}

func (r *fakeItemRepo) Create(_ context.Context, item *monitoring.MonitoringItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, id string) (*monitoring.MonitoringItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (r *fakeItemRepo) List(context.Context, ...monitoring.ListOption) ([]*monitoring.MonitoringItem, int64, error) {
	return nil, 0, nil
}

func (r *fakeItemRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*monitoring.MonitoringItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*monitoring.MonitoringItem
	for _, item := range r.items {
		if item.Status != monitoring.StatusChecking && item.IsDue(now) {
			copied := *item
			due = append(due, &copied)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *monitoring.MonitoringItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeItemRepo) UpdateStatus(_ context.Context, id string, status monitoring.ItemStatus, lastError *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", id)
	}
	item.Status = status
	if lastError != nil {
		item.LastError = *lastError
	}
	r.statusLog = append(r.statusLog, status)
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("items.Delete")
	delete(r.items, id)
	return nil
}

type fakeAlertRepo struct {
	mu       sync.Mutex
	stored   []*alert.ConflictAlert
	batchErr error
	callLog  *[]string
}

func (r *fakeAlertRepo) Create(_ context.Context, a *alert.ConflictAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, a)
	return nil
}

func (r *fakeAlertRepo) CreateBatch(_ context.Context, alerts []*alert.ConflictAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batchErr != nil {
		return r.batchErr
	}
	r.stored = append(r.stored, alerts...)
	return nil
}

func (r *fakeAlertRepo) GetByID(context.Context, string) (*alert.ConflictAlert, error) {
	return nil, errors.New(errors.ErrCodeAlertNotFound, "not found")
}

func (r *fakeAlertRepo) List(context.Context, ...alert.ListOption) ([]*alert.ConflictAlert, int64, error) {
	return r.stored, int64(len(r.stored)), nil
}

func (r *fakeAlertRepo) Delete(context.Context, string) error { return nil }

func (r *fakeAlertRepo) DeleteByItem(_ context.Context, itemID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.callLog != nil {
		*r.callLog = append(*r.callLog, "alerts.DeleteByItem")
	}
	var kept []*alert.ConflictAlert
	var removed int64
	for _, a := range r.stored {
		if a.MonitoringItemID == itemID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.stored = kept
	return removed, nil
}

func (r *fakeAlertRepo) CountByItem(_ context.Context, itemID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.stored {
		if a.MonitoringItemID == itemID {
			n++
		}
	}
	return n, nil
}

type fakeDetector struct {
	typ      monitoring.ItemType
	detect   func(item *monitoring.MonitoringItem) (*detection.Result, error)
	statuses []monitoring.ItemStatus
	repo     *fakeItemRepo
}

func (d *fakeDetector) Type() monitoring.ItemType { return d.typ }

func (d *fakeDetector) Detect(_ context.Context, item *monitoring.MonitoringItem) (*detection.Result, error) {
	// Captures the item's persisted status at detection time.
	if d.repo != nil {
		d.statuses = append(d.statuses, d.repo.items[item.ID].Status)
	}
	return d.detect(item)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	topic string
	key   string
	env   *kafka.EventEnvelope
}

func (p *fakePublisher) Publish(_ context.Context, topic, key string, env *kafka.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{topic: topic, key: key, env: env})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) topics() []string {
	out := make([]string, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.topic)
	}
	return out
}

func testItem(t *testing.T, typ monitoring.ItemType) *monitoring.MonitoringItem {
	t.Helper()
	item, err := monitoring.NewMonitoringItem("Zynth brand", typ, []string{"Zynth"}, monitoring.FrequencyDaily)
	require.NoError(t, err)
	return item
}

func successResult(checkedAt time.Time, alerts ...*alert.ConflictAlert) *detection.Result {
	return &detection.Result{
		Alerts:    alerts,
		Scanned:   len(alerts) + 3,
		CheckedAt: checkedAt,
		NextCheck: checkedAt.Add(24 * time.Hour),
	}
}

func TestRunCheckSuccess(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := testItem(t, monitoring.ItemTypeTrademark)
	item.AlertCount = 2

	itemRepo := newFakeItemRepo(item)
	alertRepo := &fakeAlertRepo{}
	publisher := &fakePublisher{}

	a1 := alert.NewConflictAlert(item.ID, alert.TypeNewApplication, "97123456", "Zynth")
	a2 := alert.NewConflictAlert(item.ID, alert.TypeSimilarMark, "97999999", "Zynth")

	detector := &fakeDetector{typ: monitoring.ItemTypeTrademark, repo: itemRepo}
	detector.detect = func(*monitoring.MonitoringItem) (*detection.Result, error) {
		return successResult(now, a1, a2), nil
	}

	sched := NewScheduler(itemRepo, alertRepo, detection.NewRegistry(detector), logging.NewNopLogger(),
		WithPublisher(publisher),
		WithNow(func() time.Time { return now }))

	require.NoError(t, sched.RunCheck(context.Background(), item.ID))

	stored := itemRepo.items[item.ID]
	assert.Equal(t, monitoring.StatusActive, stored.Status)
	require.NotNil(t, stored.LastChecked)
	assert.Equal(t, now, *stored.LastChecked)
	require.NotNil(t, stored.NextCheck)
	assert.Equal(t, now.Add(24*time.Hour), *stored.NextCheck)
	assert.Equal(t, 4, stored.AlertCount)
	assert.Empty(t, stored.LastError)

	// Detection must observe the persisted checking state.
	require.Len(t, detector.statuses, 1)
	assert.Equal(t, monitoring.StatusChecking, detector.statuses[0])

	require.Len(t, alertRepo.stored, 2)
	assert.Equal(t, []string{
		kafka.TopicCheckCompleted,
		kafka.TopicConflictDetected,
		kafka.TopicConflictDetected,
	}, publisher.topics())
}

func TestRunCheckRejectsInFlight(t *testing.T) {
	item := testItem(t, monitoring.ItemTypeDomain)
	item.Status = monitoring.StatusChecking
	itemRepo := newFakeItemRepo(item)

	sched := NewScheduler(itemRepo, &fakeAlertRepo{}, detection.NewRegistry(), logging.NewNopLogger())

	err := sched.RunCheck(context.Background(), item.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCheckInProgress))
	assert.Empty(t, itemRepo.statusLog)
}

func TestRunCheckUnknownItem(t *testing.T) {
	sched := NewScheduler(newFakeItemRepo(), &fakeAlertRepo{}, detection.NewRegistry(), logging.NewNopLogger())

	err := sched.RunCheck(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRunCheckDetectorFailure(t *testing.T) {
	item := testItem(t, monitoring.ItemTypeMarketplace)
	itemRepo := newFakeItemRepo(item)
	publisher := &fakePublisher{}

	detector := &fakeDetector{typ: monitoring.ItemTypeMarketplace}
	detector.detect = func(*monitoring.MonitoringItem) (*detection.Result, error) {
		return nil, errors.New(errors.ErrCodeScanSourceUnavailable, "marketplace source down")
	}

	sched := NewScheduler(itemRepo, &fakeAlertRepo{}, detection.NewRegistry(detector), logging.NewNopLogger(),
		WithPublisher(publisher))

	err := sched.RunCheck(context.Background(), item.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeScanSourceUnavailable))

	stored := itemRepo.items[item.ID]
	assert.Equal(t, monitoring.StatusError, stored.Status)
	assert.Contains(t, stored.LastError, "marketplace source down")
	assert.Nil(t, stored.LastChecked)
	assert.Nil(t, stored.NextCheck)
	assert.Equal(t, []string{kafka.TopicCheckFailed}, publisher.topics())
}

func TestRunCheckNoDetectorForType(t *testing.T) {
	item := testItem(t, monitoring.ItemTypeSocial)
	itemRepo := newFakeItemRepo(item)

	sched := NewScheduler(itemRepo, &fakeAlertRepo{}, detection.NewRegistry(), logging.NewNopLogger())

	err := sched.RunCheck(context.Background(), item.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedItemType))

	// The checking state must not survive the failure.
	stored := itemRepo.items[item.ID]
	assert.Equal(t, monitoring.StatusError, stored.Status)
	assert.NotEmpty(t, stored.LastError)
}

func TestRunCheckAlertStoreFailure(t *testing.T) {
	item := testItem(t, monitoring.ItemTypeTrademark)
	itemRepo := newFakeItemRepo(item)
	alertRepo := &fakeAlertRepo{batchErr: errors.New(errors.ErrCodeDatabaseError, "insert failed")}

	a := alert.NewConflictAlert(item.ID, alert.TypeNewApplication, "97123456", "Zynth")
	detector := &fakeDetector{typ: monitoring.ItemTypeTrademark}
	detector.detect = func(*monitoring.MonitoringItem) (*detection.Result, error) {
		return successResult(time.Now().UTC(), a), nil
	}

	sched := NewScheduler(itemRepo, alertRepo, detection.NewRegistry(detector), logging.NewNopLogger())

	err := sched.RunCheck(context.Background(), item.ID)
	require.Error(t, err)
	assert.Equal(t, monitoring.StatusError, itemRepo.items[item.ID].Status)
	assert.Zero(t, itemRepo.items[item.ID].AlertCount)
}

func TestRunCheckConsecutiveRunsAppendAlerts(t *testing.T) {
	item := testItem(t, monitoring.ItemTypeTrademark)
	item.NextCheck = nil // always due
	itemRepo := newFakeItemRepo(item)
	alertRepo := &fakeAlertRepo{}

	detector := &fakeDetector{typ: monitoring.ItemTypeTrademark}
	detector.detect = func(it *monitoring.MonitoringItem) (*detection.Result, error) {
		a := alert.NewConflictAlert(it.ID, alert.TypeNewApplication, "97123456", "Zynth")
		return successResult(time.Now().UTC(), a), nil
	}

	sched := NewScheduler(itemRepo, alertRepo, detection.NewRegistry(detector), logging.NewNopLogger())

	require.NoError(t, sched.RunCheck(context.Background(), item.ID))
	require.NoError(t, sched.RunCheck(context.Background(), item.ID))

	require.Len(t, alertRepo.stored, 2)
	assert.NotEqual(t, alertRepo.stored[0].ID, alertRepo.stored[1].ID)
	assert.Equal(t, alertRepo.stored[0].DetectionKey, alertRepo.stored[1].DetectionKey)
	assert.Equal(t, 2, itemRepo.items[item.ID].AlertCount)
}

func TestRunDueIsolatesFailures(t *testing.T) {
	good := testItem(t, monitoring.ItemTypeTrademark)
	bad := testItem(t, monitoring.ItemTypeDomain)
	itemRepo := newFakeItemRepo(good, bad)

	tm := &fakeDetector{typ: monitoring.ItemTypeTrademark}
	tm.detect = func(*monitoring.MonitoringItem) (*detection.Result, error) {
		return successResult(time.Now().UTC()), nil
	}
	dom := &fakeDetector{typ: monitoring.ItemTypeDomain}
	dom.detect = func(*monitoring.MonitoringItem) (*detection.Result, error) {
		return nil, errors.New(errors.ErrCodeDetectionFailed, "zone lookup failed")
	}

	sched := NewScheduler(itemRepo, &fakeAlertRepo{}, detection.NewRegistry(tm, dom), logging.NewNopLogger())

	attempted, err := sched.RunDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempted)

	assert.Equal(t, monitoring.StatusActive, itemRepo.items[good.ID].Status)
	assert.Equal(t, monitoring.StatusError, itemRepo.items[bad.ID].Status)
}

func TestRunDueConcurrent(t *testing.T) {
	items := []*monitoring.MonitoringItem{
		testItem(t, monitoring.ItemTypeTrademark),
		testItem(t, monitoring.ItemTypeTrademark),
		testItem(t, monitoring.ItemTypeTrademark),
		testItem(t, monitoring.ItemTypeTrademark),
		testItem(t, monitoring.ItemTypeTrademark),
	}
	itemRepo := newFakeItemRepo(items...)

	var mu sync.Mutex
	checked := make(map[string]int)
	det := &fakeDetector{typ: monitoring.ItemTypeTrademark}
	det.detect = func(item *monitoring.MonitoringItem) (*detection.Result, error) {
		mu.Lock()
		checked[item.ID]++
		mu.Unlock()
		return successResult(time.Now().UTC()), nil
	}

	sched := NewScheduler(itemRepo, &fakeAlertRepo{}, detection.NewRegistry(det), logging.NewNopLogger(),
		WithConcurrency(3))

	attempted, err := sched.RunDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(items), attempted)

	for _, item := range items {
		assert.Equal(t, 1, checked[item.ID], "item %s", item.ID)
		got, getErr := itemRepo.GetByID(context.Background(), item.ID)
		require.NoError(t, getErr)
		assert.Equal(t, monitoring.StatusActive, got.Status)
	}
}

func TestRunDueSkipsNotDue(t *testing.T) {
	item := testItem(t, monitoring.ItemTypeTrademark)
	future := time.Now().Add(time.Hour)
	item.NextCheck = &future
	itemRepo := newFakeItemRepo(item)

	sched := NewScheduler(itemRepo, &fakeAlertRepo{}, detection.NewRegistry(), logging.NewNopLogger())

	attempted, err := sched.RunDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, attempted)
}

func TestDeleteItemCascades(t *testing.T) {
	item := testItem(t, monitoring.ItemTypeTrademark)
	other := testItem(t, monitoring.ItemTypeDomain)

	var callLog []string
	itemRepo := newFakeItemRepo(item, other)
	itemRepo.callLog = &callLog
	alertRepo := &fakeAlertRepo{callLog: &callLog}
	publisher := &fakePublisher{}

	mine := alert.NewConflictAlert(item.ID, alert.TypeNewApplication, "97123456", "Zynth")
	theirs := alert.NewConflictAlert(other.ID, alert.TypeDomainRegistration, "zynth-store.com", "Zynth")
	alertRepo.stored = []*alert.ConflictAlert{mine, theirs}

	sched := NewScheduler(itemRepo, alertRepo, detection.NewRegistry(), logging.NewNopLogger(),
		WithPublisher(publisher))

	require.NoError(t, sched.DeleteItem(context.Background(), item.ID))

	// Alerts go first, then the item.
	assert.Equal(t, []string{"alerts.DeleteByItem", "items.Delete"}, callLog)

	// Only the target item's alerts are removed.
	require.Len(t, alertRepo.stored, 1)
	assert.Equal(t, other.ID, alertRepo.stored[0].MonitoringItemID)

	_, err := itemRepo.GetByID(context.Background(), item.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, []string{kafka.TopicItemDeleted}, publisher.topics())
}

func TestDeleteItemUnknown(t *testing.T) {
	sched := NewScheduler(newFakeItemRepo(), &fakeAlertRepo{}, detection.NewRegistry(), logging.NewNopLogger())
	err := sched.DeleteItem(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
}
