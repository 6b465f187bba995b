package service_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskchime/taskchime/internal/domain"
	"github.com/taskchime/taskchime/internal/notify"
	"github.com/taskchime/taskchime/internal/scheduler"
	"github.com/taskchime/taskchime/internal/service"
	"github.com/taskchime/taskchime/internal/store"
)

// memoryTaskStore is an in-memory store.TaskStore for service tests.
// It mirrors the SQLite implementation's contract: assigned IDs, not-found
// on update, no-op delete and complete for missing IDs.
type memoryTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]domain.Task
	order  []int64
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{nextID: 1, tasks: make(map[int64]domain.Task)}
}

func (m *memoryTaskStore) List(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, 0, len(m.order))
	for _, id := range m.order {
		if t, ok := m.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

func (m *memoryTaskStore) Create(_ context.Context, task *domain.Task) (int64, error) {
	if err := task.Validate(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = m.nextID
	task.Status = domain.TaskStatusPending
	m.nextID++
	m.tasks[task.ID] = *task
	m.order = append(m.order, task.ID)
	return task.ID, nil
}

func (m *memoryTaskStore) Update(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	existing.Title = task.Title
	existing.DueDate = task.DueDate
	existing.TimeOfDay = task.TimeOfDay
	existing.Recurrence = task.Recurrence
	m.tasks[task.ID] = existing
	return nil
}

func (m *memoryTaskStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *memoryTaskStore) Complete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.Status = domain.TaskStatusCompleted
		m.tasks[id] = t
	}
	return nil
}

type serviceFixture struct {
	svc   *service.ReminderService
	store *memoryTaskStore
	sched *scheduler.Scheduler
	hub   *notify.Hub
	sub   *notify.Subscriber
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	logger := slog.Default()
	taskStore := newMemoryTaskStore()
	sched := scheduler.New(logger)
	hub := notify.NewHub(notify.DefaultHubConfig(), logger)
	hub.Start()
	t.Cleanup(func() {
		sched.Stop()
		hub.Stop()
	})

	return &serviceFixture{
		svc:   service.NewReminderService(taskStore, sched, hub, logger),
		store: taskStore,
		sched: sched,
		hub:   hub,
		sub:   hub.Subscribe(),
	}
}

// duePast and dueFuture return due_date/time strings around now. The
// columns have minute resolution, so tests that need an immediate fire
// use a past instant rather than waiting for a minute boundary.
func duePast() (string, string) {
	at := time.Now().Add(-time.Minute)
	return at.Format(domain.DueDateLayout), at.Format(domain.TimeOfDayLayout)
}

func dueFuture() (string, string) {
	at := time.Now().Add(time.Hour)
	return at.Format(domain.DueDateLayout), at.Format(domain.TimeOfDayLayout)
}

func waitEvent(t *testing.T, sub *notify.Subscriber) *notify.Event {
	t.Helper()

	select {
	case event, ok := <-sub.Events():
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reminder event")
		return nil
	}
}

func assertNoEvent(t *testing.T, sub *notify.Subscriber, within time.Duration) {
	t.Helper()

	select {
	case event := <-sub.Events():
		t.Fatalf("expected no reminder event, got %+v", event)
	case <-time.After(within):
	}
}

func TestCreateTaskStoresAndSchedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dueDate, timeOfDay := dueFuture()
	id, err := f.svc.CreateTask(ctx, "Pay bill", dueDate, timeOfDay, "none")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.True(t, f.sched.Exists(id), "create must arm a reminder")

	tasks, err := f.svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay bill", tasks[0].Title)
	assert.Equal(t, domain.TaskStatusPending, tasks[0].Status)
}

func TestCreateTaskValidationFailureHasNoSideEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, "", "2025-01-01", "09:00", "none")
	assert.ErrorIs(t, err, domain.ErrValidation)

	tasks, listErr := f.svc.ListTasks(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, tasks)
	assert.Equal(t, 0, f.sched.Len())
}

func TestReminderFiresWithTitleAndTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A past due instant fires as soon as practical.
	dueDate, timeOfDay := duePast()
	_, err := f.svc.CreateTask(ctx, "Pay bill", dueDate, timeOfDay, "none")
	require.NoError(t, err)

	event := waitEvent(t, f.sub)
	assert.Equal(t, notify.EventTypeTaskReminder, event.Type)

	var payload notify.ReminderPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "Pay bill", payload.Title)
	assert.Equal(t, timeOfDay, payload.Time)

	assertNoEvent(t, f.sub, 200*time.Millisecond)
}

func TestDeleteBeforeDueSuppressesReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dueDate, timeOfDay := dueFuture()
	id, err := f.svc.CreateTask(ctx, "Cancelled plans", dueDate, timeOfDay, "none")
	require.NoError(t, err)
	require.True(t, f.sched.Exists(id))

	require.NoError(t, f.svc.DeleteTask(ctx, id))
	assert.False(t, f.sched.Exists(id))

	tasks, err := f.svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assertNoEvent(t, f.sub, 200*time.Millisecond)
}

// vanishingStore makes every read come back not-found, simulating a task
// deleted between its timer arming and firing.
type vanishingStore struct {
	*memoryTaskStore
}

func (v *vanishingStore) GetByID(context.Context, int64) (*domain.Task, error) {
	return nil, store.ErrTaskNotFound
}

func TestFireAfterDeleteRaceIsSwallowed(t *testing.T) {
	logger := slog.Default()
	sched := scheduler.New(logger)
	hub := notify.NewHub(notify.DefaultHubConfig(), logger)
	hub.Start()
	t.Cleanup(func() {
		sched.Stop()
		hub.Stop()
	})

	svc := service.NewReminderService(&vanishingStore{newMemoryTaskStore()}, sched, hub, logger)
	sub := hub.Subscribe()

	// The row is gone by the time the callback reads it back; the fire
	// must be swallowed, not published and not treated as an error.
	dueDate, timeOfDay := duePast()
	_, err := svc.CreateTask(context.Background(), "Ghost", dueDate, timeOfDay, "none")
	require.NoError(t, err)

	assertNoEvent(t, sub, 300*time.Millisecond)
}

func TestUpdateTaskReschedulesTrigger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dueDate, timeOfDay := dueFuture()
	id, err := f.svc.CreateTask(ctx, "Old", dueDate, timeOfDay, "none")
	require.NoError(t, err)

	newDate, newTime := duePast()
	require.NoError(t, f.svc.UpdateTask(ctx, id, "New", newDate, newTime, "daily"))

	// The re-armed trigger follows the updated (past) instant and the
	// published payload reflects the updated fields.
	event := waitEvent(t, f.sub)
	var payload notify.ReminderPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "New", payload.Title)
	assert.Equal(t, newTime, payload.Time)
}

func TestUpdateMissingTaskIsNotFound(t *testing.T) {
	f := newFixture(t)

	dueDate, timeOfDay := dueFuture()
	err := f.svc.UpdateTask(context.Background(), 42, "Nobody", dueDate, timeOfDay, "none")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestUpdateValidationFailureLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dueDate, timeOfDay := dueFuture()
	id, err := f.svc.CreateTask(ctx, "Original", dueDate, timeOfDay, "none")
	require.NoError(t, err)

	err = f.svc.UpdateTask(ctx, id, "", dueDate, timeOfDay, "none")
	assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)

	tasks, listErr := f.svc.ListTasks(ctx)
	require.NoError(t, listErr)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Original", tasks[0].Title)
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dueDate, timeOfDay := dueFuture()
	id, err := f.svc.CreateTask(ctx, "Chore", dueDate, timeOfDay, "none")
	require.NoError(t, err)

	require.NoError(t, f.svc.CompleteTask(ctx, id))
	require.NoError(t, f.svc.CompleteTask(ctx, id))

	tasks, err := f.svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskStatusCompleted, tasks[0].Status)

	// Completing a missing ID is a no-op.
	assert.NoError(t, f.svc.CompleteTask(ctx, 999))
}

func TestRearmPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	futureDate, futureTime := dueFuture()
	pastDate, pastTime := duePast()

	futureTask, err := domain.NewTask("Future", futureDate, futureTime, "none")
	require.NoError(t, err)
	futureID, err := f.store.Create(ctx, futureTask)
	require.NoError(t, err)

	pastTask, err := domain.NewTask("Past due", pastDate, pastTime, "none")
	require.NoError(t, err)
	pastID, err := f.store.Create(ctx, pastTask)
	require.NoError(t, err)

	doneTask, err := domain.NewTask("Done", futureDate, futureTime, "none")
	require.NoError(t, err)
	doneID, err := f.store.Create(ctx, doneTask)
	require.NoError(t, err)
	require.NoError(t, f.store.Complete(ctx, doneID))

	require.NoError(t, f.svc.RearmPending(ctx))

	assert.True(t, f.sched.Exists(futureID), "pending future task gets re-armed")
	assert.False(t, f.sched.Exists(pastID), "past-due task is not re-fired")
	assert.False(t, f.sched.Exists(doneID), "completed task is not re-armed")
}

func TestInvalidIDsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dueDate, timeOfDay := dueFuture()
	assert.ErrorIs(t, f.svc.UpdateTask(ctx, 0, "x", dueDate, timeOfDay, "none"), service.ErrInvalidTaskID)
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, -1), service.ErrInvalidTaskID)
	assert.ErrorIs(t, f.svc.CompleteTask(ctx, 0), service.ErrInvalidTaskID)
}
