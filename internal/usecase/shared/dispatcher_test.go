package shared

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatcherFixture struct {
	notifier *testutil.MockNotifier
	recorder *testutil.MockActivityRecorder
	logger   *testutil.MockLogger
	clock    *testutil.MockClock
}

func newDispatcherFixture() *dispatcherFixture {
	return &dispatcherFixture{
		notifier: testutil.NewMockNotifier(),
		recorder: testutil.NewMockActivityRecorder(),
		logger:   &testutil.MockLogger{},
		clock:    &testutil.MockClock{NowTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
}

func (f *dispatcherFixture) dispatcher(opts DispatcherOptions) *Dispatcher {
	return NewDispatcher(f.notifier, f.recorder, f.clock, f.logger, nil, opts)
}

func testDelivery(phone string, update domain.UpdateType) Delivery {
	task := &domain.Task{ID: "t1", Title: "Fix pump", Priority: domain.PriorityHigh}
	return NewDelivery(task, domain.Recipient{Phone: phone, Name: "Bob", IsExternal: true}, update, "Alice")
}

func TestNewDelivery(t *testing.T) {
	due := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	task := &domain.Task{ID: "t1", Title: "Fix pump", Priority: domain.PriorityUrgent, DueDate: &due}

	dl := NewDelivery(task, domain.Recipient{Phone: "5550001111", Name: "Bob", IsExternal: true}, domain.UpdateAssigned, "Alice")

	assert.Equal(t, "5550001111", dl.Recipient.Phone)
	assert.Equal(t, "t1", dl.Notification.TaskID)
	assert.Equal(t, "Fix pump", dl.Notification.TaskTitle)
	assert.Equal(t, domain.PriorityUrgent, dl.Notification.Priority)
	assert.Equal(t, &due, dl.Notification.DueDate)
	assert.Equal(t, "Bob", dl.Notification.RecipientName)
	assert.Equal(t, "Alice", dl.Notification.PerformedBy)
	assert.True(t, dl.Notification.IsExternal)
}

func TestDispatcher_Dispatch_Sync_Success(t *testing.T) {
	// Setup
	f := newDispatcherFixture()
	d := f.dispatcher(DispatcherOptions{})

	// Execute
	warnings := d.Dispatch(context.Background(), "u1", testDelivery("5550001111", domain.UpdateAssigned))

	// Assert
	assert.Empty(t, warnings)
	require.Len(t, f.notifier.Messages(), 1)
	require.Len(t, f.recorder.Activities, 1)
	rec := f.recorder.Activities[0]
	assert.Equal(t, domain.ActionNotificationSent, rec.Action)
	assert.True(t, rec.NotificationAttempted)
	assert.Equal(t, "t1", rec.TaskID)
	assert.Equal(t, "u1", rec.PerformedBy)
	assert.Equal(t, "assigned", rec.NewValue)
	assert.Equal(t, f.clock.NowTime, rec.CreatedAt)
}

func TestDispatcher_Dispatch_Sync_IndependentOutcomes(t *testing.T) {
	// Setup
	f := newDispatcherFixture()
	f.notifier.FailPhones["5550001111"] = true
	d := f.dispatcher(DispatcherOptions{})

	// Execute
	warnings := d.Dispatch(context.Background(), "u1",
		testDelivery("5550001111", domain.UpdateReassigned),
		testDelivery("5550002222", domain.UpdateReassignedAway),
	)

	// Assert
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "reassigned notification to Bob")
	assert.Equal(t, []domain.Action{domain.ActionNotificationFailed, domain.ActionNotificationSent}, f.recorder.Actions())
	assert.Contains(t, f.recorder.Activities[0].Notes, "notification failed")
	require.Len(t, f.notifier.Messages(), 1)
	assert.Equal(t, "5550002222", f.notifier.Messages()[0].Phone)
}

func TestDispatcher_Dispatch_Timeout(t *testing.T) {
	f := newDispatcherFixture()
	f.notifier.Delay = time.Second
	d := f.dispatcher(DispatcherOptions{Timeout: 10 * time.Millisecond})

	warnings := d.Dispatch(context.Background(), "u1", testDelivery("5550001111", domain.UpdateAssigned))

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "deadline exceeded")
	assert.Equal(t, []domain.Action{domain.ActionNotificationFailed}, f.recorder.Actions())
}

func TestDispatcher_Dispatch_IgnoresCallerCancellation(t *testing.T) {
	f := newDispatcherFixture()
	d := f.dispatcher(DispatcherOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	warnings := d.Dispatch(ctx, "u1", testDelivery("5550001111", domain.UpdateAssigned))

	assert.Empty(t, warnings)
	assert.Len(t, f.notifier.Messages(), 1)
}

func TestDispatcher_Dispatch_RecorderFailureIsLogged(t *testing.T) {
	f := newDispatcherFixture()
	f.recorder.AppendErr = assert.AnError
	d := f.dispatcher(DispatcherOptions{})

	warnings := d.Dispatch(context.Background(), "u1", testDelivery("5550001111", domain.UpdateAssigned))

	assert.Empty(t, warnings)
	require.NotEmpty(t, f.logger.Entries)
	assert.Equal(t, "error", f.logger.Entries[len(f.logger.Entries)-1].Level)
}

func TestDispatcher_Dispatch_Async(t *testing.T) {
	// Setup
	f := newDispatcherFixture()
	f.notifier.FailPhones["5550002222"] = true
	d := f.dispatcher(DispatcherOptions{Mode: domain.DispatchAsync, Workers: 2})

	// Execute
	warnings := d.Dispatch(context.Background(), "u1",
		testDelivery("5550001111", domain.UpdateAssigned),
		testDelivery("5550002222", domain.UpdateAssigned),
	)
	d.Wait()

	// Assert
	assert.Empty(t, warnings)
	assert.Equal(t, 1, f.recorder.Count(domain.ActionNotificationSent))
	assert.Equal(t, 1, f.recorder.Count(domain.ActionNotificationFailed))
}

func TestDispatcher_Wait_ThenInline(t *testing.T) {
	f := newDispatcherFixture()
	f.notifier.FailAll = true
	d := f.dispatcher(DispatcherOptions{Mode: domain.DispatchAsync})
	d.Wait()
	d.Wait()

	warnings := d.Dispatch(context.Background(), "u1", testDelivery("5550001111", domain.UpdateAssigned))

	assert.Len(t, warnings, 1)
	assert.Equal(t, []domain.Action{domain.ActionNotificationFailed}, f.recorder.Actions())
}

func TestDispatcher_Dispatch_Empty(t *testing.T) {
	f := newDispatcherFixture()
	assert.Nil(t, f.dispatcher(DispatcherOptions{}).Dispatch(context.Background(), "u1"))
	assert.Empty(t, f.recorder.Activities)
}
