package shared

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/whatstask/internal/domain"
)

// Delivery is one notification to one recipient.
type Delivery struct {
	Recipient    domain.Recipient
	Notification domain.Notification
}

// NewDelivery builds the delivery of an update about task to rcpt.
func NewDelivery(task *domain.Task, rcpt domain.Recipient, update domain.UpdateType, performedBy string) Delivery {
	return Delivery{
		Recipient: rcpt,
		Notification: domain.Notification{
			DueDate:       task.DueDate,
			TaskID:        task.ID,
			TaskTitle:     task.Title,
			Priority:      task.Priority,
			UpdateType:    update,
			RecipientName: rcpt.Name,
			PerformedBy:   performedBy,
			IsExternal:    rcpt.IsExternal,
		},
	}
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Mode    string        // domain.DispatchSync (default) or domain.DispatchAsync
	Workers int           // Async worker count
	Queue   int           // Async queue length
	Timeout time.Duration // Per-send bound; 0 = none
}

type dispatchJob struct {
	ctx      context.Context
	actorID  string
	delivery Delivery
}

// Dispatcher sends notifications after a mutation commits and records each
// outcome as a notification_sent or notification_failed activity.
// Failures are never returned as errors.
// Fields are ordered to minimize memory padding.
type Dispatcher struct {
	notifier  domain.Notifier
	recorder  domain.ActivityRecorder
	clock     domain.Clock
	logger    domain.Logger
	telemetry Telemetry
	jobs      chan dispatchJob
	opts      DispatcherOptions
	wg        sync.WaitGroup
	mu        sync.Mutex
	start     sync.Once
	closed    bool
}

// NewDispatcher creates a Dispatcher. Async workers start on first use.
func NewDispatcher(notifier domain.Notifier, recorder domain.ActivityRecorder, clock domain.Clock,
	logger domain.Logger, telemetry Telemetry, opts DispatcherOptions) *Dispatcher {
	if opts.Mode == "" {
		opts.Mode = domain.DispatchSync
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Queue <= 0 {
		opts.Queue = 64
	}
	if telemetry == nil {
		telemetry = NopTelemetry{}
	}
	return &Dispatcher{
		notifier:  notifier,
		recorder:  recorder,
		clock:     clock,
		logger:    logger,
		telemetry: telemetry,
		opts:      opts,
	}
}

// Dispatch attempts every delivery independently. In sync mode it returns
// one advisory warning per failed delivery; in async mode it returns
// immediately with no warnings and outcomes are recorded by the workers.
func (d *Dispatcher) Dispatch(ctx context.Context, actorID string, deliveries ...Delivery) []string {
	if len(deliveries) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	async := d.opts.Mode == domain.DispatchAsync

	var warnings []string
	for _, dl := range deliveries {
		if async && d.enqueue(dispatchJob{ctx: ctx, actorID: actorID, delivery: dl}) {
			continue
		}
		if err := d.deliver(ctx, actorID, dl); err != nil {
			warnings = append(warnings, warning(dl, err))
		}
	}
	return warnings
}

// Wait stops accepting async work and blocks until queued deliveries finish.
// Later dispatches run inline.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.jobs != nil {
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// enqueue hands job to the worker pool. It reports false when the pool is
// closed or the queue is full, in which case the caller delivers inline.
func (d *Dispatcher) enqueue(job dispatchJob) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.start.Do(func() {
		d.jobs = make(chan dispatchJob, d.opts.Queue)
		for range d.opts.Workers {
			d.wg.Add(1)
			go d.work()
		}
	})
	select {
	case d.jobs <- job:
		return true
	default:
		d.logger.Warn(job.delivery.Notification.TaskID, "notify", "dispatch queue full, delivering inline")
		return false
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for job := range d.jobs {
		_ = d.deliver(job.ctx, job.actorID, job.delivery)
	}
}

// deliver sends one notification and records the outcome.
func (d *Dispatcher) deliver(ctx context.Context, actorID string, dl Delivery) error {
	n := dl.Notification
	sendCtx := ctx
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	err := d.notifier.Send(sendCtx, dl.Recipient.Phone, n)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
	}

	activity := &domain.Activity{
		CreatedAt:             d.clock.Now(),
		TaskID:                n.TaskID,
		Action:                domain.ActionNotificationSent,
		NewValue:              string(n.UpdateType),
		Notes:                 fmt.Sprintf("to %s (%s)", dl.Recipient.Name, dl.Recipient.Phone),
		PerformedBy:           actorID,
		NotificationAttempted: true,
	}
	if err != nil {
		activity.Action = domain.ActionNotificationFailed
		activity.Notes += ": " + err.Error()
		d.logger.Warn(n.TaskID, "notify", fmt.Sprintf("%s notification to %s failed: %v", n.UpdateType, dl.Recipient.Name, err))
	} else {
		d.logger.Info(n.TaskID, "notify", fmt.Sprintf("%s notification sent to %s", n.UpdateType, dl.Recipient.Name))
	}
	d.telemetry.RecordNotification(ctx, n.UpdateType, err == nil)

	if recErr := d.recorder.Append(ctx, activity); recErr != nil {
		d.logger.Error(n.TaskID, "notify", fmt.Sprintf("record notification outcome: %v", recErr))
	}
	return err
}

func warning(dl Delivery, err error) string {
	return fmt.Sprintf("%s notification to %s not delivered: %v", dl.Notification.UpdateType, dl.Recipient.Name, err)
}
