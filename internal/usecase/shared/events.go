package shared

import (
	"slices"
	"sync"

	"github.com/runoshun/whatstask/internal/domain"
)

// TaskChange describes a committed lifecycle mutation.
type TaskChange struct {
	Task    *domain.Task
	Action  domain.Action
	ActorID string
}

// Events is the observer hub of the lifecycle engine. Subscribers are called
// synchronously after a mutation commits, each with its own copy of the task.
type Events struct {
	subs    map[int]func(TaskChange)
	onPanic []func(TaskChange, any)
	mu      sync.RWMutex
	next    int
}

// NewEvents creates an empty hub.
func NewEvents() *Events {
	return &Events{subs: make(map[int]func(TaskChange))}
}

// OnTaskChanged registers fn and returns a function that removes it.
func (e *Events) OnTaskChanged(fn func(TaskChange)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// OnPanic registers a hook that fires when a subscriber panics.
func (e *Events) OnPanic(fn func(TaskChange, any)) {
	e.mu.Lock()
	e.onPanic = append(e.onPanic, fn)
	e.mu.Unlock()
}

// Publish delivers c to every subscriber in registration order.
// A panicking subscriber does not stop the others.
func (e *Events) Publish(c TaskChange) {
	if e == nil {
		return
	}

	e.mu.RLock()
	ids := make([]int, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(TaskChange), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, e.subs[id])
	}
	hooks := slices.Clone(e.onPanic)
	e.mu.RUnlock()

	for _, fn := range subs {
		change := c
		change.Task = c.Task.Clone()
		e.call(fn, change, hooks)
	}
}

func (e *Events) call(fn func(TaskChange), c TaskChange, hooks []func(TaskChange, any)) {
	defer func() {
		if r := recover(); r != nil {
			for _, h := range hooks {
				func() {
					defer func() { recover() }() //nolint:errcheck
					h(c, r)
				}()
			}
		}
	}()
	fn(c)
}
