package shared

import "sync"

// TaskLocks serializes the read-validate-write section of mutations
// against the same task. Entries are dropped when no holder remains.
type TaskLocks struct {
	locks map[string]*taskLock
	mu    sync.Mutex
}

type taskLock struct {
	mu   sync.Mutex
	refs int
}

// NewTaskLocks creates an empty lock table.
func NewTaskLocks() *TaskLocks {
	return &TaskLocks{locks: make(map[string]*taskLock)}
}

// Lock blocks until the caller holds the lock for taskID and returns the
// function that releases it.
func (l *TaskLocks) Lock(taskID string) (unlock func()) {
	l.mu.Lock()
	tl, ok := l.locks[taskID]
	if !ok {
		tl = &taskLock{}
		l.locks[taskID] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			tl.mu.Unlock()
			l.mu.Lock()
			tl.refs--
			if tl.refs == 0 {
				delete(l.locks, taskID)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of tasks currently locked or waited on.
func (l *TaskLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
