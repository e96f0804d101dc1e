package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskLocks_SerializesSameTask(t *testing.T) {
	locks := NewTaskLocks()
	var wg sync.WaitGroup
	counter := 0

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("t1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.Len())
}

func TestTaskLocks_IndependentTasks(t *testing.T) {
	locks := NewTaskLocks()

	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")
	assert.Equal(t, 2, locks.Len())

	unlockA()
	unlockA()
	unlockB()
	assert.Zero(t, locks.Len())
}
