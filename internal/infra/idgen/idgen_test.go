package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_IsTimeOrdered(t *testing.T) {
	prev := New()
	for range 100 {
		next := New()
		assert.True(t, Valid(next))
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("task-1"))
	assert.True(t, Valid("01890a5d-ac96-774b-bcce-b302099a8057"))
}
