package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_CanManage(t *testing.T) {
	task := &Task{CreatedBy: "creator"}

	assert.True(t, (&User{ID: "a", Role: RoleAdmin}).CanManage(task))
	assert.True(t, (&User{ID: "m", Role: RoleManager}).CanManage(task))
	assert.True(t, (&User{ID: "creator", Role: RoleUser}).CanManage(task))
	assert.False(t, (&User{ID: "other", Role: RoleUser}).CanManage(task))
	assert.False(t, (&User{ID: "", Role: RoleUser}).CanManage(&Task{}))
}

func TestUser_Name(t *testing.T) {
	assert.Equal(t, "Alice", (&User{ID: "u1", FullName: "Alice"}).Name())
	assert.Equal(t, "u1", (&User{ID: "u1"}).Name())
}

func TestRecipientOf(t *testing.T) {
	r, ok := RecipientOf(ExternalAssignee("Bob", "5550001111"))
	assert.True(t, ok)
	assert.True(t, r.IsExternal)
	assert.Equal(t, "Bob", r.Name)

	_, ok = RecipientOf(InternalAssignee("u1", "Alice", ""))
	assert.False(t, ok)
}
