package shared

import (
	"context"
	"testing"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() *Resolver {
	return NewResolver(userMap{
		"u1": {ID: "u1", FullName: "Alice", Role: domain.RoleUser, PhoneNumber: "+1 555 000 1111"},
		"u2": {ID: "u2", FullName: "Bob", Role: domain.RoleUser},
	})
}

func TestResolver_Resolve_Internal(t *testing.T) {
	res, err := newTestResolver().Resolve(context.Background(), InternalCandidate("u1"))

	require.NoError(t, err)
	assert.Equal(t, domain.InternalAssignee("u1", "Alice", "+15550001111"), res.Assignee)
	require.NotNil(t, res.Plan)
	assert.Equal(t, "+15550001111", res.Plan.Phone)
	assert.Equal(t, "Alice", res.Plan.Name)
	assert.False(t, res.Plan.IsExternal)
}

func TestResolver_Resolve_InternalWithoutPhone(t *testing.T) {
	res, err := newTestResolver().Resolve(context.Background(), InternalCandidate("u2"))

	require.NoError(t, err)
	assert.True(t, res.Assignee.IsUser("u2"))
	assert.Nil(t, res.Plan)
}

func TestResolver_Resolve_UnknownUser(t *testing.T) {
	_, err := newTestResolver().Resolve(context.Background(), InternalCandidate("ghost"))

	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestResolver_Resolve_External(t *testing.T) {
	// "é" written as e + combining acute must come back composed.
	res, err := newTestResolver().Resolve(context.Background(), ExternalCandidate("  Jose\u0301 ", "(555) 123-4567"))

	require.NoError(t, err)
	assert.Equal(t, "Jos\u00e9", res.Assignee.Name)
	assert.Equal(t, "5551234567", res.Assignee.Phone)
	require.NotNil(t, res.Plan)
	assert.True(t, res.Plan.IsExternal)
}

func TestResolver_Resolve_InvalidExternal(t *testing.T) {
	tests := []struct {
		name  string
		cname string
		phone string
	}{
		{"short name", " A ", "5551234567"},
		{"empty name", "", "5551234567"},
		{"too few digits", "Bob", "555-12"},
		{"too many digits", "Bob", "+1234567890123456"},
		{"letters", "Bob", "555-CALL-NOW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestResolver().Resolve(context.Background(), ExternalCandidate(tt.cname, tt.phone))
			assert.ErrorIs(t, err, domain.ErrInvalidExternalContact)
			assert.Equal(t, domain.KindValidationFailed, domain.Classify(err))
		})
	}
}

func TestResolver_Resolve_UnknownKind(t *testing.T) {
	_, err := newTestResolver().Resolve(context.Background(), Candidate{})

	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}
