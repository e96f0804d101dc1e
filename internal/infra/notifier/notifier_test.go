package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/ratelimit"
	"github.com/runoshun/whatstask/internal/testutil"
)

type stubLimiter struct {
	err     error
	allowed map[string]int // Remaining budget per key
	seen    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.seen = append(s.seen, key)
	if s.err != nil {
		return false, s.err
	}
	if s.allowed[key] <= 0 {
		return false, nil
	}
	s.allowed[key]--
	return true, nil
}

func testNotification() domain.Notification {
	return domain.Notification{TaskID: "t1", TaskTitle: "Fix gate", UpdateType: domain.UpdateAssigned}
}

func TestLog_Send(t *testing.T) {
	// Setup
	logger := &testutil.MockLogger{}
	n := NewLog(logger, func(n domain.Notification) string { return "body:" + n.TaskTitle })

	// Execute
	err := n.Send(context.Background(), "+1 555 0001", testNotification())

	// Assert
	require.NoError(t, err)
	require.Len(t, logger.Entries, 1)
	e := logger.Entries[0]
	assert.Equal(t, "info", e.Level)
	assert.Equal(t, "t1", e.TaskID)
	assert.Equal(t, "notify", e.Category)
	assert.Contains(t, e.Msg, "+15550001")
	assert.Contains(t, e.Msg, "body:Fix gate")
}

func TestLog_Send_WithoutRenderer(t *testing.T) {
	logger := &testutil.MockLogger{}

	err := NewLog(logger, nil).Send(context.Background(), "+15550001", testNotification())

	require.NoError(t, err)
	assert.Contains(t, logger.Entries[0].Msg, "assigned")
}

func TestNop_Send(t *testing.T) {
	err := Nop{}.Send(context.Background(), "+15550001", testNotification())

	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestRateLimited_Send(t *testing.T) {
	// Setup
	inner := testutil.NewMockNotifier()
	lim := &stubLimiter{allowed: map[string]int{"+15550001": 1}}
	n := NewRateLimited(inner, lim)
	ctx := context.Background()

	// Execute
	first := n.Send(ctx, "+1 555 0001", testNotification())
	second := n.Send(ctx, "+1-555-0001", testNotification())

	// Assert
	require.NoError(t, first)
	assert.ErrorIs(t, second, ErrRateLimited)
	assert.Len(t, inner.Messages(), 1)
	assert.Equal(t, []string{"+15550001", "+15550001"}, lim.seen)
}

func TestRateLimited_Send_LimiterError(t *testing.T) {
	inner := testutil.NewMockNotifier()
	boom := errors.New("redis down")
	n := NewRateLimited(inner, &stubLimiter{err: boom})

	err := n.Send(context.Background(), "+15550001", testNotification())

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, inner.Messages())
}

func TestNewRateLimited_NilLimiter(t *testing.T) {
	inner := testutil.NewMockNotifier()

	n := NewRateLimited(inner, nil)

	assert.Same(t, inner, n)
}

func TestRateLimited_WithMemoryLimiter(t *testing.T) {
	inner := testutil.NewMockNotifier()
	n := NewRateLimited(inner, ratelimit.NewMemory(ratelimit.Policy{PerMinute: 1, Burst: 2}))
	ctx := context.Background()

	var errs []error
	for range 3 {
		errs = append(errs, n.Send(ctx, "+15550001", testNotification()))
	}

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], ErrRateLimited)
}
