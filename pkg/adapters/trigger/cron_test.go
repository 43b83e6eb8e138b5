package trigger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingScheduler struct {
	calls    []time.Time
	deadline bool
	err      error
}

func (s *recordingScheduler) RunPass(ctx context.Context, now time.Time) (*domain.PassResult, error) {
	s.calls = append(s.calls, now)
	_, s.deadline = ctx.Deadline()
	return &domain.PassResult{}, s.err
}

func TestRunOnce(t *testing.T) {
	s := &recordingScheduler{err: errors.New("boom")}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	RunOnce(context.Background(), s, at)

	require.Len(t, s.calls, 1)
	assert.True(t, s.calls[0].Equal(at))
	assert.True(t, s.deadline)
}

func TestStartCron(t *testing.T) {
	_, err := StartCron("not a cron spec", &recordingScheduler{})
	assert.Error(t, err)

	c, err := StartCron("@every 1h", &recordingScheduler{})
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
