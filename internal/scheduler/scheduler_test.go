package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestAdd_InvalidSpec(t *testing.T) {
	s := New(nil)
	err := s.Add("backup", "every tuesday", noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup")
	assert.False(t, s.IsRunning())
}

func TestStartStop(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Add("backup", "0 21 * * *", noop))
	assert.True(t, s.IsRunning())

	s.Start()
	next, ok := s.NextRun()
	require.True(t, ok)
	assert.Equal(t, 21, next.Hour())
	s.Stop()

	assert.ErrorIs(t, s.ctx.Err(), context.Canceled)
}

func TestNextRun_NoJobs(t *testing.T) {
	_, ok := New(nil).NextRun()
	assert.False(t, ok)
}
