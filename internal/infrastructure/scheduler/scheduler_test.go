package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testJob is a configurable Job for scheduler tests.
type testJob struct {
	name  string
	runs  atomic.Int64
	err   error
	panic bool
}

func (j *testJob) Name() string        { return j.name }
func (j *testJob) Description() string { return "test job" }

func (j *testJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(Config{})
}

func TestScheduler_Register(t *testing.T) {
	s := newTestScheduler()

	err := s.Register(&testJob{name: "a"}, NewIntervalSchedule(time.Minute))
	require.NoError(t, err)

	err = s.Register(&testJob{name: "a"}, NewIntervalSchedule(time.Minute))
	assert.ErrorIs(t, err, ErrJobAlreadyExists)

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&testJob{name: "b"}, nil), ErrNilSchedule)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&testJob{name: "a"}, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestScheduler_EnableDisable(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&testJob{name: "a"}, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.DisableJob("a"))
	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].Enabled)

	require.NoError(t, s.EnableJob("a"))
	jobs = s.ListJobs()
	assert.True(t, jobs[0].Enabled)

	assert.ErrorIs(t, s.EnableJob("missing"), ErrJobNotFound)
	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "a"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), job.runs.Load())

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RunNowFailureRecorded(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "a", err: errors.New("refresh failed")}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "a")
	assert.Error(t, err)
	assert.False(t, result.Success)

	snapshot := s.GetMetrics().Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalExecutions)
	assert.Equal(t, int64(1), snapshot.TotalFailures)
}

// gateJob blocks in Run until released.
type gateJob struct {
	runs    atomic.Int64
	release chan struct{}
}

func (j *gateJob) Name() string        { return "gate" }
func (j *gateJob) Description() string { return "gate job" }

func (j *gateJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	<-j.release
	return nil
}

func TestScheduler_DueJobCollectedOnce(t *testing.T) {
	s := newTestScheduler()
	s.ctx = context.Background()

	job := &gateJob{release: make(chan struct{})}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))
	s.jobs["gate"].nextRun = time.Now().Add(-time.Minute)

	// Two ticks while the first execution has not finished; the second
	// must see the advanced nextRun and collect nothing.
	s.checkAndRunJobs()
	s.checkAndRunJobs()

	close(job.release)
	s.wg.Wait()

	assert.Equal(t, int64(1), job.runs.Load())
}

func TestScheduler_PanicIsConverted(t *testing.T) {
	s := newTestScheduler()
	s.ctx = context.Background()

	err := s.execute(&testJob{name: "a", panic: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job panicked")
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordExecution("a", 100*time.Millisecond, true)
	m.RecordExecution("a", 300*time.Millisecond, false)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalExecutions)
	assert.Equal(t, int64(1), snap.TotalSuccesses)
	assert.Equal(t, int64(1), snap.TotalFailures)
	assert.Equal(t, 0.5, snap.SuccessRate)
	assert.Equal(t, 200*time.Millisecond, snap.AverageDuration)
}
