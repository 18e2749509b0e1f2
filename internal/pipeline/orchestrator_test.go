package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_ProcessesSubmittedJob(t *testing.T) {
	cfg := testConfig()
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 4
	cfg.JobTTL = time.Hour

	a := NewAnalyzer(cfg, happyCompleter(), testLogger())
	cache, err := NewReportCache(4)
	require.NoError(t, err)
	orch := NewOrchestrator(cfg, a, cache, testLogger())
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	job := NewJob("episode.txt", "", []byte(strings.Repeat("abcde", 6)))
	require.NoError(t, orch.Submit(job))

	require.Eventually(t, func() bool {
		return orch.GetJob(job.ID).Snapshot().Status == StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
	require.NotNil(t, job.Report())
	assert.Equal(t, 1, cache.Len())
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.WorkerCount = 0 // nothing drains the queue
	cfg.MaxQueueSize = 1
	cfg.JobTTL = time.Hour

	a := NewAnalyzer(cfg, happyCompleter(), testLogger())
	orch := NewOrchestrator(cfg, a, nil, testLogger())
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	require.NoError(t, orch.Submit(NewJob("one.txt", "", nil)))
	assert.Equal(t, 1, orch.QueueDepth())

	overflow := NewJob("two.txt", "", nil)
	err := orch.Submit(overflow)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, overflow.Snapshot().Status)
	assert.Equal(t, "queue_full", overflow.Snapshot().Phase)
	// Rejected jobs stay queryable so callers can see why they failed.
	assert.NotNil(t, orch.GetJob(overflow.ID))
}

func TestOrchestrator_GetJobUnknownID(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	orch := NewOrchestrator(cfg, nil, nil, testLogger())
	assert.Nil(t, orch.GetJob("missing"))
}
