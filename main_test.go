package main

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noPrune(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestScheduleRetentionZeroDaysDisablesSweep(t *testing.T) {
	sweeper := cron.New()

	require.NoError(t, scheduleRetention(sweeper, noPrune, 0, "0 3 * * *"))

	assert.Empty(t, sweeper.Entries())
}

func TestScheduleRetentionRegistersJob(t *testing.T) {
	sweeper := cron.New()

	require.NoError(t, scheduleRetention(sweeper, noPrune, 90, "0 3 * * *"))

	assert.Len(t, sweeper.Entries(), 1)
}

func TestScheduleRetentionInvalidSchedule(t *testing.T) {
	sweeper := cron.New()

	err := scheduleRetention(sweeper, noPrune, 90, "not a schedule")

	assert.Error(t, err)
}

func TestScheduleRetentionCutoffRespectsDays(t *testing.T) {
	sweeper := cron.New()
	var got time.Time
	prune := func(ctx context.Context, cutoff time.Time) (int64, error) {
		got = cutoff
		return 3, nil
	}

	require.NoError(t, scheduleRetention(sweeper, prune, 30, "* * * * *"))
	require.Len(t, sweeper.Entries(), 1)

	sweeper.Entries()[0].Job.Run()

	want := time.Now().UTC().AddDate(0, 0, -30)
	assert.WithinDuration(t, want, got, time.Minute)
}
