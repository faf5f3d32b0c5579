package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/alexanderramin/focussync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

func TestSessionRecordRepo_ListBetween(t *testing.T) {
	repo := NewSQLiteSessionRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	yesterday := testutil.NewTestRecord(day.Add(-2*time.Hour), 25)
	morning := testutil.NewTestRecord(day.Add(9*time.Hour), 50, testutil.WithTag("Morning focus"))
	stoppedAt := day.Add(19*time.Hour + 4*time.Minute)
	evening := testutil.NewTestRecord(day.Add(19*time.Hour), 10,
		testutil.WithOutcome(domain.OutcomeStopped), testutil.WithEndedAt(stoppedAt))
	for _, r := range []*domain.SessionRecord{evening, yesterday, morning} {
		require.NoError(t, repo.Create(ctx, r))
	}

	list, err := repo.ListBetween(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, morning.ID, list[0].ID)
	assert.Equal(t, "Morning focus", list[0].Tag)
	assert.True(t, list[0].StartedAt.Equal(morning.StartedAt))
	assert.Equal(t, evening.ID, list[1].ID)
	assert.Equal(t, domain.OutcomeStopped, list[1].Outcome)
	assert.True(t, list[1].EndedAt.Equal(stoppedAt), "a stopped session keeps its actual end")
	assert.Equal(t, 600, list[1].DurationSeconds)
}

func TestSessionRecordRepo_SummarizeBetween(t *testing.T) {
	repo := NewSQLiteSessionRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestRecord(day.Add(9*time.Hour), 25)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestRecord(day.Add(10*time.Hour), 25)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestRecord(day.Add(11*time.Hour), 5, testutil.WithOutcome(domain.OutcomeStopped))))

	summary, err := repo.SummarizeBetween(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []domain.OutcomeSummary{
		{Outcome: domain.OutcomeCompleted, Count: 2, TotalSeconds: 3000},
		{Outcome: domain.OutcomeStopped, Count: 1, TotalSeconds: 300},
	}, summary)

	empty, err := repo.SummarizeBetween(ctx, day.Add(-48*time.Hour), day.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSessionRecordRepo_RejectsDuplicateID(t *testing.T) {
	repo := NewSQLiteSessionRecordRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	r := testutil.NewTestRecord(day, 25)

	require.NoError(t, repo.Create(ctx, r))
	assert.Error(t, repo.Create(ctx, r))
}
