package academic_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/academic"
	"github.com/trezcool/acadify/tests"
)

func TestService_StudentProfile(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewSeededEnv(t)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		fixNow(t, start.Add(time.Duration(i)*time.Hour))
		_, err := env.Service.AppendFeedback(ctx, "100004", i, "")
		require.NoError(t, err)
	}
	require.NoError(t, env.Service.RecordQuizResult(ctx, "q1", "100004", 67))
	_, err := env.Service.ToggleSpecialAttention(ctx, "100004")
	require.NoError(t, err)

	profile, err := env.Service.StudentProfile(ctx, "100004")
	require.NoError(t, err)
	assert.Equal(t, "Aman Verma", profile.Student.Name)
	assert.True(t, profile.Special)
	assert.Len(t, profile.Progress, 6)

	require.Len(t, profile.RecentFeedback, 3)
	ratings := []int{profile.RecentFeedback[0].Rating, profile.RecentFeedback[1].Rating, profile.RecentFeedback[2].Rating}
	assert.Equal(t, []int{5, 4, 3}, ratings)

	assert.Equal(t, []academic.QuizScore{{QuizID: "q1", Title: "Quiz 1 - Intro to Programming", Score: 67, Taken: true}}, profile.Scores)

	other, err := env.Service.StudentProfile(ctx, "100005")
	require.NoError(t, err)
	assert.False(t, other.Special)
	assert.Empty(t, other.RecentFeedback)
	assert.False(t, other.Scores[0].Taken)

	_, err = env.Service.StudentProfile(ctx, "999999")
	assert.True(t, core.IsNotFound(err))
}

func TestService_QuizReport(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewSeededEnv(t)

	for _, r := range []struct {
		roll  string
		score int
	}{{"100010", 50}, {"100002", 100}, {"100031", 0}} {
		require.NoError(t, env.Service.RecordQuizResult(ctx, "q1", r.roll, r.score))
	}

	report, err := env.Service.QuizReport(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, []academic.QuizResultRow{
		{Roll: "100002", Name: "Aditya Sharma", Score: 100},
		{Roll: "100010", Name: "Darsh Patel", Score: 50},
		{Roll: "100031", Name: "Om Prakash", Score: 0},
	}, report.Rows)

	_, err = env.Service.QuizReport(ctx, "q9")
	assert.True(t, core.IsNotFound(err))
}

func TestService_DepartmentOverview(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewSeededEnv(t)
	_, err := env.Service.ToggleSpecialAttention(ctx, "100050")
	require.NoError(t, err)

	overview, err := env.Service.DepartmentOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, overview.StudentCount)
	assert.Equal(t, 1, overview.QuizCount)
	assert.Len(t, overview.Progress, 6)
	require.Len(t, overview.SpecialAttention, 1)
	assert.Equal(t, "Yashika Mehta", overview.SpecialAttention[0].Name)
}
