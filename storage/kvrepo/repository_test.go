package kvrepo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/acadify/core/academic"
	"github.com/trezcool/acadify/core/session"
	"github.com/trezcool/acadify/storage/kvrepo"
	inmemstore "github.com/trezcool/acadify/storage/kvstore/inmem"
	"github.com/trezcool/acadify/tests"
)

func setup(t *testing.T, prefix string) (*kvrepo.Repository, *inmemstore.Store) {
	kv := inmemstore.Open()
	return kvrepo.New(kv, prefix, testutil.NewLogger()), kv
}

func TestRepository_keys(t *testing.T) {
	ctx := context.Background()
	repo, kv := setup(t, "")

	require.NoError(t, repo.SaveStudents(ctx, nil))
	require.NoError(t, repo.SaveSyllabus(ctx, academic.NewSyllabus()))
	require.NoError(t, repo.SaveQuizzes(ctx, nil))
	require.NoError(t, repo.SaveFeedback(ctx, nil))
	require.NoError(t, repo.SaveSpecialAttention(ctx, nil))
	require.NoError(t, repo.SaveSession(ctx, session.Session{Role: session.RoleHOD, ID: "H001", Name: "HOD - Dept"}))

	assert.ElementsMatch(t, []string{
		"acadify_students", "acadify_syllabus", "acadify_quizzes", "acadify_feedback", "acadify_special", "acadify_user",
	}, kv.Keys())

	raw, _, err := kv.Get(ctx, "acadify_user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"HOD","id":"H001","name":"HOD - Dept"}`, raw)

	prefixed, pkv := setup(t, "demo:")
	require.NoError(t, prefixed.SaveSpecialAttention(ctx, []string{"100001"}))
	assert.Equal(t, []string{"demo:acadify_special"}, pkv.Keys())
}

func TestRepository_absentCollections(t *testing.T) {
	ctx := context.Background()
	repo, _ := setup(t, "")

	for _, c := range academic.AllCollections {
		ok, err := repo.HasCollection(ctx, c)
		require.NoError(t, err)
		assert.False(t, ok, c)
	}
	students, err := repo.LoadStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
	syl, err := repo.LoadSyllabus(ctx)
	require.NoError(t, err)
	assert.Zero(t, syl.Len())
	sess, err := repo.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRepository_corruptCollections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		key  string
		load func(*kvrepo.Repository) error
	}{
		{"acadify_students", func(r *kvrepo.Repository) error { _, err := r.LoadStudents(ctx); return err }},
		{"acadify_syllabus", func(r *kvrepo.Repository) error { _, err := r.LoadSyllabus(ctx); return err }},
		{"acadify_quizzes", func(r *kvrepo.Repository) error { _, err := r.LoadQuizzes(ctx); return err }},
		{"acadify_feedback", func(r *kvrepo.Repository) error { _, err := r.LoadFeedback(ctx); return err }},
		{"acadify_special", func(r *kvrepo.Repository) error { _, err := r.LoadSpecialAttention(ctx); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			repo, kv := setup(t, "")
			require.NoError(t, kv.Set(ctx, tt.key, `{"oops`))

			err := tt.load(repo)
			assert.True(t, kvrepo.IsCorrupt(err), "want corrupt error, got %v", err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}

	t.Run("wrong shape", func(t *testing.T) {
		repo, kv := setup(t, "")
		require.NoError(t, kv.Set(ctx, "acadify_syllabus", `["Maths"]`))
		_, err := repo.LoadSyllabus(ctx)
		assert.True(t, kvrepo.IsCorrupt(err))
	})
}

func TestRepository_repairs(t *testing.T) {
	ctx := context.Background()
	repo, kv := setup(t, "")

	require.NoError(t, kv.Set(ctx, "acadify_students",
		`[{"roll":"100001","name":"A"},{"roll":"","name":"B"},{"roll":"100001","name":"C"},{"roll":"100002","name":"D"}]`))
	require.NoError(t, kv.Set(ctx, "acadify_syllabus",
		`{"Maths":[{"id":"m-1","title":"Sets","deadline":""},{"id":"","title":"X"},{"id":"m-1","title":"Dup"}]}`))
	require.NoError(t, kv.Set(ctx, "acadify_quizzes", `[
		{"id":"q1","title":"Q","subject":"Maths","topicId":"m-1",
		 "questions":[{"text":"a","options":["x","y"],"correctIndex":1}],
		 "results":{"100001":120,"100002":80,"999999":50}},
		{"id":"","title":"Nameless","subject":"Maths","topicId":"m-1"},
		{"id":"q1","title":"Dup","subject":"Maths","topicId":"m-1"},
		{"id":"q2","title":"No results","subject":"Maths","topicId":"m-1","results":null},
		{"id":"q3","title":"One option","subject":"Maths","topicId":"m-1",
		 "questions":[{"text":"a","options":["only"],"correctIndex":0}]},
		{"id":"q4","title":"Answer out of range","subject":"Maths","topicId":"m-1",
		 "questions":[{"text":"a","options":["x","y"],"correctIndex":7}]},
		{"id":"q5","title":"Unknown subject","subject":"Nowhere","topicId":"m-1"},
		{"id":"q6","title":"Unknown topic","subject":"Maths","topicId":"zz"}
	]`))
	require.NoError(t, kv.Set(ctx, "acadify_feedback",
		`{"100001":[{"rating":0},{"rating":4,"text":"ok"},{"rating":9}]}`))
	require.NoError(t, kv.Set(ctx, "acadify_special", `["100001","","100001","100002"]`))

	students, err := repo.LoadStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []academic.Student{{Roll: "100001", Name: "A"}, {Roll: "100002", Name: "D"}}, students)

	syl, err := repo.LoadSyllabus(ctx)
	require.NoError(t, err)
	topics, _ := syl.Topics("Maths")
	assert.Equal(t, []academic.Topic{{ID: "m-1", Title: "Sets"}}, topics)

	quizzes, err := repo.LoadQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	assert.Equal(t, "q1", quizzes[0].ID)
	assert.Equal(t, "Q", quizzes[0].Title)
	assert.Equal(t, map[string]int{"100002": 80}, quizzes[0].Results)
	assert.Equal(t, "q2", quizzes[1].ID)
	assert.NotNil(t, quizzes[1].Results)

	fb, err := repo.LoadFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, fb["100001"], 1)
	assert.Equal(t, "ok", fb["100001"][0].Text)

	rolls, err := repo.LoadSpecialAttention(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"100001", "100002"}, rolls)
}

func TestRepository_syllabusRoundTripIsStable(t *testing.T) {
	ctx := context.Background()
	repo, kv := setup(t, "")

	require.NoError(t, repo.SaveSyllabus(ctx, academic.DemoSyllabus()))
	first, _, err := kv.Get(ctx, "acadify_syllabus")
	require.NoError(t, err)

	syl, err := repo.LoadSyllabus(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveSyllabus(ctx, syl))
	second, _, err := kv.Get(ctx, "acadify_syllabus")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
