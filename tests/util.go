package testutil

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/academic"
	"github.com/trezcool/acadify/core/session"
	logsvc "github.com/trezcool/acadify/services/logger"
	"github.com/trezcool/acadify/storage/kvrepo"
	inmemstore "github.com/trezcool/acadify/storage/kvstore/inmem"
)

// Env is a wired set of components over an in-memory store.
type Env struct {
	KV       *inmemstore.Store
	Repo     *kvrepo.Repository
	Service  *academic.Service
	Sessions *session.Manager
	Logger   core.Logger
}

// NewLogger returns a logger that prints nowhere and never reports.
func NewLogger() *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST", TestMode: true})
}

// NewEnv wires an empty environment. Nothing is seeded.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	logger := NewLogger()
	kv := inmemstore.Open()
	repo := kvrepo.New(kv, "", logger)

	validate, translator := core.NewValidator()
	academic.InitValidators(validate, translator)
	svc := academic.NewService(repo, validate, translator, logger)

	return &Env{
		KV:       kv,
		Repo:     repo,
		Service:  svc,
		Sessions: session.NewManager(repo, svc, logger),
		Logger:   logger,
	}
}

// NewSeededEnv wires an environment holding the demo data.
func NewSeededEnv(t *testing.T) *Env {
	t.Helper()

	env := NewEnv(t)
	if err := env.Service.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	return env
}

// Snapshot returns every stored key and its raw value.
func (env *Env) Snapshot(t *testing.T) map[string]string {
	t.Helper()

	ctx := context.Background()
	snap := make(map[string]string)
	for _, key := range env.KV.Keys() {
		val, ok, err := env.KV.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", key, err)
		}
		if ok {
			snap[key] = val
		}
	}
	return snap
}

// CompleteTopic marks a topic completed, failing the test otherwise.
func CompleteTopic(t *testing.T, svc *academic.Service, subject, topicID string) academic.Topic {
	t.Helper()

	ctx := context.Background()
	syl, err := svc.Syllabus(ctx)
	if err != nil {
		t.Fatalf("Syllabus() failed: %v", err)
	}
	topics, _ := syl.Topics(subject)
	for _, topic := range topics {
		if topic.ID == topicID && topic.Completed {
			return topic
		}
	}
	topic, err := svc.ToggleTopicCompletion(ctx, subject, topicID)
	if err != nil {
		t.Fatalf("ToggleTopicCompletion() failed: %v", err)
	}
	return topic
}
