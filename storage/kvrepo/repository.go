// Package kvrepo persists the academic collections and the active session as JSON documents,
// one key each, in a core.KeyValueStore.
package kvrepo

import (
	"context"
	"encoding/json"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/academic"
	"github.com/trezcool/acadify/core/session"
)

const (
	keyNamespace = "acadify_"
	sessionKey   = "user"
)

var ErrCorruptCollection = errors.New("corrupt collection")

// IsCorrupt reports whether err was caused by undecodable stored JSON.
func IsCorrupt(err error) bool {
	return errors.Cause(err) == ErrCorruptCollection
}

type Repository struct {
	kv     core.KeyValueStore
	prefix string
	logger core.Logger
}

var (
	_ academic.Repository = (*Repository)(nil)
	_ session.Store       = (*Repository)(nil)
)

// New returns a Repository whose keys are `prefix` + "acadify_<name>".
func New(kv core.KeyValueStore, prefix string, logger core.Logger) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(kv, "kv"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Repository{kv: kv, prefix: prefix, logger: logger}
}

// Key returns the store key of a collection (or of the session, for "user").
func (repo *Repository) Key(name string) string {
	return repo.prefix + keyNamespace + name
}

func (repo *Repository) collectionKey(c academic.Collection) string {
	return repo.Key(string(c))
}

// load decodes the value at key into dst. It reports false, leaving dst untouched, when the key is absent.
func (repo *Repository) load(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := repo.kv.Get(ctx, key)
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", key)
	}
	if !ok {
		return false, nil
	}
	if err = json.Unmarshal([]byte(raw), dst); err != nil {
		return false, errors.Wrapf(ErrCorruptCollection, "%s: %v", key, err)
	}
	return true, nil
}

func (repo *Repository) save(ctx context.Context, key string, src interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	if err = repo.kv.Set(ctx, key, string(data)); err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	return nil
}

func (repo *Repository) warnRepaired(key string, dropped int) {
	if dropped > 0 {
		repo.logger.Warn("repaired stored collection", map[string]interface{}{"key": key, "dropped": dropped})
	}
}

func (repo *Repository) HasCollection(ctx context.Context, c academic.Collection) (bool, error) {
	key := repo.collectionKey(c)
	_, ok, err := repo.kv.Get(ctx, key)
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", key)
	}
	return ok, nil
}

// Students

func (repo *Repository) LoadStudents(ctx context.Context) ([]academic.Student, error) {
	key := repo.collectionKey(academic.CollectionStudents)
	var students []academic.Student
	if _, err := repo.load(ctx, key, &students); err != nil {
		return nil, err
	}
	students, dropped := repairStudents(students)
	repo.warnRepaired(key, dropped)
	return students, nil
}

func (repo *Repository) SaveStudents(ctx context.Context, students []academic.Student) error {
	if students == nil {
		students = []academic.Student{}
	}
	return repo.save(ctx, repo.collectionKey(academic.CollectionStudents), students)
}

// Syllabus

func (repo *Repository) LoadSyllabus(ctx context.Context) (academic.Syllabus, error) {
	key := repo.collectionKey(academic.CollectionSyllabus)
	syl := academic.NewSyllabus()
	if _, err := repo.load(ctx, key, &syl); err != nil {
		return academic.Syllabus{}, err
	}
	syl, dropped := repairSyllabus(syl)
	repo.warnRepaired(key, dropped)
	return syl, nil
}

func (repo *Repository) SaveSyllabus(ctx context.Context, syllabus academic.Syllabus) error {
	return repo.save(ctx, repo.collectionKey(academic.CollectionSyllabus), syllabus)
}

// Quizzes

func (repo *Repository) LoadQuizzes(ctx context.Context) ([]academic.Quiz, error) {
	key := repo.collectionKey(academic.CollectionQuizzes)
	var quizzes []academic.Quiz
	if _, err := repo.load(ctx, key, &quizzes); err != nil {
		return nil, err
	}
	students, err := repo.LoadStudents(ctx)
	if err != nil {
		return nil, err
	}
	syl, err := repo.LoadSyllabus(ctx)
	if err != nil {
		return nil, err
	}
	quizzes, dropped := repairQuizzes(quizzes, rosterOf(students), syl)
	repo.warnRepaired(key, dropped)
	return quizzes, nil
}

func (repo *Repository) SaveQuizzes(ctx context.Context, quizzes []academic.Quiz) error {
	if quizzes == nil {
		quizzes = []academic.Quiz{}
	}
	return repo.save(ctx, repo.collectionKey(academic.CollectionQuizzes), quizzes)
}

// Feedback

func (repo *Repository) LoadFeedback(ctx context.Context) (academic.Feedback, error) {
	key := repo.collectionKey(academic.CollectionFeedback)
	var fb academic.Feedback
	if _, err := repo.load(ctx, key, &fb); err != nil {
		return nil, err
	}
	fb, dropped := repairFeedback(fb)
	repo.warnRepaired(key, dropped)
	return fb, nil
}

func (repo *Repository) SaveFeedback(ctx context.Context, feedback academic.Feedback) error {
	if feedback == nil {
		feedback = academic.Feedback{}
	}
	return repo.save(ctx, repo.collectionKey(academic.CollectionFeedback), feedback)
}

// Special attention

func (repo *Repository) LoadSpecialAttention(ctx context.Context) ([]string, error) {
	key := repo.collectionKey(academic.CollectionSpecialAttention)
	var rolls []string
	if _, err := repo.load(ctx, key, &rolls); err != nil {
		return nil, err
	}
	rolls, dropped := repairRolls(rolls)
	repo.warnRepaired(key, dropped)
	return rolls, nil
}

func (repo *Repository) SaveSpecialAttention(ctx context.Context, rolls []string) error {
	if rolls == nil {
		rolls = []string{}
	}
	return repo.save(ctx, repo.collectionKey(academic.CollectionSpecialAttention), rolls)
}

// Session

func (repo *Repository) SaveSession(ctx context.Context, sess session.Session) error {
	return repo.save(ctx, repo.Key(sessionKey), sess)
}

// LoadSession returns nil when no session is stored. An undecodable record is removed.
func (repo *Repository) LoadSession(ctx context.Context) (*session.Session, error) {
	key := repo.Key(sessionKey)
	var sess session.Session
	ok, err := repo.load(ctx, key, &sess)
	if IsCorrupt(err) {
		repo.logger.Warn("dropping undecodable session", map[string]interface{}{"key": key})
		return nil, repo.DeleteSession(ctx)
	}
	if err != nil || !ok {
		return nil, err
	}
	return &sess, nil
}

func (repo *Repository) DeleteSession(ctx context.Context) error {
	key := repo.Key(sessionKey)
	return errors.Wrapf(repo.kv.Remove(ctx, key), "removing %s", key)
}
