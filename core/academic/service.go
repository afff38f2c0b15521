package academic

import (
	"context"
	"fmt"
	"sync"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	errInvalidSubject     = errors.New("invalid subject")
	errInvalidTopic       = errors.New("invalid topic")
	errTopicNotCompleted  = errors.New("topic not completed")
	errBlankTitle         = errors.New("title cannot be blank")
	errScoreOutOfRange    = errors.New("score must be between 0 and 100")
	errInvalidCorrectIdx  = errors.New("the correct answer must be one of the options")
	errTopicIDsExhausted  = errors.New("could not allocate a topic id")
	maxTopicIDAllocations = 1000
)

type (
	// Repository loads and replaces whole collections. Loading an absent collection yields its empty value.
	Repository interface {
		HasCollection(ctx context.Context, c Collection) (bool, error)
		LoadStudents(ctx context.Context) ([]Student, error)
		SaveStudents(ctx context.Context, students []Student) error
		LoadSyllabus(ctx context.Context) (Syllabus, error)
		SaveSyllabus(ctx context.Context, syllabus Syllabus) error
		LoadQuizzes(ctx context.Context) ([]Quiz, error)
		SaveQuizzes(ctx context.Context, quizzes []Quiz) error
		LoadFeedback(ctx context.Context) (Feedback, error)
		SaveFeedback(ctx context.Context, feedback Feedback) error
		LoadSpecialAttention(ctx context.Context) ([]string, error)
		SaveSpecialAttention(ctx context.Context, rolls []string) error
	}

	// Service owns the academic collections and enforces their invariants.
	// Every mutator validates fully before its single write, so a failure leaves the store unchanged.
	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger

		mu sync.Mutex // serializes mutators

		subsMu  sync.Mutex
		subs    map[int]func(Change)
		nextSub int
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(translator, "translator"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
		logger:     logger,
		subs:       make(map[int]func(Change)),
	}
}

// Subscribe registers fn to be called after every successful write. The returned func unregisters it.
func (svc *Service) Subscribe(fn func(Change)) (unsubscribe func()) {
	svc.subsMu.Lock()
	defer svc.subsMu.Unlock()

	id := svc.nextSub
	svc.nextSub++
	svc.subs[id] = fn
	return func() {
		svc.subsMu.Lock()
		defer svc.subsMu.Unlock()
		delete(svc.subs, id)
	}
}

func (svc *Service) notify(c Collection) {
	svc.subsMu.Lock()
	fns := make([]func(Change), 0, len(svc.subs))
	for _, fn := range svc.subs {
		fns = append(fns, fn)
	}
	svc.subsMu.Unlock()

	for _, fn := range fns {
		fn(Change{Collection: c})
	}
}

// mutate runs fn under the write lock and notifies subscribers if it succeeded.
func (svc *Service) mutate(c Collection, fn func() error) error {
	svc.mu.Lock()
	err := fn()
	svc.mu.Unlock()

	if err != nil {
		return err
	}
	svc.notify(c)
	return nil
}

// Readers

func (svc *Service) Students(ctx context.Context) ([]Student, error) {
	return svc.repo.LoadStudents(ctx)
}

func (svc *Service) GetStudent(ctx context.Context, roll string) (Student, error) {
	students, err := svc.repo.LoadStudents(ctx)
	if err != nil {
		return Student{}, err
	}
	roll = core.CleanString(roll)
	for _, st := range students {
		if st.Roll == roll {
			return st, nil
		}
	}
	return Student{}, core.NewNotFoundError("student", roll)
}

func (svc *Service) Syllabus(ctx context.Context) (Syllabus, error) {
	return svc.repo.LoadSyllabus(ctx)
}

func (svc *Service) Quizzes(ctx context.Context) ([]Quiz, error) {
	return svc.repo.LoadQuizzes(ctx)
}

func (svc *Service) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	quizzes, err := svc.repo.LoadQuizzes(ctx)
	if err != nil {
		return Quiz{}, err
	}
	if i := indexQuiz(quizzes, id); i >= 0 {
		return quizzes[i], nil
	}
	return Quiz{}, core.NewNotFoundError("quiz", id)
}

func (svc *Service) Feedback(ctx context.Context) (Feedback, error) {
	return svc.repo.LoadFeedback(ctx)
}

// FeedbackFor returns a student's feedback entries, oldest first.
func (svc *Service) FeedbackFor(ctx context.Context, roll string) ([]FeedbackEntry, error) {
	fb, err := svc.repo.LoadFeedback(ctx)
	if err != nil {
		return nil, err
	}
	return fb[roll], nil
}

func (svc *Service) SpecialAttention(ctx context.Context) ([]string, error) {
	return svc.repo.LoadSpecialAttention(ctx)
}

func (svc *Service) IsSpecial(ctx context.Context, roll string) (bool, error) {
	rolls, err := svc.repo.LoadSpecialAttention(ctx)
	if err != nil {
		return false, err
	}
	return indexString(rolls, roll) >= 0, nil
}

// ComputeSubjectProgress returns the share of completed topics per subject, in syllabus order.
// A subject without topics is at 0%.
func (svc *Service) ComputeSubjectProgress(ctx context.Context) ([]SubjectProgress, error) {
	syl, err := svc.repo.LoadSyllabus(ctx)
	if err != nil {
		return nil, err
	}
	return subjectProgress(syl), nil
}

func subjectProgress(syl Syllabus) []SubjectProgress {
	progress := make([]SubjectProgress, 0, syl.Len())
	for _, subject := range syl.Subjects() {
		topics, _ := syl.Topics(subject)
		var done int
		for _, t := range topics {
			if t.Completed {
				done++
			}
		}
		progress = append(progress, SubjectProgress{Subject: subject, Percent: percent(done, len(topics))})
	}
	return progress
}

// Syllabus mutators

// AddTopic appends a new, uncompleted topic to an existing subject.
func (svc *Service) AddTopic(ctx context.Context, subject, title string) (Topic, error) {
	var topic Topic
	title = core.CleanString(title)
	if title == "" {
		return Topic{}, core.NewValidationError(errBlankTitle, core.FieldError{Field: "title", Error: errBlankTitle.Error()})
	}

	err := svc.mutate(CollectionSyllabus, func() error {
		syl, err := svc.repo.LoadSyllabus(ctx)
		if err != nil {
			return err
		}
		topics, ok := syl.Topics(subject)
		if !ok {
			return core.NewNotFoundError("subject", subject)
		}
		id, err := newTopicID(subject, topics)
		if err != nil {
			return err
		}

		topic = Topic{ID: id, Title: title}
		next := syl.Clone()
		next.SetTopics(subject, append(topics, topic))
		return errors.Wrap(svc.repo.SaveSyllabus(ctx, next), "saving syllabus")
	})
	if err != nil {
		return Topic{}, err
	}
	return topic, nil
}

// newTopicID derives an id from the subject and the current time, moving forward until it is unused.
func newTopicID(subject string, topics []Topic) (string, error) {
	ts := NowFunc().UnixNano() / int64(time.Millisecond)
	for i := 0; i < maxTopicIDAllocations; i++ {
		id := fmt.Sprintf("%s-%d", subject, ts+int64(i))
		if indexTopic(topics, id) < 0 {
			return id, nil
		}
	}
	return "", errTopicIDsExhausted
}

func (svc *Service) ToggleTopicCompletion(ctx context.Context, subject, topicID string) (Topic, error) {
	return svc.updateTopic(ctx, subject, topicID, func(t *Topic) {
		t.Completed = !t.Completed
	})
}

// SetTopicDeadline sets or, with a nil deadline, clears a topic deadline.
func (svc *Service) SetTopicDeadline(ctx context.Context, subject, topicID string, deadline *Date) (Topic, error) {
	return svc.updateTopic(ctx, subject, topicID, func(t *Topic) {
		if deadline == nil || deadline.IsZero() {
			t.Deadline = nil
			return
		}
		d := *deadline
		t.Deadline = &d
	})
}

func (svc *Service) updateTopic(ctx context.Context, subject, topicID string, update func(*Topic)) (Topic, error) {
	var topic Topic
	err := svc.mutate(CollectionSyllabus, func() error {
		syl, err := svc.repo.LoadSyllabus(ctx)
		if err != nil {
			return err
		}
		topics, ok := syl.Topics(subject)
		if !ok {
			return core.NewNotFoundError("subject", subject)
		}
		i := indexTopic(topics, topicID)
		if i < 0 {
			return core.NewNotFoundError("topic", topicID)
		}

		update(&topics[i])
		topic = topics[i]
		next := syl.Clone()
		next.SetTopics(subject, topics)
		return errors.Wrap(svc.repo.SaveSyllabus(ctx, next), "saving syllabus")
	})
	if err != nil {
		return Topic{}, err
	}
	return topic, nil
}

// Quiz mutators

// CreateQuiz stores a new quiz for a completed topic.
//
// The completion gate is checked at creation time only: marking the topic incomplete later
// does not invalidate the quiz, so results already recorded for it stay valid. Do not turn
// this into a continuous check.
func (svc *Service) CreateQuiz(ctx context.Context, draft QuizDraft) (Quiz, error) {
	draft.Title = core.CleanString(draft.Title)
	if err := svc.validate.Struct(draft); err != nil {
		return Quiz{}, core.TranslateValidationErrors(err, svc.translator)
	}
	for i, q := range draft.Questions {
		if !q.Valid() {
			return Quiz{}, core.NewValidationError(errInvalidCorrectIdx, core.FieldError{
				Field: fmt.Sprintf("questions[%d].correctIndex", i),
				Error: errInvalidCorrectIdx.Error(),
			})
		}
	}

	var quiz Quiz
	err := svc.mutate(CollectionQuizzes, func() error {
		syl, err := svc.repo.LoadSyllabus(ctx)
		if err != nil {
			return err
		}
		topics, ok := syl.Topics(draft.Subject)
		if !ok {
			return core.NewValidationError(errInvalidSubject, core.FieldError{Field: "subject", Error: errInvalidSubject.Error()})
		}
		i := indexTopic(topics, draft.TopicID)
		if i < 0 {
			return core.NewValidationError(errInvalidTopic, core.FieldError{Field: "topicId", Error: errInvalidTopic.Error()})
		}
		if !topics[i].Completed {
			return core.NewValidationError(errTopicNotCompleted, core.FieldError{Field: "topicId", Error: errTopicNotCompleted.Error()})
		}

		quizzes, err := svc.repo.LoadQuizzes(ctx)
		if err != nil {
			return err
		}
		quiz = Quiz{
			ID:        "q-" + uuid.NewString(),
			Title:     draft.Title,
			Subject:   draft.Subject,
			TopicID:   draft.TopicID,
			Questions: draft.Questions,
			Results:   make(map[string]int),
		}.clone()
		next := append(append(make([]Quiz, 0, len(quizzes)+1), quizzes...), quiz)
		return errors.Wrap(svc.repo.SaveQuizzes(ctx, next), "saving quizzes")
	})
	if err != nil {
		return Quiz{}, err
	}
	return quiz, nil
}

// RecordQuizResult stores a student's score for a quiz, replacing any earlier one.
func (svc *Service) RecordQuizResult(ctx context.Context, quizID, roll string, score int) error {
	roll = core.CleanString(roll)
	if score < 0 || score > 100 {
		return core.NewValidationError(errScoreOutOfRange, core.FieldError{Field: "score", Error: errScoreOutOfRange.Error()})
	}

	return svc.mutate(CollectionQuizzes, func() error {
		quizzes, err := svc.repo.LoadQuizzes(ctx)
		if err != nil {
			return err
		}
		i := indexQuiz(quizzes, quizID)
		if i < 0 {
			return core.NewNotFoundError("quiz", quizID)
		}
		if _, err = svc.GetStudent(ctx, roll); err != nil {
			return err
		}

		next := append([]Quiz(nil), quizzes...)
		next[i] = quizzes[i].clone()
		next[i].Results[roll] = score
		return errors.Wrap(svc.repo.SaveQuizzes(ctx, next), "saving quizzes")
	})
}

// SubmitQuiz scores a student's answers and records the score.
func (svc *Service) SubmitQuiz(ctx context.Context, quizID, roll string, answers map[int]int) (int, error) {
	quiz, err := svc.GetQuiz(ctx, quizID)
	if err != nil {
		return 0, err
	}
	score := ScoreSubmission(quiz, answers)
	if err = svc.RecordQuizResult(ctx, quizID, roll, score); err != nil {
		return 0, err
	}
	return score, nil
}

// Feedback mutators

// AppendFeedback adds an entry to a student's feedback. Empty text is allowed.
func (svc *Service) AppendFeedback(ctx context.Context, roll string, rating int, text string) (FeedbackEntry, error) {
	nf := NewFeedback{Roll: core.CleanString(roll), Rating: rating, Text: text}
	if err := svc.validate.Struct(nf); err != nil {
		return FeedbackEntry{}, core.TranslateValidationErrors(err, svc.translator)
	}

	var entry FeedbackEntry
	err := svc.mutate(CollectionFeedback, func() error {
		if _, err := svc.GetStudent(ctx, nf.Roll); err != nil {
			return err
		}
		fb, err := svc.repo.LoadFeedback(ctx)
		if err != nil {
			return err
		}

		entry = FeedbackEntry{Timestamp: NowFunc().UTC(), Rating: nf.Rating, Text: nf.Text}
		next := fb.clone()
		next[nf.Roll] = append(next[nf.Roll], entry)
		return errors.Wrap(svc.repo.SaveFeedback(ctx, next), "saving feedback")
	})
	if err != nil {
		return FeedbackEntry{}, err
	}
	return entry, nil
}

// Special attention mutators

// ToggleSpecialAttention flips a student's membership and returns the new state.
func (svc *Service) ToggleSpecialAttention(ctx context.Context, roll string) (bool, error) {
	var marked bool
	roll = core.CleanString(roll)

	err := svc.mutate(CollectionSpecialAttention, func() error {
		if _, err := svc.GetStudent(ctx, roll); err != nil {
			return err
		}
		rolls, err := svc.repo.LoadSpecialAttention(ctx)
		if err != nil {
			return err
		}

		next := make([]string, 0, len(rolls)+1)
		if i := indexString(rolls, roll); i >= 0 {
			next = append(append(next, rolls[:i]...), rolls[i+1:]...)
		} else {
			next = append(append(next, rolls...), roll)
			marked = true
		}
		return errors.Wrap(svc.repo.SaveSpecialAttention(ctx, next), "saving special attention")
	})
	if err != nil {
		return false, err
	}
	return marked, nil
}

func indexTopic(topics []Topic, id string) int {
	for i, t := range topics {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func indexQuiz(quizzes []Quiz, id string) int {
	for i, q := range quizzes {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func indexString(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
