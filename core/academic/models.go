package academic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Collections
const (
	CollectionStudents         Collection = "students"
	CollectionSyllabus         Collection = "syllabus"
	CollectionQuizzes          Collection = "quizzes"
	CollectionFeedback         Collection = "feedback"
	CollectionSpecialAttention Collection = "special"
)

var AllCollections = []Collection{
	CollectionStudents,
	CollectionSyllabus,
	CollectionQuizzes,
	CollectionFeedback,
	CollectionSpecialAttention,
}

type Collection string

// Change is sent to subscribers after a collection has been replaced.
type Change struct {
	Collection Collection
}

type Student struct {
	Roll  string `json:"roll"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DateLayout is the deadline format, as produced by a browser date input.
const DateLayout = "2006-01-02"

// Date is a calendar day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errors.Wrapf(err, "parsing date %q", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Topic struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Deadline  *Date  `json:"deadline"`
}

// Syllabus maps each subject to its ordered topics. Subjects keep their insertion order,
// including through JSON encoding. The zero value is an empty Syllabus.
type Syllabus struct {
	subjects []string
	topics   map[string][]Topic
}

func NewSyllabus() Syllabus {
	return Syllabus{topics: make(map[string][]Topic)}
}

// Subjects returns the subject names in order.
func (s Syllabus) Subjects() []string {
	return append([]string(nil), s.subjects...)
}

func (s Syllabus) HasSubject(subject string) bool {
	_, ok := s.topics[subject]
	return ok
}

// Topics returns a copy of the subject's topics.
func (s Syllabus) Topics(subject string) ([]Topic, bool) {
	topics, ok := s.topics[subject]
	if !ok {
		return nil, false
	}
	return append(make([]Topic, 0, len(topics)+1), topics...), true
}

func (s Syllabus) Len() int { return len(s.subjects) }

// SetTopics replaces the topics of a subject, appending the subject if it is new.
func (s *Syllabus) SetTopics(subject string, topics []Topic) {
	if s.topics == nil {
		s.topics = make(map[string][]Topic)
	}
	if _, ok := s.topics[subject]; !ok {
		s.subjects = append(s.subjects, subject)
	}
	if topics == nil {
		topics = []Topic{}
	}
	s.topics[subject] = topics
}

func (s Syllabus) Clone() Syllabus {
	c := NewSyllabus()
	for _, subject := range s.subjects {
		topics, _ := s.Topics(subject)
		c.SetTopics(subject, topics)
	}
	return c
}

func (s Syllabus) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, subject := range s.subjects {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(subject)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.topics[subject])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Syllabus) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // null
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("syllabus: expected object, got %v", tok)
	}

	out := NewSyllabus()
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		subject, ok := tok.(string)
		if !ok {
			return fmt.Errorf("syllabus: expected subject name, got %v", tok)
		}
		var topics []Topic
		if err = dec.Decode(&topics); err != nil {
			return errors.Wrapf(err, "syllabus: decoding %q", subject)
		}
		out.SetTopics(subject, topics)
	}
	if _, err = dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

type Question struct {
	Text         string   `json:"text" validate:"notblank"`
	Options      []string `json:"options" validate:"min=2,dive,notblank"`
	CorrectIndex int      `json:"correctIndex"`
}

// UnmarshalJSON also accepts the legacy {q, options, answer} shape.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text         string   `json:"text"`
		Q            string   `json:"q"`
		Options      []string `json:"options"`
		CorrectIndex *int     `json:"correctIndex"`
		Answer       *int     `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Text = raw.Text
	if q.Text == "" {
		q.Text = raw.Q
	}
	q.Options = raw.Options
	switch {
	case raw.CorrectIndex != nil:
		q.CorrectIndex = *raw.CorrectIndex
	case raw.Answer != nil:
		q.CorrectIndex = *raw.Answer
	default:
		q.CorrectIndex = 0
	}
	return nil
}

// Valid reports whether the question can be scored.
func (q Question) Valid() bool {
	return len(q.Options) >= 2 && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

type Quiz struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Subject   string         `json:"subject"`
	TopicID   string         `json:"topicId"`
	Questions []Question     `json:"questions"`
	Results   map[string]int `json:"results"` // roll -> score
}

func (q Quiz) clone() Quiz {
	c := q
	c.Questions = make([]Question, len(q.Questions))
	for i, qq := range q.Questions {
		qq.Options = append([]string(nil), qq.Options...)
		c.Questions[i] = qq
	}
	c.Results = make(map[string]int, len(q.Results)+1)
	for roll, score := range q.Results {
		c.Results[roll] = score
	}
	return c
}

// QuizDraft contains information needed to create a new Quiz.
type QuizDraft struct {
	Title     string     `json:"title" validate:"notblank"`
	Subject   string     `json:"subject" validate:"required"`
	TopicID   string     `json:"topicId" validate:"required"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

type FeedbackEntry struct {
	Timestamp time.Time `json:"date"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
}

// NewFeedback contains information needed to append a FeedbackEntry.
type NewFeedback struct {
	Roll   string `json:"roll" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Text   string `json:"text"`
}

// Feedback maps a student roll to its entries, oldest first.
type Feedback map[string][]FeedbackEntry

func (f Feedback) clone() Feedback {
	c := make(Feedback, len(f)+1)
	for roll, entries := range f {
		c[roll] = append([]FeedbackEntry(nil), entries...)
	}
	return c
}

type SubjectProgress struct {
	Subject string `json:"subject"`
	Percent int    `json:"pct"`
}
