package kvrepo

import (
	"github.com/trezcool/acadify/core/academic"
)

const (
	minScore, maxScore   = 0, 100
	minRating, maxRating = 1, 5
)

// The repair funcs drop entries a mutator could never have written and return how many they dropped.

func repairStudents(students []academic.Student) ([]academic.Student, int) {
	out := make([]academic.Student, 0, len(students))
	seen := make(map[string]bool, len(students))
	for _, st := range students {
		if st.Roll == "" || seen[st.Roll] {
			continue
		}
		seen[st.Roll] = true
		out = append(out, st)
	}
	return out, len(students) - len(out)
}

func repairSyllabus(syl academic.Syllabus) (academic.Syllabus, int) {
	var dropped int
	out := academic.NewSyllabus()
	for _, subject := range syl.Subjects() {
		topics, _ := syl.Topics(subject)
		kept := make([]academic.Topic, 0, len(topics))
		seen := make(map[string]bool, len(topics))
		for _, t := range topics {
			if t.ID == "" || seen[t.ID] {
				dropped++
				continue
			}
			seen[t.ID] = true
			if t.Deadline != nil && t.Deadline.IsZero() {
				t.Deadline = nil
			}
			kept = append(kept, t)
		}
		out.SetTopics(subject, kept)
	}
	return out, dropped
}

// repairQuizzes drops quizzes that cannot be scored or whose subject/topic no longer resolves,
// and results outside 0..100 or for rolls missing from the roster.
func repairQuizzes(quizzes []academic.Quiz, roster map[string]bool, syl academic.Syllabus) ([]academic.Quiz, int) {
	var dropped int
	out := make([]academic.Quiz, 0, len(quizzes))
	seen := make(map[string]bool, len(quizzes))
	for _, q := range quizzes {
		if q.ID == "" || seen[q.ID] || !scorable(q) || !topicExists(syl, q.Subject, q.TopicID) {
			dropped++
			continue
		}
		seen[q.ID] = true
		if q.Results == nil {
			q.Results = make(map[string]int)
		}
		for roll, score := range q.Results {
			if !roster[roll] || score < minScore || score > maxScore {
				delete(q.Results, roll)
				dropped++
			}
		}
		out = append(out, q)
	}
	return out, dropped
}

func scorable(q academic.Quiz) bool {
	for _, question := range q.Questions {
		if !question.Valid() {
			return false
		}
	}
	return true
}

func topicExists(syl academic.Syllabus, subject, topicID string) bool {
	topics, ok := syl.Topics(subject)
	if !ok {
		return false
	}
	for _, t := range topics {
		if t.ID == topicID {
			return true
		}
	}
	return false
}

func rosterOf(students []academic.Student) map[string]bool {
	roster := make(map[string]bool, len(students))
	for _, st := range students {
		roster[st.Roll] = true
	}
	return roster
}

func repairFeedback(fb academic.Feedback) (academic.Feedback, int) {
	var dropped int
	out := make(academic.Feedback, len(fb))
	for roll, entries := range fb {
		if roll == "" {
			dropped += len(entries)
			continue
		}
		kept := make([]academic.FeedbackEntry, 0, len(entries))
		for _, e := range entries {
			if e.Rating < minRating || e.Rating > maxRating {
				dropped++
				continue
			}
			kept = append(kept, e)
		}
		out[roll] = kept
	}
	return out, dropped
}

func repairRolls(rolls []string) ([]string, int) {
	out := make([]string, 0, len(rolls))
	seen := make(map[string]bool, len(rolls))
	for _, roll := range rolls {
		if roll == "" || seen[roll] {
			continue
		}
		seen[roll] = true
		out = append(out, roll)
	}
	return out, len(rolls) - len(out)
}
