package academic

import (
	"context"
	"sort"
)

const recentFeedbackLimit = 3

type (
	// QuizScore is a student's score on one quiz. Taken is false when no score was recorded.
	QuizScore struct {
		QuizID string `json:"quizId"`
		Title  string `json:"title"`
		Score  int    `json:"score"`
		Taken  bool   `json:"taken"`
	}

	// StudentProfile gathers everything shown about a single student.
	StudentProfile struct {
		Student        Student           `json:"student"`
		Progress       []SubjectProgress `json:"progress"`
		RecentFeedback []FeedbackEntry   `json:"recentFeedback"` // newest first
		Scores         []QuizScore       `json:"scores"`
		Special        bool              `json:"special"`
	}

	QuizResultRow struct {
		Roll  string `json:"roll"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	QuizReport struct {
		Quiz Quiz            `json:"quiz"`
		Rows []QuizResultRow `json:"rows"` // sorted by roll
	}

	DepartmentOverview struct {
		StudentCount     int               `json:"studentCount"`
		QuizCount        int               `json:"quizCount"`
		Progress         []SubjectProgress `json:"progress"`
		SpecialAttention []Student         `json:"specialAttention"`
	}
)

func (svc *Service) StudentProfile(ctx context.Context, roll string) (StudentProfile, error) {
	st, err := svc.GetStudent(ctx, roll)
	if err != nil {
		return StudentProfile{}, err
	}
	progress, err := svc.ComputeSubjectProgress(ctx)
	if err != nil {
		return StudentProfile{}, err
	}
	entries, err := svc.FeedbackFor(ctx, st.Roll)
	if err != nil {
		return StudentProfile{}, err
	}
	quizzes, err := svc.repo.LoadQuizzes(ctx)
	if err != nil {
		return StudentProfile{}, err
	}
	special, err := svc.IsSpecial(ctx, st.Roll)
	if err != nil {
		return StudentProfile{}, err
	}

	profile := StudentProfile{
		Student:        st,
		Progress:       progress,
		RecentFeedback: recentFeedback(entries, recentFeedbackLimit),
		Scores:         make([]QuizScore, 0, len(quizzes)),
		Special:        special,
	}
	for _, q := range quizzes {
		score, taken := q.Results[st.Roll]
		profile.Scores = append(profile.Scores, QuizScore{QuizID: q.ID, Title: q.Title, Score: score, Taken: taken})
	}
	return profile, nil
}

// recentFeedback returns up to n of the latest entries, newest first.
func recentFeedback(entries []FeedbackEntry, n int) []FeedbackEntry {
	if len(entries) < n {
		n = len(entries)
	}
	out := make([]FeedbackEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}

// QuizReport joins a quiz's results with the roster. Rolls no longer on the roster keep an empty name.
func (svc *Service) QuizReport(ctx context.Context, quizID string) (QuizReport, error) {
	quiz, err := svc.GetQuiz(ctx, quizID)
	if err != nil {
		return QuizReport{}, err
	}
	students, err := svc.repo.LoadStudents(ctx)
	if err != nil {
		return QuizReport{}, err
	}
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.Roll] = st.Name
	}

	report := QuizReport{Quiz: quiz, Rows: make([]QuizResultRow, 0, len(quiz.Results))}
	for roll, score := range quiz.Results {
		report.Rows = append(report.Rows, QuizResultRow{Roll: roll, Name: names[roll], Score: score})
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Roll < report.Rows[j].Roll })
	return report, nil
}

func (svc *Service) DepartmentOverview(ctx context.Context) (DepartmentOverview, error) {
	students, err := svc.repo.LoadStudents(ctx)
	if err != nil {
		return DepartmentOverview{}, err
	}
	quizzes, err := svc.repo.LoadQuizzes(ctx)
	if err != nil {
		return DepartmentOverview{}, err
	}
	progress, err := svc.ComputeSubjectProgress(ctx)
	if err != nil {
		return DepartmentOverview{}, err
	}
	rolls, err := svc.repo.LoadSpecialAttention(ctx)
	if err != nil {
		return DepartmentOverview{}, err
	}

	overview := DepartmentOverview{
		StudentCount:     len(students),
		QuizCount:        len(quizzes),
		Progress:         progress,
		SpecialAttention: make([]Student, 0, len(rolls)),
	}
	byRoll := make(map[string]Student, len(students))
	for _, st := range students {
		byRoll[st.Roll] = st
	}
	for _, roll := range rolls {
		st, ok := byRoll[roll]
		if !ok {
			st = Student{Roll: roll}
		}
		overview.SpecialAttention = append(overview.SpecialAttention, st)
	}
	return overview, nil
}
