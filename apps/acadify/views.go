package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/academic"
	"github.com/trezcool/acadify/core/access"
	"github.com/trezcool/acadify/core/session"
)

type viewFunc func(ctx context.Context, cli *commandLine, sess *session.Session, params map[string]string) error

var views map[string]viewFunc

func init() {
	views = map[string]viewFunc{
		access.StudentDashboard: studentDashboard,
		access.StudentSyllabus:  syllabusView,
		access.StudentQuizzes:   studentQuizzes,
		access.StudentFeedback:  studentFeedback,
		access.StudentProfile:   studentProfile,

		access.TeacherDashboard: teacherDashboard,
		access.TeacherSyllabus:  syllabusView,
		access.TeacherQuizzes:   teacherQuizzes,
		access.TeacherStudents:  teacherStudents,
		access.TeacherReport:    teacherReport,
		access.TeacherProfile:   staffProfile,

		access.HODDashboard:        hodDashboard,
		access.HODOverview:         hodOverview,
		access.HODFaculty:          hodFaculty,
		access.HODSyllabusProgress: syllabusProgress,

		access.StudentDetail: studentDetail,
	}
}

func (cli *commandLine) view(ctx context.Context, path string) error {
	sess, err := cli.sessions.Current(ctx)
	if err != nil {
		return err
	}
	route, params, err := access.Authorize(sess, path)
	if err != nil {
		return err
	}
	fn, ok := views[route.Pattern]
	if !ok {
		return access.ErrUnknownRoute
	}
	return fn(ctx, cli, sess, params)
}

func newTable(cli *commandLine) *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

func bar(pct int) string {
	const width = 20
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func formatTopic(t academic.Topic) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	s := fmt.Sprintf("[%s] %s (%s)", mark, t.Title, t.ID)
	if t.Deadline != nil {
		s += " due " + t.Deadline.String()
	}
	return s
}

func printProgress(cli *commandLine, progress []academic.SubjectProgress) error {
	tw := newTable(cli)
	for _, p := range progress {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\n", p.Subject, bar(p.Percent), p.Percent)
	}
	return tw.Flush()
}

// Student views

func studentDashboard(ctx context.Context, cli *commandLine, sess *session.Session, _ map[string]string) error {
	profile, err := cli.svc.StudentProfile(ctx, sess.ID)
	if err != nil {
		return err
	}
	var pending int
	for _, s := range profile.Scores {
		if !s.Taken {
			pending++
		}
	}
	fmt.Fprintf(cli.out, "Hello %s (%s)\n", profile.Student.Name, profile.Student.Roll)
	fmt.Fprintf(cli.out, "Quizzes to take: %d\n\n", pending)
	return printProgress(cli, profile.Progress)
}

func syllabusView(ctx context.Context, cli *commandLine, _ *session.Session, _ map[string]string) error {
	syl, err := cli.svc.Syllabus(ctx)
	if err != nil {
		return err
	}
	for _, subject := range syl.Subjects() {
		fmt.Fprintln(cli.out, subject)
		topics, _ := syl.Topics(subject)
		if len(topics) == 0 {
			fmt.Fprintln(cli.out, "  (no topics)")
		}
		for _, t := range topics {
			fmt.Fprintln(cli.out, "  "+formatTopic(t))
		}
	}
	return nil
}

func studentQuizzes(ctx context.Context, cli *commandLine, sess *session.Session, _ map[string]string) error {
	quizzes, err := cli.svc.Quizzes(ctx)
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		fmt.Fprintln(cli.out, "No quizzes yet.")
		return nil
	}
	for _, q := range quizzes {
		status := "not taken"
		if score, ok := q.Results[sess.ID]; ok {
			status = fmt.Sprintf("score %d%%", score)
		}
		fmt.Fprintf(cli.out, "%s  %s [%s / %s]  %s\n", q.ID, q.Title, q.Subject, q.TopicID, status)
		for i, question := range q.Questions {
			fmt.Fprintf(cli.out, "  %d. %s\n", i+1, question.Text)
			for j, opt := range question.Options {
				fmt.Fprintf(cli.out, "     %d) %s\n", j, opt)
			}
		}
	}
	return nil
}

func printFeedback(cli *commandLine, entries []academic.FeedbackEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(cli.out, "No feedback given.")
		return nil
	}
	tw := newTable(cli)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04"), strings.Repeat("*", e.Rating), e.Text)
	}
	return tw.Flush()
}

func studentFeedback(ctx context.Context, cli *commandLine, sess *session.Session, _ map[string]string) error {
	entries, err := cli.svc.FeedbackFor(ctx, sess.ID)
	if err != nil {
		return err
	}
	return printFeedback(cli, entries)
}

func printProfile(ctx context.Context, cli *commandLine, roll string) error {
	profile, err := cli.svc.StudentProfile(ctx, roll)
	if err != nil {
		return err
	}
	st := profile.Student
	fmt.Fprintf(cli.out, "%s\nRoll: %s\nEmail: %s\n", st.Name, st.Roll, st.Email)
	if profile.Special {
		fmt.Fprintln(cli.out, "Needs special attention")
	}

	fmt.Fprintln(cli.out, "\nProgress")
	if err = printProgress(cli, profile.Progress); err != nil {
		return err
	}

	fmt.Fprintln(cli.out, "\nQuizzes")
	tw := newTable(cli)
	for _, s := range profile.Scores {
		score := "-"
		if s.Taken {
			score = fmt.Sprintf("%d%%", s.Score)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.QuizID, s.Title, score)
	}
	if err = tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(cli.out, "\nRecent feedback")
	return printFeedback(cli, profile.RecentFeedback)
}

func studentProfile(ctx context.Context, cli *commandLine, sess *session.Session, _ map[string]string) error {
	return printProfile(ctx, cli, sess.ID)
}

// studentDetail is reachable by every role.
// studentDetail falls back to the viewer's own profile when the roll is unknown.
func studentDetail(ctx context.Context, cli *commandLine, sess *session.Session, params map[string]string) error {
	err := printProfile(ctx, cli, params["roll"])
	if !core.IsNotFound(err) || sess.ID == params["roll"] {
		return err
	}
	if ownErr := printProfile(ctx, cli, sess.ID); !core.IsNotFound(ownErr) {
		return ownErr
	}
	return err
}

// Teacher views

func teacherDashboard(ctx context.Context, cli *commandLine, sess *session.Session, _ map[string]string) error {
	overview, err := cli.svc.DepartmentOverview(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Hello %s\n", sess.Name)
	fmt.Fprintf(cli.out, "Students: %d  Quizzes: %d  Special attention: %d\n\n",
		overview.StudentCount, overview.QuizCount, len(overview.SpecialAttention))
	return printProgress(cli, overview.Progress)
}

func teacherQuizzes(ctx context.Context, cli *commandLine, _ *session.Session, _ map[string]string) error {
	quizzes, err := cli.svc.Quizzes(ctx)
	if err != nil {
		return err
	}
	tw := newTable(cli)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBJECT\tTOPIC\tQUESTIONS\tRESULTS")
	for _, q := range quizzes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n", q.ID, q.Title, q.Subject, q.TopicID, len(q.Questions), len(q.Results))
	}
	return tw.Flush()
}

func teacherStudents(ctx context.Context, cli *commandLine, _ *session.Session, _ map[string]string) error {
	students, err := cli.svc.Students(ctx)
	if err != nil {
		return err
	}
	special, err := cli.svc.SpecialAttention(ctx)
	if err != nil {
		return err
	}
	marked := make(map[string]bool, len(special))
	for _, roll := range special {
		marked[roll] = true
	}

	tw := newTable(cli)
	fmt.Fprintln(tw, "ROLL\tNAME\tEMAIL\tSPECIAL")
	for _, st := range students {
		mark := ""
		if marked[st.Roll] {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Roll, st.Name, st.Email, mark)
	}
	return tw.Flush()
}

// teacherReport prints every quiz's results, or only those of the `quiz` param when given.
func teacherReport(ctx context.Context, cli *commandLine, _ *session.Session, params map[string]string) error {
	var ids []string
	if id := params["quiz"]; id != "" {
		ids = []string{id}
	} else {
		quizzes, err := cli.svc.Quizzes(ctx)
		if err != nil {
			return err
		}
		for _, q := range quizzes {
			ids = append(ids, q.ID)
		}
	}
	for _, id := range ids {
		report, err := cli.svc.QuizReport(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%s (%s)\n", report.Quiz.Title, report.Quiz.ID)
		if len(report.Rows) == 0 {
			fmt.Fprintln(cli.out, "  no results yet")
			continue
		}
		tw := newTable(cli)
		for _, row := range report.Rows {
			fmt.Fprintf(tw, "  %s\t%s\t%d%%\n", row.Roll, row.Name, row.Score)
		}
		if err = tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func staffProfile(_ context.Context, cli *commandLine, sess *session.Session, _ map[string]string) error {
	fmt.Fprintf(cli.out, "%s\nRole: %s\nID: %s\n", sess.Name, sess.Role, sess.ID)
	return nil
}

// HOD views

func hodDashboard(ctx context.Context, cli *commandLine, sess *session.Session, _ map[string]string) error {
	overview, err := cli.svc.DepartmentOverview(ctx)
	if err != nil {
		return err
	}
	var faculty int
	for _, s := range session.Staff() {
		if s.IsTeacher() {
			faculty++
		}
	}
	fmt.Fprintf(cli.out, "Hello %s\n", sess.Name)
	fmt.Fprintf(cli.out, "Students: %d  Faculty: %d  Quizzes: %d\n", overview.StudentCount, faculty, overview.QuizCount)
	return nil
}

func hodOverview(ctx context.Context, cli *commandLine, _ *session.Session, _ map[string]string) error {
	overview, err := cli.svc.DepartmentOverview(ctx)
	if err != nil {
		return err
	}
	if err = printProgress(cli, overview.Progress); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "\nSpecial attention")
	if len(overview.SpecialAttention) == 0 {
		fmt.Fprintln(cli.out, "  none")
	}
	for _, st := range overview.SpecialAttention {
		fmt.Fprintf(cli.out, "  %s %s\n", st.Roll, st.Name)
	}
	return nil
}

func hodFaculty(_ context.Context, cli *commandLine, _ *session.Session, _ map[string]string) error {
	tw := newTable(cli)
	fmt.Fprintln(tw, "ID\tNAME\tROLE")
	for _, s := range session.Staff() {
		if s.IsTeacher() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, s.Role)
		}
	}
	return tw.Flush()
}

func syllabusProgress(ctx context.Context, cli *commandLine, _ *session.Session, _ map[string]string) error {
	progress, err := cli.svc.ComputeSubjectProgress(ctx)
	if err != nil {
		return err
	}
	return printProgress(cli, progress)
}
