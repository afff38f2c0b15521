// Package access decides which session may reach which view or perform which action.
// It is a presentation-level guard only: the academic service does not consult it.
package access

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core/session"
)

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrForbidden       = errors.New("not allowed for this role")
	ErrUnknownRoute    = errors.New("unknown route")
	ErrUnknownAction   = errors.New("unknown action")
)

// Check reports whether sess may reach something guarded by `required`.
// A nil session is always denied; an empty `required` admits any session.
func Check(sess *session.Session, required session.Role) bool {
	if sess == nil {
		return false
	}
	if required == "" {
		return true
	}
	return sess.Role == required
}

// Route is a role-scoped view. An empty Role admits any session.
type Route struct {
	Pattern string
	Role    session.Role
}

// Route patterns
const (
	StudentDashboard = "/student/dashboard"
	StudentSyllabus  = "/student/syllabus"
	StudentQuizzes   = "/student/quizzes"
	StudentFeedback  = "/student/feedback"
	StudentProfile   = "/student/profile"

	TeacherDashboard = "/teacher/dashboard"
	TeacherSyllabus  = "/teacher/syllabus"
	TeacherQuizzes   = "/teacher/quizzes"
	TeacherStudents  = "/teacher/students"
	TeacherReport    = "/teacher/report"
	TeacherProfile   = "/teacher/profile"

	HODDashboard        = "/hod/dashboard"
	HODOverview         = "/hod/overview"
	HODFaculty          = "/hod/faculty"
	HODSyllabusProgress = "/hod/syllabus-progress"

	// StudentDetail is open to every logged in role, students included.
	StudentDetail = "/student/:roll"
)

var Routes = []Route{
	{StudentDashboard, session.RoleStudent},
	{StudentSyllabus, session.RoleStudent},
	{StudentQuizzes, session.RoleStudent},
	{StudentFeedback, session.RoleStudent},
	{StudentProfile, session.RoleStudent},

	{TeacherDashboard, session.RoleTeacher},
	{TeacherSyllabus, session.RoleTeacher},
	{TeacherQuizzes, session.RoleTeacher},
	{TeacherStudents, session.RoleTeacher},
	{TeacherReport, session.RoleTeacher},
	{TeacherProfile, session.RoleTeacher},

	{HODDashboard, session.RoleHOD},
	{HODOverview, session.RoleHOD},
	{HODFaculty, session.RoleHOD},
	{HODSyllabusProgress, session.RoleHOD},

	{StudentDetail, ""},
}

// Match resolves `path` against the route table. Params holds the values of `:name` segments
// and the first value of each query parameter; a segment wins over a query parameter of the same name.
// Static patterns win over parameterized ones.
func Match(path string) (route Route, params map[string]string, err error) {
	u, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return Route{}, nil, errors.Wrapf(ErrUnknownRoute, "%q", path)
	}
	clean := "/" + strings.Trim(u.Path, "/")

	route, params, ok := matchRoute(clean)
	if !ok {
		return Route{}, nil, errors.Wrapf(ErrUnknownRoute, "%q", clean)
	}
	for name, values := range u.Query() {
		if _, taken := params[name]; !taken && len(values) > 0 {
			params[name] = values[0]
		}
	}
	return route, params, nil
}

func matchRoute(path string) (Route, map[string]string, bool) {
	for _, r := range Routes {
		if r.Pattern == path {
			return r, map[string]string{}, true
		}
	}
	for _, r := range Routes {
		if p, ok := matchPattern(r.Pattern, path); ok {
			return r, p, true
		}
	}
	return Route{}, nil, false
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	pSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(pSegs) != len(segs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, ps := range pSegs {
		switch {
		case strings.HasPrefix(ps, ":"):
			if segs[i] == "" {
				return nil, false
			}
			params[ps[1:]] = segs[i]
		case ps != segs[i]:
			return nil, false
		}
	}
	return params, true
}

// Authorize resolves `path` and checks sess against it.
func Authorize(sess *session.Session, path string) (Route, map[string]string, error) {
	route, params, err := Match(path)
	if err != nil {
		return Route{}, nil, err
	}
	if sess == nil {
		return Route{}, nil, ErrUnauthenticated
	}
	if !Check(sess, route.Role) {
		return Route{}, nil, errors.Wrapf(ErrForbidden, "%s on %s", sess.Role, route.Pattern)
	}
	return route, params, nil
}

// HomeRoute is where a role lands after login.
func HomeRoute(role session.Role) string {
	switch role {
	case session.RoleStudent:
		return StudentDashboard
	case session.RoleTeacher:
		return TeacherDashboard
	case session.RoleHOD:
		return HODDashboard
	}
	return ""
}
