package access

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core/session"
)

var (
	student = &session.Session{Role: session.RoleStudent, ID: "100001", Name: "Aarav Mehta"}
	teacher = &session.Session{Role: session.RoleTeacher, ID: "T001", Name: "Dr. Sharma"}
	hod     = &session.Session{Role: session.RoleHOD, ID: "H001", Name: "HOD - Dept"}
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		sess     *session.Session
		required session.Role
		want     bool
	}{
		{name: "no session", sess: nil, required: session.RoleStudent, want: false},
		{name: "no session, any role", sess: nil, required: "", want: false},
		{name: "matching role", sess: teacher, required: session.RoleTeacher, want: true},
		{name: "other role", sess: student, required: session.RoleTeacher, want: false},
		{name: "hod is not a teacher", sess: hod, required: session.RoleTeacher, want: false},
		{name: "any role", sess: student, required: "", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.sess, tt.required); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorize_roleScopedRoutes(t *testing.T) {
	sessions := []*session.Session{student, teacher, hod}

	for _, route := range Routes {
		if route.Role == "" {
			continue
		}
		for _, sess := range sessions {
			_, _, err := Authorize(sess, route.Pattern)
			if sess.Role == route.Role {
				if err != nil {
					t.Errorf("Authorize(%s, %s) error = %v, want nil", sess.Role, route.Pattern, err)
				}
				continue
			}
			if errors.Cause(err) != ErrForbidden {
				t.Errorf("Authorize(%s, %s) error = %v, want ErrForbidden", sess.Role, route.Pattern, err)
			}
		}
		if _, _, err := Authorize(nil, route.Pattern); err != ErrUnauthenticated {
			t.Errorf("Authorize(nil, %s) error = %v, want ErrUnauthenticated", route.Pattern, err)
		}
	}
}

func TestAuthorize_studentDetailIsOpen(t *testing.T) {
	for _, sess := range []*session.Session{student, teacher, hod} {
		route, params, err := Authorize(sess, "/student/100001")
		if err != nil {
			t.Fatalf("Authorize(%s) error = %v", sess.Role, err)
		}
		if route.Pattern != StudentDetail {
			t.Errorf("route = %s, want %s", route.Pattern, StudentDetail)
		}
		if params["roll"] != "100001" {
			t.Errorf("params[roll] = %q, want 100001", params["roll"])
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/student/profile", want: StudentProfile},
		{path: "student/profile/", want: StudentProfile},
		{path: "/student/100042", want: StudentDetail},
		{path: "/hod/syllabus-progress", want: HODSyllabusProgress},
		{path: "/teacher/unknown", wantErr: true},
		{path: "/student/100001/extra", wantErr: true},
		{path: "/", wantErr: true},
		{path: "/teacher/report?quiz=q1", want: TeacherReport},
		{path: "/teacher/unknown?quiz=q1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, _, err := Match(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Match() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if errors.Cause(err) != ErrUnknownRoute {
					t.Errorf("Match() error = %v, want ErrUnknownRoute", err)
				}
				return
			}
			if route.Pattern != tt.want {
				t.Errorf("Match() = %s, want %s", route.Pattern, tt.want)
			}
		})
	}
}

func TestMatch_params(t *testing.T) {
	tests := []struct {
		path string
		want map[string]string
	}{
		{path: "/teacher/report", want: map[string]string{}},
		{path: "/teacher/report?quiz=q1", want: map[string]string{"quiz": "q1"}},
		{path: "/teacher/report/?quiz=q1&quiz=q2", want: map[string]string{"quiz": "q1"}},
		{path: "/teacher/report?quiz=Quiz%201", want: map[string]string{"quiz": "Quiz 1"}},
		{path: "/student/100042", want: map[string]string{"roll": "100042"}},
		{path: "/student/100042?roll=100001&tab=scores", want: map[string]string{"roll": "100042", "tab": "scores"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, params, err := Match(tt.path)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if len(params) != len(tt.want) {
				t.Fatalf("Match() params = %v, want %v", params, tt.want)
			}
			for k, v := range tt.want {
				if params[k] != v {
					t.Errorf("Match() params[%s] = %q, want %q", k, params[k], v)
				}
			}
		})
	}
}

func TestAuthorize_withQuery(t *testing.T) {
	route, params, err := Authorize(teacher, "/teacher/report?quiz=q1")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if route.Pattern != TeacherReport || params["quiz"] != "q1" {
		t.Errorf("Authorize() = %s %v, want %s quiz=q1", route.Pattern, params, TeacherReport)
	}
	if _, _, err = Authorize(student, "/teacher/report?quiz=q1"); errors.Cause(err) != ErrForbidden {
		t.Errorf("Authorize() error = %v, want ErrForbidden", err)
	}
}

func TestAllow(t *testing.T) {
	tests := []struct {
		name   string
		sess   *session.Session
		action Action
		want   error
	}{
		{name: "teacher adds topic", sess: teacher, action: AddTopic},
		{name: "teacher creates quiz", sess: teacher, action: CreateQuiz},
		{name: "teacher toggles special", sess: teacher, action: ToggleSpecial},
		{name: "student submits quiz", sess: student, action: SubmitQuiz},
		{name: "student gives feedback", sess: student, action: GiveFeedback},
		{name: "student cannot add topic", sess: student, action: AddTopic, want: ErrForbidden},
		{name: "hod cannot create quiz", sess: hod, action: CreateQuiz, want: ErrForbidden},
		{name: "teacher cannot give feedback", sess: teacher, action: GiveFeedback, want: ErrForbidden},
		{name: "anonymous", sess: nil, action: SetDeadline, want: ErrUnauthenticated},
		{name: "unknown action", sess: teacher, action: Action("delete-everything"), want: ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Allow(tt.sess, tt.action); errors.Cause(err) != tt.want {
				t.Errorf("Allow() error = %v, want %v", err, tt.want)
			}
		})
	}
}
