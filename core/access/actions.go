package access

import (
	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core/session"
)

type Action string

// Actions
const (
	AddTopic      Action = "add-topic"
	ToggleTopic   Action = "toggle-topic"
	SetDeadline   Action = "set-deadline"
	CreateQuiz    Action = "create-quiz"
	ToggleSpecial Action = "toggle-special"
	SubmitQuiz    Action = "submit-quiz"
	GiveFeedback  Action = "give-feedback"
)

var actions = map[Action]session.Role{
	AddTopic:      session.RoleTeacher,
	ToggleTopic:   session.RoleTeacher,
	SetDeadline:   session.RoleTeacher,
	CreateQuiz:    session.RoleTeacher,
	ToggleSpecial: session.RoleTeacher,
	SubmitQuiz:    session.RoleStudent,
	GiveFeedback:  session.RoleStudent,
}

// Allow returns nil if sess may perform `action`.
func Allow(sess *session.Session, action Action) error {
	role, ok := actions[action]
	if !ok {
		return errors.Wrapf(ErrUnknownAction, "%q", action)
	}
	if sess == nil {
		return ErrUnauthenticated
	}
	if !Check(sess, role) {
		return errors.Wrapf(ErrForbidden, "%s cannot %s", sess.Role, action)
	}
	return nil
}
