package session

import (
	"context"
	"crypto/subtle"
	"sort"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/academic"
)

// demo credentials
const (
	studentDemoPassword   = "studentpass"
	studentDerivedPrefix  = "pass"
	staticCredentialCount = 3
)

type credentialKey struct {
	role Role
	id   string
}

type credential struct {
	password string
	name     string
}

// staff are static demo accounts; students authenticate against the roster.
var staff = make(map[credentialKey]credential, staticCredentialCount)

func init() {
	staff[credentialKey{RoleTeacher, "T001"}] = credential{password: "password123", name: "Dr. Sharma"}
	staff[credentialKey{RoleTeacher, "T002"}] = credential{password: "password456", name: "Dr. Khan"}
	staff[credentialKey{RoleHOD, "H001"}] = credential{password: "hodpass", name: "HOD - Dept"}
}

// Staff lists the static staff accounts, HOD first, then by id.
func Staff() []Session {
	out := make([]Session, 0, len(staff))
	for key, cred := range staff {
		out = append(out, Session{Role: key.role, ID: key.id, Name: cred.name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].IsHOD()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type (
	// Store persists the active Session so that it survives a restart.
	Store interface {
		SaveSession(ctx context.Context, sess Session) error
		// LoadSession returns nil when no session is stored.
		LoadSession(ctx context.Context) (*Session, error)
		DeleteSession(ctx context.Context) error
	}

	StudentFinder interface {
		GetStudent(ctx context.Context, roll string) (academic.Student, error)
	}

	Manager struct {
		store    Store
		students StudentFinder
		logger   core.Logger
	}
)

func NewManager(store Store, students StudentFinder, logger core.Logger) *Manager {
	vala.BeginValidation().Validate(
		vala.IsNotNil(store, "store"),
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Manager{store: store, students: students, logger: logger}
}

// Login checks the role/id/password triple and persists the resulting Session.
// Any mismatch yields the same *core.AuthError.
func (m *Manager) Login(ctx context.Context, role Role, id, password string) (Session, error) {
	id = core.CleanString(id)

	sess, err := m.authenticate(ctx, role, id, password)
	if err != nil {
		return Session{}, err
	}
	if err = m.store.SaveSession(ctx, sess); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	m.logger.Info("logged in", sess)
	return sess, nil
}

func (m *Manager) authenticate(ctx context.Context, role Role, id, password string) (Session, error) {
	switch role {
	case RoleTeacher, RoleHOD:
		cred, ok := staff[credentialKey{role, id}]
		if ok && passwordsMatch(password, cred.password) {
			return Session{Role: role, ID: id, Name: cred.name}, nil
		}
	case RoleStudent:
		st, err := m.students.GetStudent(ctx, id)
		if err != nil {
			if core.IsNotFound(err) {
				return Session{}, core.NewAuthError()
			}
			return Session{}, errors.Wrap(err, "finding student")
		}
		if studentPasswordMatches(id, password) {
			return Session{Role: role, ID: st.Roll, Name: st.Name}, nil
		}
	}
	return Session{}, core.NewAuthError()
}

// studentPasswordMatches accepts the shared demo password OR a per-student password derived from the roll
// ("pass" + roll without its first digit, e.g. 100001 -> pass00001).
// Both branches are kept on purpose.
func studentPasswordMatches(roll, password string) bool {
	if passwordsMatch(password, studentDemoPassword) {
		return true
	}
	if roll != "" && passwordsMatch(password, studentDerivedPrefix+roll[1:]) {
		return true
	}
	return false
}

func passwordsMatch(given, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}

// Logout destroys the active Session, if any.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.DeleteSession(ctx); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

// Current returns the active Session or nil.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	sess, err := m.store.LoadSession(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading session")
	}
	if sess != nil && !sess.Role.IsValid() {
		m.logger.Warn("dropping session with unknown role", map[string]interface{}{"role": sess.Role})
		if err = m.store.DeleteSession(ctx); err != nil {
			return nil, errors.Wrap(err, "deleting session")
		}
		return nil, nil
	}
	return sess, nil
}
