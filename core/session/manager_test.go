package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/acadify/core"
	"github.com/trezcool/acadify/core/session"
	"github.com/trezcool/acadify/tests"
)

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		role     session.Role
		id       string
		password string
		want     session.Session
	}{
		{name: "teacher T001", role: session.RoleTeacher, id: "T001", password: "password123", want: session.Session{Role: session.RoleTeacher, ID: "T001", Name: "Dr. Sharma"}},
		{name: "teacher T002", role: session.RoleTeacher, id: "T002", password: "password456", want: session.Session{Role: session.RoleTeacher, ID: "T002", Name: "Dr. Khan"}},
		{name: "hod", role: session.RoleHOD, id: "H001", password: "hodpass", want: session.Session{Role: session.RoleHOD, ID: "H001", Name: "HOD - Dept"}},
		{name: "student shared password", role: session.RoleStudent, id: "100001", password: "studentpass", want: session.Session{Role: session.RoleStudent, ID: "100001", Name: "Aarav Mehta"}},
		{name: "student derived password", role: session.RoleStudent, id: "100012", password: "pass00012", want: session.Session{Role: session.RoleStudent, ID: "100012", Name: "Dhruv Saxena"}},
		{name: "id is trimmed", role: session.RoleTeacher, id: " T001 ", password: "password123", want: session.Session{Role: session.RoleTeacher, ID: "T001", Name: "Dr. Sharma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewSeededEnv(t)

			got, err := env.Sessions.Login(ctx, tt.role, tt.id, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			cur, err := env.Sessions.Current(ctx)
			require.NoError(t, err)
			require.NotNil(t, cur)
			assert.Equal(t, tt.want, *cur)
		})
	}
}

func TestManager_Login_invalid(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		role     session.Role
		id       string
		password string
	}{
		{name: "wrong password", role: session.RoleTeacher, id: "T001", password: "password456"},
		{name: "wrong role", role: session.RoleHOD, id: "T001", password: "password123"},
		{name: "unknown staff id", role: session.RoleTeacher, id: "T999", password: "password123"},
		{name: "student not on roster", role: session.RoleStudent, id: "999999", password: "studentpass"},
		{name: "student wrong password", role: session.RoleStudent, id: "100001", password: "pass100001"},
		{name: "student derived password of another roll", role: session.RoleStudent, id: "100001", password: "pass00002"},
		{name: "staff id as student", role: session.RoleStudent, id: "T001", password: "password123"},
		{name: "unknown role", role: session.Role("Admin"), id: "T001", password: "password123"},
		{name: "empty", role: session.RoleStudent, id: "", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewSeededEnv(t)
			before := env.Snapshot(t)

			_, err := env.Sessions.Login(ctx, tt.role, tt.id, tt.password)
			assert.True(t, core.IsAuth(err), "want auth error, got %v", err)
			assert.EqualError(t, err, "invalid credentials")
			assert.Equal(t, before, env.Snapshot(t), "store changed")
		})
	}
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewSeededEnv(t)

	_, err := env.Sessions.Login(ctx, session.RoleHOD, "H001", "hodpass")
	require.NoError(t, err)
	require.NoError(t, env.Sessions.Logout(ctx))

	cur, err := env.Sessions.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	// logging out twice is fine
	assert.NoError(t, env.Sessions.Logout(ctx))
}

func TestManager_Current_dropsBadRecords(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown role", raw: `{"role":"Admin","id":"X1","name":"Mallory"}`},
		{name: "not json", raw: `{"role":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewSeededEnv(t)
			key := env.Repo.Key("user")
			require.NoError(t, env.KV.Set(ctx, key, tt.raw))

			cur, err := env.Sessions.Current(ctx)
			require.NoError(t, err)
			assert.Nil(t, cur)

			_, ok, err := env.KV.Get(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok, "bad session record kept")
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    session.Role
		wantErr bool
	}{
		{in: "student", want: session.RoleStudent},
		{in: "TEACHER", want: session.RoleTeacher},
		{in: " hod ", want: session.RoleHOD},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := session.ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole() = %q, want %q", got, tt.want)
			}
		})
	}
}
