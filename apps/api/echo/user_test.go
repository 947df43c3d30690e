package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/reportube/reportube/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	env.createUser(t, "Mwalimu", "mwalimu", "mwalimu@test.cd", "sekret", user.TeacherRoles, true)
	env.createUser(t, "N Dog", "ndog", "ndog@test.cd", "sekret", user.TeacherRoles, false)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{name: "required fields", body: LoginRequest{}, wantCode: http.StatusBadRequest},
		{
			name: "unknown user", body: LoginRequest{Username: "whodis", Password: "sekret"},
			wantCode: http.StatusBadRequest, wantErr: "authentication failed",
		},
		{
			name: "wrong password", body: LoginRequest{Username: "mwalimu", Password: "nope"},
			wantCode: http.StatusBadRequest, wantErr: "authentication failed",
		},
		{
			name: "deactivated account", body: LoginRequest{Username: "ndog", Password: "sekret"},
			wantCode: http.StatusForbidden, wantErr: "account deactivated",
		},
		{name: "login by username", body: LoginRequest{Username: "mwalimu", Password: "sekret"}, wantCode: http.StatusOK},
		{name: "login by email", body: LoginRequest{Username: "mwalimu@test.cd", Password: "sekret"}, wantCode: http.StatusOK},
		{name: "username is case-insensitive", body: LoginRequest{Username: "MWALIMU", Password: "sekret"}, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodPost, "/v1/users/login", "", tt.body)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				decodeJSON(t, rec, &resp)
				if resp.Token == "" {
					t.Error("login() returned an empty token")
				}
				return
			}
			if tt.wantErr != "" {
				var resp struct {
					Error string `json:"error"`
				}
				decodeJSON(t, rec, &resp)
				if resp.Error != tt.wantErr {
					t.Errorf("error = %q; want %q", resp.Error, tt.wantErr)
				}
			}
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	env := setup(t)

	usr, token := env.createTeacher(t)
	naughty := env.createUser(t, "N Dog", "ndog", "ndog@test.cd", "sekret", user.TeacherRoles, false)

	// a token issued before the refresh window cannot be refreshed anymore
	now := time.Now()
	staleClaims := env.auth.getUserClaims(usr)
	staleClaims.OrigIssuedAt = now.Add(-2 * env.conf.Server.JWTRefreshExpirationDelta).Unix()
	staleClaims.StandardClaims.IssuedAt = now.Unix()
	staleClaims.StandardClaims.ExpiresAt = now.Add(env.conf.Server.JWTExpirationDelta).Unix()
	staleToken, err := env.auth.generateToken(staleClaims)
	if err != nil {
		t.Fatalf("generateToken() failed: %v", err)
	}

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{name: "auth required", token: "", wantCode: http.StatusUnauthorized},
		{name: "deactivated account", token: env.getToken(t, naughty), wantCode: http.StatusForbidden},
		{name: "refresh window expired", token: staleToken, wantCode: http.StatusForbidden},
		{name: "token refreshed", token: token, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodPost, "/v1/users/token-refresh", tt.token)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				decodeJSON(t, rec, &resp)
				if resp.Token == "" {
					t.Error("refreshToken() returned an empty token")
				}
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)
	_, teacherToken := env.createTeacher(t)

	tests := []struct {
		name     string
		token    string
		body     interface{}
		wantCode int
	}{
		{name: "auth required", token: "", body: user.NewUser{}, wantCode: http.StatusUnauthorized},
		{name: "admin required", token: teacherToken, body: user.NewUser{}, wantCode: http.StatusForbidden},
		{name: "required fields", token: adminToken, body: user.NewUser{}, wantCode: http.StatusBadRequest},
		{
			name: "teacher registered", token: adminToken,
			body: user.NewUser{
				Name: "New Teacher", Username: "teacher2", Email: "teacher2@test.cd",
				Password: "sekret", PasswordConfirm: "sekret", Roles: user.TeacherRoles,
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "duplicate username rejected", token: adminToken,
			body: user.NewUser{
				Name: "Copy Cat", Username: "teacher2", Email: "copycat@test.cd",
				Password: "sekret", PasswordConfirm: "sekret", Roles: user.TeacherRoles,
			},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusCreated {
				var usr user.User
				decodeJSON(t, rec, &usr)
				if usr.ID == "" {
					t.Error("registered user has no id")
				}
				if !usr.IsActive {
					t.Error("registered user should be active")
				}
				if !usr.IsTeacher() {
					t.Errorf("roles = %v; want teacher", usr.Roles)
				}
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)

	admin, adminToken := env.createAdmin(t)
	teacher, teacherToken := env.createTeacher(t)
	env.createUser(t, "N Dog", "ndog", "ndog@test.cd", "", user.TeacherRoles, false)

	t.Run("auth required", func(t *testing.T) {
		checkCode(t, env.request(http.MethodGet, "/v1/users", ""), http.StatusUnauthorized)
	})
	t.Run("admin required", func(t *testing.T) {
		checkCode(t, env.request(http.MethodGet, "/v1/users", teacherToken), http.StatusForbidden)
	})
	t.Run("get all", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/users", adminToken)
		checkCode(t, rec, http.StatusOK)

		var users []user.User
		decodeJSON(t, rec, &users)
		if len(users) != 3 {
			t.Errorf("len(users) = %d; want 3", len(users))
		}
	})
	t.Run("filter by role", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/users?role="+user.RoleAdmin, adminToken)
		checkCode(t, rec, http.StatusOK)

		var users []user.User
		decodeJSON(t, rec, &users)
		if len(users) != 1 || users[0].ID != admin.ID {
			t.Errorf("users = %+v; want only %q", users, admin.Username)
		}
	})
	t.Run("filter by is_active", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/users?is_active=false", adminToken)
		checkCode(t, rec, http.StatusOK)

		var users []user.User
		decodeJSON(t, rec, &users)
		if len(users) != 1 || users[0].Username != "ndog" {
			t.Errorf("users = %+v; want only ndog", users)
		}
	})
	t.Run("search", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/users?search=mwalimu", adminToken)
		checkCode(t, rec, http.StatusOK)

		var users []user.User
		decodeJSON(t, rec, &users)
		if len(users) != 1 || users[0].ID != teacher.ID {
			t.Errorf("users = %+v; want only %q", users, teacher.Username)
		}
	})
}

func Test_userApi_retrieve(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)
	teacher, teacherToken := env.createTeacher(t)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{name: "auth required", path: "/v1/users/" + teacher.ID, wantCode: http.StatusUnauthorized},
		{name: "own account", path: "/v1/users/" + teacher.ID, token: teacherToken, wantCode: http.StatusOK},
		{name: "admin reads any account", path: "/v1/users/" + teacher.ID, token: adminToken, wantCode: http.StatusOK},
		{name: "others hidden from non-admin", path: "/v1/users/nope", token: teacherToken, wantCode: http.StatusNotFound},
		{name: "unknown id", path: "/v1/users/nope", token: adminToken, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodGet, tt.path, tt.token)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusOK {
				var usr user.User
				decodeJSON(t, rec, &usr)
				if usr.ID != teacher.ID {
					t.Errorf("id = %q; want %q", usr.ID, teacher.ID)
				}
			}
		})
	}
}

func Test_userApi_update(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)
	teacher, teacherToken := env.createTeacher(t)

	bPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name     string
		token    string
		body     interface{}
		wantCode int
		wantName string
	}{
		{
			name: "own name updated", token: teacherToken,
			body: user.UpdateUser{Name: "Mwalimu Mkuu"}, wantCode: http.StatusOK, wantName: "Mwalimu Mkuu",
		},
		{
			name: "non-admin cannot set roles", token: teacherToken,
			body: user.UpdateUser{Roles: user.AllRoles}, wantCode: http.StatusForbidden,
		},
		{
			name: "non-admin cannot deactivate", token: teacherToken,
			body: user.UpdateUser{IsActive: bPtr(false)}, wantCode: http.StatusForbidden,
		},
		{
			name: "admin sets roles", token: adminToken,
			body: user.UpdateUser{Roles: user.AllRoles}, wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodPut, "/v1/users/"+teacher.ID, tt.token, tt.body)
			checkCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusOK && tt.wantName != "" {
				var usr user.User
				decodeJSON(t, rec, &usr)
				if usr.Name != tt.wantName {
					t.Errorf("name = %q; want %q", usr.Name, tt.wantName)
				}
			}
		})
	}
}

func Test_userApi_destroy(t *testing.T) {
	env := setup(t)

	admin, adminToken := env.createAdmin(t)
	teacher, teacherToken := env.createTeacher(t)

	t.Run("admin required", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/users/"+teacher.ID, teacherToken), http.StatusForbidden)
	})
	t.Run("no self-delete", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/users/"+admin.ID, adminToken), http.StatusForbidden)
	})
	t.Run("deleted", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/users/"+teacher.ID, adminToken), http.StatusNoContent)
		checkCode(t, env.request(http.MethodGet, "/v1/users/"+teacher.ID, adminToken), http.StatusNotFound)
	})
}

func Test_userApi_queryRoles(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)

	rec := env.request(http.MethodGet, "/v1/users/roles", adminToken)
	checkCode(t, rec, http.StatusOK)

	var roles []user.Role
	decodeJSON(t, rec, &roles)
	if len(roles) != len(user.Roles) {
		t.Errorf("len(roles) = %d; want %d", len(roles), len(user.Roles))
	}
}
