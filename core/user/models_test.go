package user

import "testing"

func TestUser_SetCheckPassword(t *testing.T) {
	var usr User
	if err := usr.SetPassword("s3kr3t!"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if len(usr.PasswordHash) == 0 {
		t.Fatal("password hash not set")
	}
	if string(usr.PasswordHash) == "s3kr3t!" {
		t.Fatal("password stored in clear")
	}

	if err := usr.CheckPassword("s3kr3t!"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("nope"); err == nil {
		t.Error("wrong password should not check out")
	}
}

func TestUser_roles(t *testing.T) {
	tests := []struct {
		name      string
		roles     []string
		isAdmin   bool
		isTeacher bool
	}{
		{name: "no roles"},
		{name: "teacher", roles: TeacherRoles, isTeacher: true},
		{name: "admin", roles: []string{RoleAdmin}, isAdmin: true},
		{name: "principal", roles: []string{RoleAdminPrincipal}, isAdmin: true},
		{name: "all roles", roles: AllRoles, isAdmin: true, isTeacher: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr := User{Roles: tt.roles}
			if got := usr.IsAdmin(); got != tt.isAdmin {
				t.Errorf("IsAdmin() = %v; want %v", got, tt.isAdmin)
			}
			if got := usr.IsTeacher(); got != tt.isTeacher {
				t.Errorf("IsTeacher() = %v; want %v", got, tt.isTeacher)
			}
		})
	}
}

func TestMaxRolePriority(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{name: "none", roles: nil, want: 0},
		{name: "unknown role", roles: []string{"lol"}, want: 0},
		{name: "teacher", roles: TeacherRoles, want: RolePriority(RoleTeacher)},
		{name: "owner outranks all", roles: AllRoles, want: RolePriority(RoleAdminOwner)},
		{
			name:  "mixed",
			roles: []string{RoleTeacher, RoleAdminPrincipal},
			want:  RolePriority(RoleAdminPrincipal),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxRolePriority(tt.roles); got != tt.want {
				t.Errorf("MaxRolePriority(%v) = %v; want %v", tt.roles, got, tt.want)
			}
		})
	}
}
