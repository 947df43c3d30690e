package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reportube/reportube/core/student"
)

func Test_studentApi_create(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)
	_, teacherToken := env.createTeacher(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")

	t.Run("admin required", func(t *testing.T) {
		checkCode(t, env.request(http.MethodPost, "/v1/students", teacherToken, student.NewStudent{}), http.StatusForbidden)
	})
	t.Run("required fields", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/students", adminToken, student.NewStudent{})
		checkCode(t, rec, http.StatusBadRequest)

		var fldErrs map[string]string
		decodeJSON(t, rec, &fldErrs)
		assert.Contains(t, fldErrs, "admission_number")
		assert.Contains(t, fldErrs, "first_name")
		assert.Contains(t, fldErrs, "last_name")
	})
	t.Run("invalid parent email", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/students", adminToken, student.NewStudent{
			AdmissionNumber: "ADM001", FirstName: "Amani", LastName: "Imani", ParentEmail: "lol",
		})
		checkCode(t, rec, http.StatusBadRequest)
	})
	t.Run("enrolled", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/students", adminToken, student.NewStudent{
			AdmissionNumber: "ADM001",
			FirstName:       "Amani",
			LastName:        "Imani",
			Gender:          "Female",
			ClassID:         cls.ID,
			ParentName:      "Mzazi Imani",
			ParentEmail:     "Parent@Test.CD",
		})
		checkCode(t, rec, http.StatusCreated)

		var std student.Student
		decodeJSON(t, rec, &std)
		assert.NotEmpty(t, std.ID)
		assert.True(t, std.IsActive)
		assert.Equal(t, cls.ID, std.ClassID.String)
		// parent email is normalised to lower case
		assert.Equal(t, "parent@test.cd", std.ParentEmail)
	})
}

func Test_studentApi_query(t *testing.T) {
	env := setup(t)

	_, teacherToken := env.createTeacher(t)
	cls1 := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	cls2 := env.createClass(t, "JSS 2A", "JSS 2", "2025/2026")
	amani := env.createStudent(t, "Amani", "Imani", "ADM001", cls1.ID, "")
	baraka := env.createStudent(t, "Baraka", "Juma", "ADM002", cls2.ID, "")

	// deactivated students never appear in listings
	ghost := env.createStudent(t, "Ghost", "Gone", "ADM003", cls1.ID, "")
	if _, err := env.stdSvc.Deactivate(context.Background(), ghost.ID); err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{name: "all active", path: "/v1/students", wantIDs: []string{amani.ID, baraka.ID}},
		{name: "by class", path: "/v1/students?class_id=" + cls1.ID, wantIDs: []string{amani.ID}},
		{name: "search by name", path: "/v1/students?search=juma", wantIDs: []string{baraka.ID}},
		{name: "search by admission number", path: "/v1/students?search=ADM001", wantIDs: []string{amani.ID}},
		{name: "no match", path: "/v1/students?search=nope", wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(http.MethodGet, tt.path, teacherToken)
			checkCode(t, rec, http.StatusOK)

			var students []student.Student
			decodeJSON(t, rec, &students)
			ids := make([]string, 0, len(students))
			for _, std := range students {
				ids = append(ids, std.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func Test_studentApi_retrieveDeactivate(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)
	_, teacherToken := env.createTeacher(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	std := env.createStudent(t, "Amani", "Imani", "ADM001", cls.ID, "")

	t.Run("retrieved with class join", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/students/"+std.ID, teacherToken)
		checkCode(t, rec, http.StatusOK)

		var got student.Student
		decodeJSON(t, rec, &got)
		assert.Equal(t, std.ID, got.ID)
		assert.Equal(t, "JSS 1A", got.ClassName)
	})
	t.Run("unknown id", func(t *testing.T) {
		checkCode(t, env.request(http.MethodGet, "/v1/students/nope", teacherToken), http.StatusNotFound)
	})
	t.Run("admin required to deactivate", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/students/"+std.ID, teacherToken), http.StatusForbidden)
	})
	t.Run("deactivated, record retained", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/students/"+std.ID, adminToken), http.StatusNoContent)

		// the record remains readable, it just drops out of listings
		rec := env.request(http.MethodGet, "/v1/students/"+std.ID, teacherToken)
		checkCode(t, rec, http.StatusOK)

		var got student.Student
		decodeJSON(t, rec, &got)
		assert.False(t, got.IsActive)
	})
}

func Test_studentApi_classes(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)
	_, teacherToken := env.createTeacher(t)

	t.Run("admin required to create", func(t *testing.T) {
		checkCode(t, env.request(http.MethodPost, "/v1/classes", teacherToken, student.NewClass{}), http.StatusForbidden)
	})
	t.Run("created", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/classes", adminToken, student.NewClass{
			Name: "JSS 1A", Level: "JSS 1", AcademicYear: "2025/2026",
		})
		checkCode(t, rec, http.StatusCreated)

		var cls student.Class
		decodeJSON(t, rec, &cls)
		assert.NotEmpty(t, cls.ID)
		assert.Equal(t, "JSS 1A", cls.Name)
	})
	t.Run("listed for staff", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/classes", teacherToken)
		checkCode(t, rec, http.StatusOK)

		var classes []student.Class
		decodeJSON(t, rec, &classes)
		assert.Len(t, classes, 1)
	})
	t.Run("unknown id", func(t *testing.T) {
		checkCode(t, env.request(http.MethodGet, "/v1/classes/nope", teacherToken), http.StatusNotFound)
	})
}

func Test_studentApi_subjects(t *testing.T) {
	env := setup(t)

	_, adminToken := env.createAdmin(t)
	_, teacherToken := env.createTeacher(t)

	t.Run("code must be alphanumeric", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/subjects", adminToken, student.NewSubject{Name: "Mathematics", Code: "MTH-1"})
		checkCode(t, rec, http.StatusBadRequest)
	})
	t.Run("created with upper-cased code", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/subjects", adminToken, student.NewSubject{Name: "Mathematics", Code: "mth"})
		checkCode(t, rec, http.StatusCreated)

		var sub student.Subject
		decodeJSON(t, rec, &sub)
		assert.Equal(t, "MTH", sub.Code)
	})
	t.Run("listed for staff", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/subjects", teacherToken)
		checkCode(t, rec, http.StatusOK)

		var subjects []student.Subject
		decodeJSON(t, rec, &subjects)
		assert.Len(t, subjects, 1)
	})
	t.Run("unknown id", func(t *testing.T) {
		checkCode(t, env.request(http.MethodGet, "/v1/subjects/nope", teacherToken), http.StatusNotFound)
	})
}
