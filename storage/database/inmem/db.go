package inmemdb

import (
	"sync"

	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
	"github.com/reportube/reportube/core/user"
)

// DB is a mutex-guarded in-memory store backing the Repository
// implementations used in tests.
type (
	DB struct {
		user    *userTable
		student *studentTable
		class   *classTable
		subject *subjectTable
		score   *scoreTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	studentTable struct {
		table map[string]*student.Student
		mutex sync.RWMutex
	}

	classTable struct {
		table map[string]*student.Class
		mutex sync.RWMutex
	}

	subjectTable struct {
		table map[string]*student.Subject
		mutex sync.RWMutex
	}

	scoreTable struct {
		table map[string]*score.Score
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{table: make(map[string]*student.Student)},
		class:   &classTable{table: make(map[string]*student.Class)},
		subject: &subjectTable{table: make(map[string]*student.Subject)},
		score:   &scoreTable{table: make(map[string]*score.Score)},
	}
	return db, nil
}
