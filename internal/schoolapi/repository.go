// Package schoolapi serves the school REST backend consumed by
// internal/school.
package schoolapi

import (
	"context"
	"errors"
	"time"

	"github.com/matheus3301/classnotes/internal/school"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when an account email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// Account is a login identity for the REST backend.
type Account struct {
	ID           int64
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Repository persists classes, students, subjects and accounts.
// Deleting a class removes its students and subject links.
type Repository interface {
	Classes(ctx context.Context) ([]school.Class, error)
	Class(ctx context.Context, id int64) (*school.Class, error)
	CreateClass(ctx context.Context, c school.Class) (*school.Class, error)
	UpdateClass(ctx context.Context, c school.Class) (*school.Class, error)
	DeleteClass(ctx context.Context, id int64) error

	StudentsByClass(ctx context.Context, classID int64) ([]school.Student, error)
	CreateStudent(ctx context.Context, s school.Student) (*school.Student, error)
	UpdateStudent(ctx context.Context, s school.Student) (*school.Student, error)
	DeleteStudent(ctx context.Context, id int64) error

	Subjects(ctx context.Context) ([]school.Subject, error)
	CreateSubject(ctx context.Context, s school.Subject) (*school.Subject, error)
	UpdateSubject(ctx context.Context, s school.Subject) (*school.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
	LinkSubject(ctx context.Context, classID, subjectID int64) error
	UnlinkSubject(ctx context.Context, classID, subjectID int64) error

	AccountByEmail(ctx context.Context, email string) (*Account, error)
	CreateAccount(ctx context.Context, email string, hash []byte) (*Account, error)

	Close()
}
