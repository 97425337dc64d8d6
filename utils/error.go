package utils

import (
	"errors"
	"fmt"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError rejects an operation before anything is written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a duplicate or an already-consumed record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflictError(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// DependencyError wraps a failure of an outside collaborator (rate provider, storage, mailer).
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func NewDependencyError(dependency string, err error) error {
	return &DependencyError{Dependency: dependency, Err: err}
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConflictError(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsDependencyError(err error) bool {
	var d *DependencyError
	return errors.As(err, &d)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrorRecordNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqlDriver.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// TranslateDuplicate turns a unique-key violation into a ConflictError carrying msg.
func TranslateDuplicate(err error, msg string) error {
	if IsDuplicateKeyErr(err) {
		return NewConflictError("%s", msg)
	}
	return err
}
