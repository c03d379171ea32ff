package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// Conflicts with existing data.
var (
	ErrPhoneTaken       = errors.New("this phone number is already registered")
	ErrNodeIndexTaken   = errors.New("a node with this index already exists")
	ErrSlugTaken        = errors.New("this slug is already in use")
	ErrAssignmentExists = errors.New("this employee is already assigned to this task")
	ErrMotorInUse       = errors.New("deleting this motor is forbidden because at least one node uses it")
	ErrMotorAmbiguous   = errors.New("more than one motor has this power")
)

// NotFoundError names the missing record in a user-facing way.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return e.What }

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(format string, args ...any) error {
	return &NotFoundError{What: fmt.Sprintf(format, args...)}
}

// ValidationError carries per-field messages for re-rendering a form.
type ValidationError struct {
	Fields map[string]string
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// OrNil returns e when it holds any message, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
