package errors

import (
	"fmt"
	"reflect"
	"strings"
)

// FieldError is a constraint failure on a single request field.
type FieldError struct {
	Field   string
	Message string
}

// ObjectError is a cross-field constraint failure on a whole request object.
type ObjectError struct {
	Object  string
	Message string
}

// ValidationError reports every constraint a request body failed, field errors
// and object errors each in the order the validator produced them.
type ValidationError struct {
	FieldErrors  []FieldError
	ObjectErrors []ObjectError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.FieldErrors)+len(e.ObjectErrors))
	for _, fe := range e.FieldErrors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	for _, oe := range e.ObjectErrors {
		parts = append(parts, oe.Object+": "+oe.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// ConstraintViolation is a failed constraint on a handler parameter.
// RootType is the fully qualified name of the type owning the handler and
// PropertyPath is "<method>.<parameter>".
type ConstraintViolation struct {
	RootType     string
	PropertyPath string
	Message      string
}

// ConstraintViolationError reports failed handler parameter constraints.
type ConstraintViolationError struct {
	Violations []ConstraintViolation
}

func (e *ConstraintViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.PropertyPath+": "+v.Message)
	}

	return "constraint violation: " + strings.Join(parts, "; ")
}

// TypeMismatchError reports a request parameter that could not be converted to
// the type the handler declared for it.
type TypeMismatchError struct {
	Name         string
	RequiredType reflect.Type
	Value        string
	Cause        error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s should be of type %s", e.Name, TypeName(e.RequiredType))
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Cause
}

// TypeName returns the fully qualified name of t: import path and name for
// named types, the Go syntax for everything else.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	}

	return t.String()
}
