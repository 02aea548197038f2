package derive

import (
	"fmt"
	"strings"
)

// MissingKeyError reports a key a procedure needs but the config lacks.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing key %q", e.Key)
}

// TypeError reports a key whose value has the wrong type.
type TypeError struct {
	Key   string
	Want  string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("key %q: want %s, got %T (%v)", e.Key, e.Want, e.Value, e.Value)
}

// DerivationError wraps a failure raised while applying a procedure.
type DerivationError struct {
	Procedure string
	Err       error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("procedure %s: %v", e.Procedure, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

// MissingCapabilityError reports a procedure source that does not resolve to
// an applicable procedure.
type MissingCapabilityError struct {
	Source    string
	Procedure string
}

func (e *MissingCapabilityError) Error() string {
	if e.Procedure == "" {
		return fmt.Sprintf("%s: no procedure declared", e.Source)
	}
	return fmt.Sprintf("%s: procedure %q is not registered", e.Source, e.Procedure)
}

// CyclicDependencyError reports procedures that cannot be ordered.
type CyclicDependencyError struct {
	Procedures []string
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency between procedures: " + strings.Join(e.Procedures, ", ")
}

// ConflictError reports two procedures that provide the same key.
type ConflictError struct {
	Key    string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("key %q provided by both %s and %s", e.Key, e.First, e.Second)
}
