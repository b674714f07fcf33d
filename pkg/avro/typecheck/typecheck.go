// Package typecheck holds the error taxonomy of the avro codec.
//
// Every failure carries a Kind so callers can branch with errors.Is:
//
//	if errors.Is(err, typecheck.CompositeShapeMismatch) { ... }
package typecheck

import (
	"errors"
	"fmt"
)

// Kind classifies a codec failure.
type Kind int

const (
	UnsupportedType Kind = iota + 1
	DatumTypeMismatch
	FixedLengthMismatch
	CompositeShapeMismatch
	AmbiguousUnionBranch
	UnresolvedUnionBranch
	InvalidHandle
	InvalidOption
)

var kindNames = map[Kind]string{
	UnsupportedType:        "unsupported type",
	DatumTypeMismatch:      "datum type mismatch",
	FixedLengthMismatch:    "fixed length mismatch",
	CompositeShapeMismatch: "composite shape mismatch",
	AmbiguousUnionBranch:   "ambiguous union branch",
	UnresolvedUnionBranch:  "unresolved union branch",
	InvalidHandle:          "invalid handle",
	InvalidOption:          "invalid option",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error lets a Kind be used as an errors.Is target.
func (k Kind) Error() string { return k.String() }

// Error is a codec failure with the context needed to explain it.
type Error struct {
	Kind     Kind
	Field    string
	Datatype string
	What     string
	Expected int64
	Received int64
	msg      string
}

func (e *Error) Error() string { return e.msg }

// Is matches the error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of err, or 0 if err is not a codec failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Datum reports a host value whose type does not match its schema position.
func Datum(field, datatype string, expected, received int) *Error {
	return &Error{
		Kind: DatumTypeMismatch, Field: field, Datatype: datatype,
		Expected: int64(expected), Received: int64(received),
		msg: fmt.Sprintf("Invalid datum, field: '%s', datatype: '%s', expected: %d, received: %d",
			field, datatype, expected, received),
	}
}

// Array reports an array item of the wrong type.
func Array(field, datatype string, expected, received int) *Error {
	return &Error{
		Kind: DatumTypeMismatch, Field: field, Datatype: datatype,
		Expected: int64(expected), Received: int64(received),
		msg: fmt.Sprintf("Invalid array datum, field: '%s', array datatype: '%s', expected: %d, received: %d",
			field, datatype, expected, received),
	}
}

// Map reports a map value of the wrong type.
func Map(field, datatype string, expected, received int) *Error {
	return &Error{
		Kind: DatumTypeMismatch, Field: field, Datatype: datatype,
		Expected: int64(expected), Received: int64(received),
		msg: fmt.Sprintf("Invalid map datum, field: '%s', map datatype: '%s', expected: %d, received: %d",
			field, datatype, expected, received),
	}
}

// Fixed reports a fixed value whose length differs from the schema size.
func Fixed(field string, expected, received int) *Error {
	return &Error{
		Kind: FixedLengthMismatch, Field: field, Datatype: "fixed",
		Expected: int64(expected), Received: int64(received),
		msg: fmt.Sprintf("Invalid fixed length, field: '%s', expected: %d, received: %d",
			field, expected, received),
	}
}

// Kdb reports a structural literal (decimal, duration, union, record) of the wrong shape.
func Kdb(field, datatype, what string, expected, received int64) *Error {
	return &Error{
		Kind: CompositeShapeMismatch, Field: field, Datatype: datatype, What: what,
		Expected: expected, Received: received,
		msg: fmt.Sprintf("Invalid kdb+ mapping, field: '%s', datatype: '%s', %s expected: %d, received : %d",
			field, datatype, what, expected, received),
	}
}

// Field reports a record dictionary key that names no schema field.
func Field(record, key string) *Error {
	return &Error{
		Kind: CompositeShapeMismatch, Field: key, Datatype: "record", What: record,
		msg: fmt.Sprintf("Invalid record field, record: '%s', field: '%s'", record, key),
	}
}

// DuplicateKey reports a map dictionary that repeats a key.
func DuplicateKey(field, key string) *Error {
	return &Error{
		Kind: CompositeShapeMismatch, Field: field, Datatype: "map", What: key,
		msg: fmt.Sprintf("Duplicate map key, field: '%s', key: '%s'", field, key),
	}
}

// Symbol reports a symbol that is not one of the enum's symbols.
func Symbol(field, enum, symbol string) *Error {
	return &Error{
		Kind: DatumTypeMismatch, Field: field, Datatype: "enum", What: symbol,
		msg: fmt.Sprintf("Invalid enum symbol, field: '%s', enum: '%s', received: '%s'", field, enum, symbol),
	}
}

// Branch reports a union branch selector outside the union.
func Branch(field string, branches, received int) *Error {
	return &Error{
		Kind: CompositeShapeMismatch, Field: field, Datatype: "union", What: "branch selector",
		Expected: int64(branches), Received: int64(received),
		msg: fmt.Sprintf("Invalid union branch, field: '%s', branches: %d, received: %d",
			field, branches, received),
	}
}

// Unsupported reports a schema kind the codec cannot represent.
func Unsupported(field, datatype string) *Error {
	return &Error{
		Kind: UnsupportedType, Field: field, Datatype: datatype,
		msg: fmt.Sprintf("Unsupported datatype, field: '%s', datatype: '%s'", field, datatype),
	}
}

// UnresolvedBranch reports a host type that matches no union branch.
func UnresolvedBranch(field string, received int) *Error {
	return &Error{
		Kind: UnresolvedUnionBranch, Field: field, Datatype: "union", Received: int64(received),
		msg: fmt.Sprintf("Unable to find union branch for kdb+ type %d", received),
	}
}

// AmbiguousBranch reports a host type that matches several union branches.
func AmbiguousBranch(field, candidates string) *Error {
	return &Error{
		Kind: AmbiguousUnionBranch, Field: field, Datatype: "union", What: candidates,
		msg: fmt.Sprintf("Cannot infer union branch where union contains %s", candidates),
	}
}

// Handle reports a handle that is not live.
func Handle(what string) *Error {
	return &Error{Kind: InvalidHandle, What: what, msg: what}
}

// Option reports an unsupported or malformed option.
func Option(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: InvalidOption, What: msg, msg: msg}
}
