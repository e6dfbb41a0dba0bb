package model

import "fmt"

// ValidationError covers missing or malformed request fields.
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

// NotFoundError means the identity key (or a whole sheet) is not in the store.
type NotFoundError struct {
	msg string
}

func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string { return e.msg }

// SchemaError means an expected header column is absent from the sheet.
// The header row is the schema; renaming a column breaks the lookup.
type SchemaError struct {
	Sheet  string
	Column string
}

func NewSchemaError(sheet, column string) *SchemaError {
	return &SchemaError{Sheet: sheet, Column: column}
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("Sheet %q is missing column %q", e.Sheet, e.Column)
}

// UnknownActionError is returned for action names outside the dispatch table.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return "Unknown action: " + e.Action
}
