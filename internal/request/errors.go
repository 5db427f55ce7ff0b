package request

import (
	"fmt"
	"strings"
)

// SchemaError means the payload is not shaped like the target type: wrong
// content type, malformed syntax, wrong field types or missing fields.
type SchemaError struct {
	Reason string
	Fields []string
	Err    error
}

// NewSchemaError creates a SchemaError for the given fields.
func NewSchemaError(reason string, fields ...string) *SchemaError {
	return &SchemaError{Reason: reason, Fields: fields}
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema: ")
	b.WriteString(e.Reason)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Violation is one failed domain rule.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError means the payload decoded fine but broke domain rules.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			msgs = append(msgs, v.Field+": "+v.Message)
		} else {
			msgs = append(msgs, v.Message)
		}
	}
	return "validation: " + strings.Join(msgs, "; ")
}
