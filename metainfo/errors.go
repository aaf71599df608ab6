package metainfo

import "fmt"

// SchemaError reports a well-formed bencode value that is not valid metainfo.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "metainfo: " + e.Reason
	}
	return fmt.Sprintf("metainfo: %s: %s", e.Field, e.Reason)
}

func schemaErrorf(field string, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
