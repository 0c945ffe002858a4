// Package logging wraps the structured logger used by the scanner so that
// packages depend on a small interface instead of logrus directly.
package logging

// Logger is the structured logger handed to every component that logs.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err.
	WithError(err error) Logger
	// WithField returns a child logger carrying one extra field.
	WithField(key string, value any) Logger
	// WithFields returns a child logger carrying extra fields.
	WithFields(fields ...Field) Logger
}

// Field is one key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field inline.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Standard field names so log lines can be filtered consistently.
const (
	FieldScanID    = "scan_id"
	FieldFile      = "file_path"
	FieldProvider  = "provider"
	FieldLocale    = "locale"
	FieldMerchant  = "merchant"
	FieldCategory  = "category"
	FieldCount     = "count"
	FieldLines     = "lines"
	FieldBytes     = "bytes"
	FieldDuration  = "duration_ms"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldMethod    = "method"
	FieldPath      = "path"
)
