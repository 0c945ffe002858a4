package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// Output formats understood by New.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Writer renders a scan result.
type Writer interface {
	Write(out io.Writer, result *models.ScanResult) error
}

// New returns the writer for format. Debug lines are only rendered by the
// table and JSON writers.
func New(format string, debug bool) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return &TableWriter{IncludeDebug: debug}, nil
	case FormatCSV:
		return &CSVWriter{IncludeHeader: true}, nil
	case FormatJSON:
		return &JSONWriter{IncludeDebug: debug}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use table, csv or json)", format)
	}
}
