package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/statement-scanner/internal/models"
)

// JSONWriter writes scan results as indented JSON.
type JSONWriter struct {
	IncludeDebug bool
}

func (w *JSONWriter) Write(out io.Writer, result *models.ScanResult) error {
	doc := *result
	if !w.IncludeDebug {
		doc.DebugLines = nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
