package export

import (
	"encoding/json"
	"io"
)

// JSONExporter writes the normalized session as a single JSON document.
type JSONExporter struct{}

func (e *JSONExporter) Extension() string { return "json" }

func (e *JSONExporter) Export(s *Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildDocument(s))
}
