package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the normalized session as a YAML document.
type YAMLExporter struct{}

func (e *YAMLExporter) Extension() string { return "yaml" }

func (e *YAMLExporter) Export(s *Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(buildDocument(s))
}
