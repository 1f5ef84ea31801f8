package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tkohara/ccsm/internal/archive"
)

const maxLineSize = 10 * 1024 * 1024

// JSONLExporter copies the raw transcript, line for line. Unclassified
// records survive this path even though aggregation skips them.
type JSONLExporter struct{}

func (e *JSONLExporter) Extension() string { return "jsonl" }

func (e *JSONLExporter) Export(s *Session, w io.Writer) error {
	f, err := archive.Open(s.FilePath)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		if _, err := w.Write(sc.Bytes()); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return sc.Err()
}
