package report

import (
	"encoding/json"
	"io"
	"sync"
)

// JSONWriter writes a report as a single JSON document.
type JSONWriter struct {
	mu     sync.Mutex
	writer io.Writer
	pretty bool
}

// NewJSONWriter creates a JSON report writer.
func NewJSONWriter(w io.Writer, pretty bool) *JSONWriter {
	return &JSONWriter{writer: w, pretty: pretty}
}

// WriteReport writes the complete report.
func (j *JSONWriter) WriteReport(r *Report) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var data []byte
	var err error

	if j.pretty {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return err
	}

	if _, err = j.writer.Write(data); err != nil {
		return err
	}
	_, err = j.writer.Write([]byte("\n"))
	return err
}
