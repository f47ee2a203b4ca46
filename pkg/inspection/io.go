package inspection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a snapshot to indented JSON bytes.
func Marshal(in Inspection) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(in, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a snapshot as indented JSON to w.
func Write(in Inspection, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a snapshot to a JSON file with 0644 permissions.
func WriteFile(in Inspection, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(in, f)
}

// Read decodes and validates a JSON snapshot from r.
func Read(r io.Reader) (Inspection, error) {
	var in Inspection
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Inspection{}, fmt.Errorf("decode: %w", err)
	}
	if in.Nodes == nil {
		in.Nodes = []Node{}
	}
	if err := in.Validate(); err != nil {
		return Inspection{}, err
	}
	return in, nil
}

// ReadFile reads and validates a JSON snapshot file.
func ReadFile(path string) (Inspection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Inspection{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// =============================================================================
// File Source
// =============================================================================

// FileSource re-reads a snapshot file on every request, so edits to the file
// show up in a running visualiser.
type FileSource struct {
	Path   string
	Logger *log.Logger
}

// NewFileSource creates a source backed by the JSON file at path.
func NewFileSource(path string, logger *log.Logger) *FileSource {
	if logger == nil {
		logger = log.Default()
	}
	return &FileSource{Path: path, Logger: logger}
}

// RequestInspection reads the file. A read or decode failure is logged and
// the channel is closed without a value.
func (s *FileSource) RequestInspection(context.Context) <-chan Inspection {
	in, err := ReadFile(s.Path)
	if err != nil {
		s.Logger.Warn("inspection file unreadable", "path", s.Path, "err", err)
		return Closed()
	}
	return Deliver(in)
}

// Ensure FileSource implements Source.
var _ Source = (*FileSource)(nil)
