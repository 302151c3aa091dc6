package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives named text outputs produced by the export writer.
type Sink interface {
	Write(name, text string) error
}

// DirSink writes each output as a file inside one destination directory.
type DirSink struct {
	dir string
}

// NewDirSink creates the destination directory if needed and returns a
// sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the destination directory.
func (s *DirSink) Dir() string {
	return s.dir
}

// Write stores one named output as a file.
func (s *DirSink) Write(name, text string) error {
	if name == "" {
		return fmt.Errorf("empty output name")
	}
	file := filepath.Join(s.dir, name)
	if err := os.WriteFile(file, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
