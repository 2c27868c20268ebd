package oracle

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource reads a LogisticModel artifact from a YAML file.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LoadActive reads and decodes the artifact. The file is re-read on every call
// so a reload picks up a replaced file.
func (s *FileSource) LoadActive(_ context.Context) (*LogisticModel, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read model file %s: %w", s.path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML model artifact.
func ParseYAML(data []byte) (*LogisticModel, error) {
	var m LogisticModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return &m, nil
}
