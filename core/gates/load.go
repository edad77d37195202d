package gates

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type directoryFile struct {
	Gates []Gate `json:"gates" yaml:"gates"`
}

// LoadDirectory reads a gate table from a JSON or YAML file.
func LoadDirectory(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeDirectory(f, ext)
}

// DecodeDirectory reads a gate table from r in the given format.
func DecodeDirectory(r io.Reader, format string) (*Directory, error) {
	var df directoryFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&df); err != nil {
			return nil, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&df); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported gates format: %s", format)
	}
	return New(df.Gates)
}
