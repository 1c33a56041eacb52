package activity

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/energyadvisor/core/model"
)

// LoadFile reads activity definitions from a JSON or YAML file. The file
// holds either a versioned Document or a bare list of activities.
func LoadFile(path string) ([]model.ActivityDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads definitions from r in the given format ("json", "yaml" or "yml").
func Decode(r io.Reader, format string) ([]model.ActivityDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var unmarshal func([]byte, any) error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		unmarshal = yaml.Unmarshal
	case "json":
		unmarshal = json.Unmarshal
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	var doc Document
	if err := unmarshal(data, &doc); err != nil {
		var list []StoredActivity
		if lerr := unmarshal(data, &list); lerr != nil {
			return nil, fmt.Errorf("decode activities: %w", err)
		}
		doc = Document{Version: StorageVersion, Activities: list}
	}
	if doc.Version > StorageVersion {
		return nil, fmt.Errorf("unsupported activity document version %d", doc.Version)
	}
	defs, err := doc.Definitions()
	if err != nil {
		return nil, err
	}
	for _, a := range defs {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}
