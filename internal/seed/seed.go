// Package seed reads and writes key/value files used to import into or export
// from a database location.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// file represents the structure of a seed file.
type file struct {
	Entries map[string]string `json:"entries" yaml:"entries"`
}

type codec struct {
	name      string
	ext       string
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

var codecs = []codec{
	{name: "yaml", ext: ".yaml", unmarshal: yaml.Unmarshal, marshal: yaml.Marshal},
	{name: "yaml", ext: ".yml", unmarshal: yaml.Unmarshal, marshal: yaml.Marshal},
	{name: "json", ext: ".json", unmarshal: json.Unmarshal, marshal: marshalJSON},
}

// LoadFile reads entries from a YAML or JSON file.
func LoadFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("seed file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	f, err := parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if f.Entries == nil {
		return nil, errors.New("seed file contains no entries map")
	}
	return f.Entries, nil
}

// parse decodes raw with the codec matching ext, or tries every codec when
// the extension is unknown.
func parse(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	known := false
	for _, c := range codecs {
		if ext == c.ext {
			known = true
			break
		}
	}

	var errs []error
	for _, c := range codecs {
		if known && ext != c.ext {
			continue
		}
		var f file
		if err := c.unmarshal(data, &f); err != nil {
			errs = append(errs, fmt.Errorf("decode %s seed: %w", c.name, err))
			continue
		}
		return f, nil
	}

	return file{}, fmt.Errorf("seed file format not recognized (expected YAML or JSON): %w", errors.Join(errs...))
}

// WriteFile writes entries to path, picking JSON for .json and YAML otherwise.
func WriteFile(path string, entries map[string]string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("seed file path is empty")
	}

	c := codecs[0]
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range codecs {
		if candidate.ext == ext {
			c = candidate
			break
		}
	}

	if entries == nil {
		entries = map[string]string{}
	}
	raw, err := c.marshal(file{Entries: entries})
	if err != nil {
		return fmt.Errorf("encode %s seed: %w", c.name, err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create seed directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}
