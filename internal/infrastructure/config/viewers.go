package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// viewersFile is the on-disk shape of a viewer table override:
//
//	viewers:
//	  md: text
//	  .svg: image
type viewersFile struct {
	Viewers map[string]string `yaml:"viewers" toml:"viewers"`
}

// LoadViewers reads extension to viewer kind overrides from a YAML or TOML
// file, chosen by extension. An empty path returns no overrides.
func LoadViewers(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read viewers file: %w", err)
	}

	var f viewersFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported viewers file format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewers file %s: %w", path, err)
	}
	return f.Viewers, nil
}
