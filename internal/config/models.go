package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"shutterplan/internal/ai"
)

// ErrUnsupportedFormat is returned for model files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("config: unsupported models file format")

type modelsFile struct {
	Models []ai.ModelConfig `yaml:"models" toml:"models"`
}

// LoadModels reads and validates a model catalog file. The format is chosen by
// extension (.yaml, .yml, .toml). An empty path yields the built-in catalog.
func LoadModels(path string) ([]ai.ModelConfig, error) {
	if path == "" {
		return append([]ai.ModelConfig(nil), ai.DefaultModels...), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var models []ai.ModelConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		models, err = decodeModelsYAML(f)
	case ".toml":
		models, err = decodeModelsTOML(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if err := ai.ValidateModels(models); err != nil {
		return nil, err
	}
	return models, nil
}

func decodeModelsYAML(r io.Reader) ([]ai.ModelConfig, error) {
	var mf modelsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return mf.Models, nil
}

func decodeModelsTOML(r io.Reader) ([]ai.ModelConfig, error) {
	var mf modelsFile
	md, err := toml.NewDecoder(r).Decode(&mf)
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode toml: unknown keys %s", strings.Join(keys, ", "))
	}
	return mf.Models, nil
}
