// Package config loads service definition files. Definitions are TOML
// or YAML, layered over defaults, with RUNITSV_-prefixed environment
// variables overriding scalar fields.
package config

import (
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/weykent/runitsv/pkg/errors"
	"github.com/weykent/runitsv/pkg/service"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// RUNITSV_STATE=down or RUNITSV_UMASK=0022.
const EnvPrefix = "RUNITSV_"

// Load reads a definition file and returns the resolved definition.
// The parser is chosen by file extension: .toml, .yaml or .yml.
func Load(path string) (*service.Definition, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load definition from %s", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var def service.Definition
	if err := k.Unmarshal("", &def); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to unmarshal definition from %s", path)
	}

	// An envdir table that is present but empty still means "manage
	// an empty envdir"; only a missing key purges the env subtree.
	if def.Envdir == nil && k.Exists("envdir") {
		def.Envdir = map[string]string{}
	}

	return &def, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"state":             service.StatePresent,
		"umask":             service.DefaultUmask,
		"sv-directory":      service.DefaultSvDirectories,
		"service-directory": service.DefaultServiceDirectories,
		"init-d-directory":  service.DefaultInitDDirectories,
	}
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported definition format: %s", path)
	}
}

// envTransform maps RUNITSV_LOG_RUNSCRIPT to log-runscript and so on.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
