package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the path of the local override file for a config file,
// `votes.json5` becomes `votes.local.json5`.
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readInto[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a configuration file and layers it on top of `defaults`.
// The following sources are merged, higher number wins:
//  1. defaults
//  2. <name>.<ext>
//  3. <name>.local.<ext>
//
// Each file is decoded onto the result of the layers below it, so a key
// only changes when a file sets it, explicit zeros and false included. A
// missing file is not an error, the defaults are returned as is.
func ReadConfig[T any](name string, defaults T) (T, error) {
	out := defaults

	for _, path := range []string{name, LocalPath(name)} {
		layer := out
		found, err := readInto(path, &layer)
		if err != nil {
			return defaults, err
		}
		if !found {
			continue
		}
		out = layer
		slog.Debug("merged config file", "path", path)
	}

	return out, nil
}

// Override copies every non-zero field of overrides onto base. It is meant
// for command line flags, whose zero value means "not given", so a zero can
// not be forced through it.
func Override[T any](base T, overrides T) (T, error) {
	out := base
	err := mergo.Merge(&out, overrides, mergo.WithOverride)
	if err != nil {
		return base, err
	}
	return out, nil
}
