// Package configutil reads json5 configuration files with optional local overrides.
package configutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalPath is the path of the override file for `name`, "tgscout.json5" becomes
// "tgscout.local.json5".
func LocalPath(name string) string {
	prefix, ext := splitExt(filepath.Base(name))
	if ext == "" {
		return filepath.Join(filepath.Dir(name), prefix+".local")
	}
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))
}

func readFile[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return true, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a configuration file, `name` should come with a file extension.
// The following files are merged, later ones overriding non-zero values of earlier ones.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T

	found, err := readFile(name, &out)
	if err != nil {
		return out, err
	}

	var override T
	foundLocal, err := readFile(LocalPath(name), &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, fmt.Errorf("merge local overrides: %w", err)
		}
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfigOnto is ReadConfig for configurations with defaults. Both files are decoded onto
// base in order, so keys a file leaves out keep their value and keys it sets win, zero values
// included.
func ReadConfigOnto[T any](name string, base T) (T, error) {
	out := base

	found, err := readFile(name, &out)
	if err != nil {
		return base, err
	}
	foundLocal, err := readFile(LocalPath(name), &out)
	if err != nil {
		return base, err
	}

	if !found && !foundLocal {
		return base, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem from the working directory
// until the root to find a configuration file matching the name. It also returns the
// path of the file that was read.
func ReadRecursively[T any](name string) (T, string, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, "", err
	}
	return readUpwards(current, name, ReadConfig[T])
}

// ReadRecursivelyOnto is ReadRecursively with the semantics of ReadConfigOnto.
func ReadRecursivelyOnto[T any](name string, base T) (T, string, error) {
	current, err := os.Getwd()
	if err != nil {
		return base, "", err
	}
	config, path, err := readUpwards(current, name, func(path string) (T, error) {
		return ReadConfigOnto(path, base)
	})
	if err != nil {
		return base, "", err
	}
	return config, path, nil
}

func readUpwards[T any](dir, name string, read func(path string) (T, error)) (T, string, error) {
	var defaultOut T

	for {
		path := filepath.Join(dir, name)
		config, err := read(path)
		if err == nil {
			return config, path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return defaultOut, "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return defaultOut, "", os.ErrNotExist
		}
		dir = parent
	}
}
