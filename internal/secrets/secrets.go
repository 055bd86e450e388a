// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves credentials for canvas-export. A credential can
// come from the process environment, from a shell-style env file such as
// local.env, or from a directory of plain-text files where the filename is
// the key and the trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
)

// Default locations searched after the process environment.
const (
	DefaultEnvFile    = "local.env"
	DefaultSecretsDir = ".secrets"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile parses a dotenv-style file such as local.env: KEY=VALUE
// lines with an optional "export" prefix, "#" comments, and single or double
// quoted values. The process environment is not modified. A missing file
// returns an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		// gotenv's error quotes the offending line, which may hold a credential.
		return nil, fmt.Errorf("parsing env file %s: line is not KEY=VALUE", path)
	}
	return env, nil
}

// Resolver looks a credential up in the process environment, then EnvFile,
// then SecretsDir. Empty paths skip that source.
type Resolver struct {
	// Getenv reads the process environment; nil means os.Getenv.
	Getenv     func(string) string
	EnvFile    string
	SecretsDir string
}

// Source names returned by Lookup.
const (
	SourceEnv     = "environment"
	SourceEnvFile = "env file"
	SourceDir     = "secrets directory"
)

// Lookup returns the first non-empty value for name and where it came from.
// A missing value returns ("", "", nil); only unreadable sources are errors.
func (r Resolver) Lookup(name string) (value, source string, err error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(name)); v != "" {
		return v, SourceEnv, nil
	}

	if r.EnvFile != "" {
		values, err := LoadEnvFile(r.EnvFile)
		if err != nil {
			return "", "", err
		}
		if v := strings.TrimSpace(values[name]); v != "" {
			return v, SourceEnvFile, nil
		}
	}

	if r.SecretsDir != "" {
		values, err := Load(r.SecretsDir)
		if err != nil {
			return "", "", err
		}
		if v := values[name]; v != "" {
			return v, SourceDir, nil
		}
	}
	return "", "", nil
}
