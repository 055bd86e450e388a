// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/canvas-export/internal/secrets"
)

// tokenEnvName returns the variable that holds the token: the optional
// second positional argument, else --token-env.
func tokenEnvName(cmd *cobra.Command, args []string) string {
	if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
		return strings.TrimSpace(args[1])
	}
	name, _ := cmd.Flags().GetString("token-env")
	if name == "" {
		return defaultTokenEnv
	}
	return name
}

// resolveToken returns the Canvas token from --token, then the environment,
// local.env, and .secrets/. An empty result is not an error here; the
// exporter reports it as a configuration error.
func resolveToken(cmd *cobra.Command, envName string, r secrets.Resolver) (string, error) {
	if t, _ := cmd.Flags().GetString("token"); strings.TrimSpace(t) != "" {
		log.Debug("credential resolved", "source", "flag")
		return strings.TrimSpace(t), nil
	}
	value, source, err := r.Lookup(envName)
	if err != nil {
		return "", err
	}
	if value != "" {
		log.Debug("credential resolved", "source", source, "name", envName)
	}
	return value, nil
}

func defaultResolver() secrets.Resolver {
	return secrets.Resolver{
		EnvFile:    secrets.DefaultEnvFile,
		SecretsDir: secrets.DefaultSecretsDir,
	}
}
