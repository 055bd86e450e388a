// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the canvas-export CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/canvas-export/internal/logger"
	"github.com/pdiddy/canvas-export/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultBaseURL   = "https://canvas.oregonstate.edu"
	defaultTokenEnv  = "canvas_token"
	defaultUserAgent = "canvas-export/0.1"
)

// log is the diagnostic logger, replaced in PersistentPreRunE once the
// level is known.
var log = logger.Nop()

// rootCmd exports a course when run with a course ID.
var rootCmd = &cobra.Command{
	Use:   "canvas-export <course_id> [token_env]",
	Short: "Export a Canvas course's Exploration pages as text files",
	Long: `canvas-export signs in to the Canvas LMS API with a bearer token, walks a
course's modules, and writes every page in the target category (by default
"Exploration") to <out_dir>/<course_id>/ as one .txt file per page.

The token is read from --token, the environment variable named by the
optional second argument or --token-env (default canvas_token), local.env,
or .secrets/<name>, in that order.`,
	Args: cobra.RangeArgs(1, 2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		log = l
		cmd.SilenceUsage = true
		return nil
	},
	RunE: runExport,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./canvas-export.yaml or ~/.config/canvas-export/canvas-export.yaml)")
	pf.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	pf.String("token", "", "Canvas API token (prefer the environment)")
	pf.String("token-env", defaultTokenEnv, "environment variable holding the Canvas API token")
	pf.String("base-url", defaultBaseURL, "Canvas instance URL")
	pf.Duration("timeout", 0, "per-request timeout (default 30s)")
	pf.String("out-dir", ".", "parent directory for the <course_id> output directory")
	pf.String("category", types.DefaultCategory, "page category to export")
	pf.String("match", string(types.MatchExact), "category match mode: exact, fold, or contains")
	pf.String("format", string(types.FormatHTML), "file content: html (verbatim) or text")
	pf.String("naming", string(types.NamingTitle), "file naming: title or module")
	pf.String("metrics-file", "", "write Prometheus text metrics to this file at exit")

	bindFlags(pf, map[string]string{
		"log_level":    "log-level",
		"base_url":     "base-url",
		"timeout":      "timeout",
		"out_dir":      "out-dir",
		"category":     "category",
		"match":        "match",
		"format":       "format",
		"naming":       "naming",
		"metrics_file": "metrics-file",
	})
}

// bindFlags binds each viper key to the named flag in fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("canvas-export")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "canvas-export"))
		}
	}

	viper.SetDefault("user_agent", defaultUserAgent+" ("+version+")")
	viper.SetDefault("sftp.port", 22)

	viper.SetEnvPrefix("CANVAS_EXPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// canvasConfig materializes the Canvas settings from viper.
func canvasConfig() types.CanvasConfig {
	return types.CanvasConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		BaseURL: viper.GetString("base_url"),
	}
}

// exportConfig materializes the export settings from viper.
func exportConfig() types.ExportConfig {
	return types.ExportConfig{
		OutDir:      viper.GetString("out_dir"),
		Category:    viper.GetString("category"),
		Match:       types.MatchMode(viper.GetString("match")),
		Format:      types.ContentFormat(viper.GetString("format")),
		Naming:      types.NamingStyle(viper.GetString("naming")),
		MetricsFile: viper.GetString("metrics_file"),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
