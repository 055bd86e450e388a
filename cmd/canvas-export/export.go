// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/canvas-export/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <course_id> [token_env]",
	Short: "Write a course's category pages to <out_dir>/<course_id>/",
	Long: `Export lists the course's modules, keeps the pages whose category matches
(default "Exploration"), and writes each page body to its own .txt file.
A page that cannot be fetched or written is reported and skipped; the
command exits non-zero if any page failed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	courseID, err := export.ParseCourseID(args[0])
	if err != nil {
		return err
	}
	token, err := resolveToken(cmd, tokenEnvName(cmd, args), defaultResolver())
	if err != nil {
		return err
	}

	cfg := exportConfig()
	var metrics *export.Metrics
	if cfg.MetricsFile != "" {
		metrics = export.NewMetrics()
	}

	e, err := export.New(courseID, token, canvasConfig(), cfg,
		export.WithOutput(cmd.OutOrStdout()),
		export.WithLogger(log),
		export.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	result, runErr := e.Run(cmd.Context())
	metrics.Finish(runErr == nil && !result.HasFailures(), time.Now())
	if err := metrics.WriteFile(cfg.MetricsFile); err != nil {
		log.Warn("metrics not written", "error", err)
	}

	if runErr != nil {
		return runErr
	}
	if result.HasFailures() {
		return fmt.Errorf("%d page(s) failed export", result.Failed)
	}
	return nil
}
