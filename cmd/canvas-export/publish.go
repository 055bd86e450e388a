// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/canvas-export/internal/export"
	"github.com/pdiddy/canvas-export/internal/publish"
	"github.com/pdiddy/canvas-export/internal/secrets"
	"github.com/pdiddy/canvas-export/pkg/types"
)

const (
	sftpPasswordName = "SFTP_PASS"
	sftpPasswordFile = "sftp-password"
)

var publishCmd = &cobra.Command{
	Use:   "publish <course_id>",
	Short: "Upload an exported course directory over SFTP",
	Long: `Publish copies every file in <out_dir>/<course_id>/ to
<sftp.remote_dir>/<course_id>/ on an SFTP server. Host, port, user, and
remote directory come from the config file or CANVAS_EXPORT_SFTP_* variables;
the password comes from SFTP_PASS, local.env, or .secrets/sftp-password.

Server host keys are checked against sftp.known_hosts (default
~/.ssh/known_hosts). Pass --insecure-ignore-host-key to skip the check when
no known_hosts file is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("host", "", "SFTP host")
	publishCmd.Flags().Int("port", 22, "SFTP port")
	publishCmd.Flags().String("user", "", "SFTP user")
	publishCmd.Flags().String("remote-dir", "", "remote parent directory")
	publishCmd.Flags().String("known-hosts", "", "known_hosts file for host key checks")
	publishCmd.Flags().Bool("insecure-ignore-host-key", false, "skip host key verification")

	bindFlags(publishCmd.Flags(), map[string]string{
		"sftp.host":                     "host",
		"sftp.port":                     "port",
		"sftp.user":                     "user",
		"sftp.remote_dir":               "remote-dir",
		"sftp.known_hosts":              "known-hosts",
		"sftp.insecure_ignore_host_key": "insecure-ignore-host-key",
	})

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	courseID, err := export.ParseCourseID(args[0])
	if err != nil {
		return err
	}

	localDir := filepath.Join(exportConfig().WithDefaults().OutDir, strconv.FormatInt(courseID, 10))
	if info, err := os.Stat(localDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s is not an exported course directory (run export first)", types.ErrFilesystem, localDir)
	}

	cfg, err := sftpConfig()
	if err != nil {
		return err
	}
	log.Info("publishing", "host", cfg.Host, "user", cfg.User, "remote_dir", cfg.RemoteDir, "local_dir", localDir)

	result, err := publish.UploadDir(cmd.Context(), cfg, localDir, courseID, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nPublished %d file(s), %d bytes, to %s\n", len(result.Files), result.Bytes, result.RemoteDir)
	return nil
}

// sftpConfig materializes the SFTP settings and resolves the password.
func sftpConfig() (types.SFTPConfig, error) {
	password, _, err := defaultResolver().Lookup(sftpPasswordName)
	if err != nil {
		return types.SFTPConfig{}, err
	}
	if password == "" {
		values, err := secrets.Load(secrets.DefaultSecretsDir)
		if err != nil {
			return types.SFTPConfig{}, err
		}
		password = values[sftpPasswordFile]
	}
	return types.SFTPConfig{
		Host:                  viper.GetString("sftp.host"),
		Port:                  viper.GetInt("sftp.port"),
		User:                  viper.GetString("sftp.user"),
		Password:              password,
		RemoteDir:             viper.GetString("sftp.remote_dir"),
		KnownHosts:            viper.GetString("sftp.known_hosts"),
		InsecureIgnoreHostKey: viper.GetBool("sftp.insecure_ignore_host_key"),
		Timeout:               viper.GetDuration("timeout"),
	}, nil
}
