// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish uploads an exported course directory to a remote host
// over SFTP.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/pdiddy/canvas-export/pkg/types"
)

const (
	defaultPort      = 22
	defaultRemoteDir = "."
	defaultTimeout   = 20 * time.Second
)

// Result holds the outcome of an upload.
type Result struct {
	// RemoteDir is the directory the files were written to.
	RemoteDir string
	// Files lists remote paths in upload order.
	Files []string
	Bytes int64
}

// UploadDir copies every regular file directly under localDir to
// <cfg.RemoteDir>/<courseID> on the SFTP server. Subdirectories and hidden
// files are skipped. Existing remote files are overwritten.
func UploadDir(ctx context.Context, cfg types.SFTPConfig, localDir string, courseID int64, w io.Writer) (Result, error) {
	cfg = withDefaults(cfg)
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return Result{}, fmt.Errorf("%w: sftp host, user, and password are required", types.ErrConfiguration)
	}
	callback, err := hostKeyCallback(cfg)
	if err != nil {
		return Result{}, err
	}

	sshClient, err := dial(ctx, cfg, callback)
	if err != nil {
		return Result{}, err
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return Result{}, fmt.Errorf("sftp: starting session: %w", err)
	}
	defer client.Close()

	remoteDir := path.Join(cfg.RemoteDir, strconv.FormatInt(courseID, 10))
	return Upload(ctx, client, localDir, remoteDir, w)
}

// Upload copies the regular files under localDir into remoteDir using an
// established SFTP session, creating remoteDir if needed.
func Upload(ctx context.Context, client *sftp.Client, localDir, remoteDir string, w io.Writer) (Result, error) {
	result := Result{RemoteDir: remoteDir}

	files, err := localFiles(localDir)
	if err != nil {
		return result, err
	}
	if err := client.MkdirAll(remoteDir); err != nil {
		return result, fmt.Errorf("sftp: creating %s: %w", remoteDir, err)
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		remotePath := path.Join(remoteDir, name)
		n, err := uploadFile(client, filepath.Join(localDir, name), remotePath)
		if err != nil {
			return result, err
		}
		fmt.Fprintf(w, "Uploaded: '%s' (%d bytes)\n", remotePath, n)
		result.Files = append(result.Files, remotePath)
		result.Bytes += n
	}
	return result, nil
}

func uploadFile(client *sftp.Client, localPath, remotePath string) (int64, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("%w: opening %s: %w", types.ErrFilesystem, localPath, err)
	}
	defer src.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return 0, fmt.Errorf("sftp: creating %s: %w", remotePath, err)
	}
	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("sftp: writing %s: %w", remotePath, err)
	}
	return n, nil
}

// localFiles returns the sorted names of the regular, non-hidden files in dir.
func localFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", types.ErrFilesystem, dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func withDefaults(cfg types.SFTPConfig) types.SFTPConfig {
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = defaultRemoteDir
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// hostKeyCallback verifies server keys against cfg.KnownHosts, or
// ~/.ssh/known_hosts when unset. InsecureIgnoreHostKey only applies when no
// known_hosts file is configured.
func hostKeyCallback(cfg types.SFTPConfig) (ssh.HostKeyCallback, error) {
	file := cfg.KnownHosts
	if file == "" {
		if cfg.InsecureIgnoreHostKey {
			return ssh.InsecureIgnoreHostKey(), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: no known_hosts file configured", types.ErrConfiguration)
		}
		file = filepath.Join(home, ".ssh", "known_hosts")
	} else if strings.HasPrefix(file, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			file = filepath.Join(home, file[2:])
		}
	}

	callback, err := knownhosts.New(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: known_hosts file %s not found (set sftp.known_hosts or --insecure-ignore-host-key)",
				types.ErrConfiguration, file)
		}
		return nil, fmt.Errorf("%w: loading known_hosts %s: %w", types.ErrConfiguration, file, err)
	}
	return callback, nil
}

func dial(ctx context.Context, cfg types.SFTPConfig, callback ssh.HostKeyCallback) (*ssh.Client, error) {
	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: callback,
		Timeout:         cfg.Timeout,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sftp: dialing %s: %w", addr, transient(err))
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		var keyErr *knownhosts.KeyError
		if errors.As(err, &keyErr) || strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("sftp: handshake with %s: %w: %w", addr, types.ErrAuthentication, err)
		}
		return nil, fmt.Errorf("sftp: handshake with %s: %w", addr, transient(err))
	}
	conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), nil
}

func transient(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", types.ErrTransient, err)
}
