package sshagent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// Agent is a connected remote execution agent. It offers both file
// operations and process execution over one SSH connection.
type Agent struct {
	client    *ssh.Client
	agentConn net.Conn
}

// Connect dials t and authenticates with the identity file, the default keys
// and a running ssh-agent, in that order.
func Connect(ctx context.Context, t Target) (*Agent, error) {
	auth, agentConn, err := authMethods(t)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth methods: %w", err)
	}

	hostKeys, err := hostKeyCallback(t)
	if err != nil {
		if agentConn != nil {
			_ = agentConn.Close()
		}
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            t.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         t.Timeout,
	}

	client, err := dial(ctx, t.Address(), config)
	if err != nil {
		if agentConn != nil {
			_ = agentConn.Close()
		}
		return nil, err
	}
	return &Agent{client: client, agentConn: agentConn}, nil
}

func authMethods(t Target) ([]ssh.AuthMethod, net.Conn, error) {
	var methods []ssh.AuthMethod

	if t.IdentityFile != "" {
		signer, err := loadPrivateKey(t.IdentityFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load identity file %s: %w", t.IdentityFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	for _, path := range defaultIdentityFiles() {
		if signer, err := loadPrivateKey(path); err == nil {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	var agentConn net.Conn
	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			agentConn = conn
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if len(methods) == 0 {
		return nil, nil, errors.New("no authentication methods available")
	}
	return methods, agentConn, nil
}

func loadPrivateKey(path string) (ssh.Signer, error) {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(key)
}

func hostKeyCallback(t Target) (ssh.HostKeyCallback, error) {
	path := t.KnownHostsFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			candidate := filepath.Join(home, ".ssh", "known_hosts")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path == "" {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // no known_hosts to verify against
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts %s: %w", path, err)
	}
	return callback, nil
}

func dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := &net.Dialer{Timeout: config.Timeout}

	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		_ = netConn.Close()
		return nil, fmt.Errorf("SSH handshake failed: %w", err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// Close closes the connection.
func (a *Agent) Close() error {
	if a.agentConn != nil {
		_ = a.agentConn.Close()
	}
	return a.client.Close()
}

// commandResult is the outcome of a short helper command.
type commandResult struct {
	stdout   []byte
	stderr   []byte
	exitCode int
}

// run executes cmd with optional stdin and collects its output.
func (a *Agent) run(ctx context.Context, cmd string, stdin io.Reader) (*commandResult, error) {
	session, err := a.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = stdin
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		return nil, ctx.Err()
	case err := <-done:
		result := &commandResult{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
		if err != nil {
			var exitErr *ssh.ExitError
			if !errors.As(err, &exitErr) {
				return nil, err
			}
			result.exitCode = exitErr.ExitStatus()
		}
		return result, nil
	}
}

// mustRun runs cmd and fails unless it exits with 0.
func (a *Agent) mustRun(ctx context.Context, what, cmd string, stdin io.Reader) (*commandResult, error) {
	result, err := a.run(ctx, cmd, stdin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if result.exitCode != 0 {
		return nil, fmt.Errorf("%s: exit code %d: %s", what, result.exitCode, strings.TrimSpace(string(result.stderr)))
	}
	return result, nil
}

// DirectorySeparator returns '/'; remote agents are POSIX hosts.
func (a *Agent) DirectorySeparator() rune {
	return '/'
}

// CreateDirectory creates path and any missing parents.
func (a *Agent) CreateDirectory(ctx context.Context, path string) error {
	_, err := a.mustRun(ctx, "create directory "+path, "mkdir -p -- "+shellescape.Quote(path), nil)
	return err
}

// FileExists reports whether path is a regular file.
func (a *Agent) FileExists(ctx context.Context, path string) (bool, error) {
	result, err := a.run(ctx, "test -f "+shellescape.Quote(path), nil)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", path, err)
	}
	switch result.exitCode {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, fmt.Errorf("probe %s: exit code %d", path, result.exitCode)
	}
}

// DeleteFile removes path.
func (a *Agent) DeleteFile(ctx context.Context, path string) error {
	_, err := a.mustRun(ctx, "delete "+path, "rm -f -- "+shellescape.Quote(path), nil)
	return err
}

// WriteAllText replaces path with text.
func (a *Agent) WriteAllText(ctx context.Context, path, text string) error {
	_, err := a.mustRun(ctx, "write "+path, "cat > "+shellescape.Quote(path), strings.NewReader(text))
	return err
}

// OpenFile reads path in full and returns a reader over its content.
func (a *Agent) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	result, err := a.mustRun(ctx, "read "+path, "cat -- "+shellescape.Quote(path), nil)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(result.stdout)), nil
}

// GetEnvironmentVariable returns the value of name in the login environment,
// or "" if it is unset.
func (a *Agent) GetEnvironmentVariable(ctx context.Context, name string) (string, error) {
	result, err := a.run(ctx, "printenv "+shellescape.Quote(name), nil)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if result.exitCode != 0 {
		return "", nil
	}
	return strings.TrimRight(string(result.stdout), "\r\n"), nil
}

// Ensure Agent implements the agent ports.
var (
	_ ports.FileOperations  = (*Agent)(nil)
	_ ports.ProcessExecutor = (*Agent)(nil)
)
