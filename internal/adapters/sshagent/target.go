// Package sshagent runs npm operations on a remote POSIX host over SSH.
package sshagent

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Target identifies the remote agent.
type Target struct {
	User string
	Host string
	Port int
	// IdentityFile is tried before the default keys in ~/.ssh.
	IdentityFile string
	// KnownHostsFile verifies the host key; empty means ~/.ssh/known_hosts
	// when that file exists.
	KnownHostsFile string
	Timeout        time.Duration
}

// ParseTarget parses an agent address of the form ssh://[user@]host[:port].
func ParseTarget(s string) (Target, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Target{}, fmt.Errorf("invalid agent %q: %w", s, err)
	}
	if u.Scheme != "ssh" || u.Hostname() == "" {
		return Target{}, fmt.Errorf("invalid agent %q: expected ssh://[user@]host[:port]", s)
	}

	t := Target{Host: u.Hostname(), Port: 22, Timeout: 30 * time.Second}
	if u.User != nil {
		t.User = u.User.Username()
	}
	if t.User == "" {
		t.User = os.Getenv("USER")
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Target{}, fmt.Errorf("invalid agent %q: bad port %q", s, p)
		}
		t.Port = port
	}
	return t, nil
}

// Address returns host:port.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func defaultIdentityFiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
}
