package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nodeops/internal/adapters/filesystem"
	"github.com/felixgeelhaar/nodeops/internal/adapters/logging"
	"github.com/felixgeelhaar/nodeops/internal/adapters/process"
	"github.com/felixgeelhaar/nodeops/internal/adapters/sources"
	"github.com/felixgeelhaar/nodeops/internal/adapters/sshagent"
	"github.com/felixgeelhaar/nodeops/internal/domain/config"
	"github.com/felixgeelhaar/nodeops/internal/domain/execution"
	"github.com/felixgeelhaar/nodeops/internal/domain/npm"
	"github.com/felixgeelhaar/nodeops/internal/domain/registry"
	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// environment is everything a command needs to run an operation.
type environment struct {
	config *config.Config
	logger ports.Logger
	exec   *execution.Context
	runner *npm.Runner
	close  func() error
}

// Close disconnects from the agent.
func (e *environment) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// setup loads the configuration, connects to the agent and builds a runner.
func setup(cmd *cobra.Command) (*environment, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, err
	}

	lookup, err := sourceLookup(cfg)
	if err != nil {
		return nil, err
	}

	agent, workDir, closeAgent, err := connectAgent(ctx, cfg.Agent)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "Connected to agent", ports.F("working_directory", workDir))

	ec := execution.NewContext(agent, workDir)
	return &environment{
		config: cfg,
		logger: logger,
		exec:   ec,
		runner: npm.NewRunner(ec, registry.NewResolver(lookup), logger),
		close:  closeAgent,
	}, nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile, true)
	}
	return config.Load(config.DefaultFileName, false)
}

func newLogger(w io.Writer, cfg config.Log) (ports.Logger, error) {
	level := ports.LevelInfo
	if cfg.Level != "" {
		level, _ = ports.ParseLevel(cfg.Level)
	}
	if verboseLog {
		level = ports.LevelDebug
	}

	format := cfg.Format
	if logFormat != "" {
		format = logFormat
	}
	switch format {
	case "", "text", "json":
	default:
		return nil, &config.UserError{
			Code:       config.ErrCodeValidationFailed,
			Message:    fmt.Sprintf("unknown log format %q", format),
			Context:    "--log-format",
			Suggestion: "Use text or json.",
		}
	}

	if quiet {
		if verboseLog {
			return nil, &config.UserError{
				Code:    config.ErrCodeValidationFailed,
				Message: "--quiet and --verbose-log cannot be used together",
				Context: "--quiet",
			}
		}
		return logging.NewDiscardLogger(), nil
	}

	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(format == "json"),
	), nil
}

// loadCatalog returns the package source catalogue, or nil when none is
// configured. --sources wins over the config file.
func loadCatalog(cfg *config.Config) (*sources.Catalog, error) {
	secrets := sources.NewKeyringStore()

	switch {
	case sourcesFile != "":
		return sources.LoadFile(sourcesFile, secrets)
	case cfg.SourcesFile != "":
		return sources.LoadFile(cfg.SourcesFile, secrets)
	case len(cfg.Sources) > 0:
		entries := make([]sources.Entry, len(cfg.Sources))
		for i, s := range cfg.Sources {
			entries[i] = sources.Entry{
				Name:     s.Name,
				Type:     s.Type,
				URL:      s.URL,
				UserName: s.UserName,
				Password: s.Password,
				APIKey:   s.APIKey,
				Keyring:  s.Keyring,
			}
		}
		return sources.NewCatalog(entries, secrets)
	default:
		return nil, nil
	}
}

func sourceLookup(cfg *config.Config) (ports.SourceLookup, error) {
	catalog, err := loadCatalog(cfg)
	if err != nil || catalog == nil {
		return nil, err
	}
	return catalog, nil
}

// connectAgent returns the capability sets of the selected agent, its
// working directory and a function that disconnects from it.
func connectAgent(ctx context.Context, cfg config.Agent) (execution.Agent, string, func() error, error) {
	if agentAddress != "" {
		cfg.Address = agentAddress
	}
	if identityFile != "" {
		cfg.Identity = identityFile
	}

	if !cfg.IsRemote() {
		if cfg.Address != "" && cfg.Address != "local" {
			return execution.Agent{}, "", nil, &config.UserError{
				Code:       config.ErrCodeValidationFailed,
				Message:    fmt.Sprintf("unsupported agent %q", cfg.Address),
				Context:    "--agent",
				Suggestion: "Use \"local\" or ssh://user@host[:port].",
			}
		}

		workDir := cfg.WorkingDirectory
		if workDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return execution.Agent{}, "", nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			workDir = wd
		}
		agent := execution.Agent{Files: filesystem.NewLocalFiles(), Processes: process.NewLocalExecutor()}
		return agent, workDir, nil, nil
	}

	target, err := sshagent.ParseTarget(cfg.Address)
	if err != nil {
		return execution.Agent{}, "", nil, err
	}
	target.IdentityFile = expandHome(cfg.Identity)
	target.KnownHostsFile = expandHome(cfg.KnownHosts)

	remote, err := sshagent.Connect(ctx, target)
	if err != nil {
		return execution.Agent{}, "", nil, fmt.Errorf("failed to connect to %s: %w", target.Address(), err)
	}

	workDir := cfg.WorkingDirectory
	if workDir == "" {
		workDir, err = remote.GetEnvironmentVariable(ctx, "HOME")
		if err == nil && workDir == "" {
			err = errors.New("HOME is not set on the agent")
		}
		if err != nil {
			_ = remote.Close()
			return execution.Agent{}, "", nil, fmt.Errorf("failed to determine working directory on %s: %w", target.Address(), err)
		}
	}
	return execution.Agent{Files: remote, Processes: remote}, workDir, remote.Close, nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
