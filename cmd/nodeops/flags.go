package main

import (
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/nodeops/internal/domain/config"
	"github.com/felixgeelhaar/nodeops/internal/domain/npm"
)

// npmPathEnv names the environment variable that provides the default npm path.
const npmPathEnv = "NPM_PATH"

// operationFlags are the flags shared by every npm operation command.
type operationFlags struct {
	sourceDir       string
	packageSource   string
	scopes          []string
	npmVerbose      bool
	successExitCode string
	npmPath         string
	npmrc           string
	allowSelfSigned bool
}

func (f *operationFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.sourceDir, "source-dir", "", "directory npm runs in (default: working directory)")
	fs.StringVar(&f.packageSource, "package-source", "", "package source name or registry URL to write a .npmrc for")
	fs.StringArrayVar(&f.scopes, "scope", nil, "scope to route to the package source (repeatable)")
	fs.BoolVar(&f.npmVerbose, "npm-verbose", false, "run npm with --loglevel verbose")
	fs.StringVar(&f.successExitCode, "success-exit-code", "", `success policy, e.g. "0" or "< 2" (default: ignore exit code)`)
	fs.StringVar(&f.npmPath, "npm-path", "", "npm executable (default: config npm_path, then $"+npmPathEnv+", then discovery)")
	fs.StringVar(&f.npmrc, "npmrc", "", "existing .npmrc passed as --userconfig when no package source is set")
	fs.BoolVar(&f.allowSelfSigned, "allow-self-signed", false, "write strict-ssl=false to the generated .npmrc")
}

// options merges the flags into the configured defaults. Flags win when set.
func (f *operationFlags) options(fs *pflag.FlagSet, d config.Defaults) npm.Options {
	opts := npm.Options{
		SourceDirectory:            d.SourceDirectory,
		PackageSource:              d.PackageSource,
		Scopes:                     npm.SplitScopes(strings.Join(d.Scopes, "\n")),
		Verbose:                    d.Verbose,
		SuccessExitCode:            d.SuccessExitCode,
		ToolPath:                   d.NpmPath,
		ConfigFilePath:             d.ConfigFile,
		AllowSelfSignedCertificate: d.AllowSelfSigned,
	}

	if fs.Changed("source-dir") {
		opts.SourceDirectory = f.sourceDir
	}
	if fs.Changed("package-source") {
		opts.PackageSource = f.packageSource
	}
	if fs.Changed("scope") {
		opts.Scopes = npm.SplitScopes(strings.Join(f.scopes, "\n"))
	}
	if fs.Changed("npm-verbose") {
		opts.Verbose = f.npmVerbose
	}
	if fs.Changed("success-exit-code") {
		opts.SuccessExitCode = f.successExitCode
	}
	opts.ToolPath = resolveToolPath(fs, f.npmPath, d.NpmPath)
	if fs.Changed("npmrc") {
		opts.ConfigFilePath = f.npmrc
	}
	if fs.Changed("allow-self-signed") {
		opts.AllowSelfSignedCertificate = f.allowSelfSigned
	}
	return opts
}

// resolveToolPath picks the npm path: the --npm-path flag, then the config
// file, then $NPM_PATH of the machine running nodeops. The agent's own
// environment is never consulted, so local and ssh:// agents behave alike.
func resolveToolPath(fs *pflag.FlagSet, flagValue, configured string) string {
	if fs.Changed("npm-path") {
		return flagValue
	}
	if configured != "" {
		return configured
	}
	return os.Getenv(npmPathEnv)
}

// splitArgs separates positional arguments from the ones after "--", which
// are quoted back into a single argument string for npm.
func splitArgs(cmd *cobra.Command, args []string) ([]string, string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, ""
	}
	return args[:dash], shellquote.Join(args[dash:]...)
}

// maxPositional is like cobra.MaximumNArgs but ignores arguments after "--".
func maxPositional(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		positional, _ := splitArgs(cmd, args)
		return cobra.MaximumNArgs(n)(cmd, positional)
	}
}
