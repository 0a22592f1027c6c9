package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nodeops/internal/domain/npm"
)

// operation runs one npm operation. command is the first positional
// argument, or "" when the command takes none.
type operation func(ctx context.Context, r *npm.Runner, opts npm.Options, command, extra string) (npm.Result, error)

func init() {
	rootCmd.AddCommand(
		newOperationCmd("install [-- ARGS]", "Install the package's dependencies", 0,
			func(ctx context.Context, r *npm.Runner, opts npm.Options, _, extra string) (npm.Result, error) {
				return r.Install(ctx, opts, extra)
			}),
		newOperationCmd("build [-- ARGS]", "Run the package's build script", 0,
			func(ctx context.Context, r *npm.Runner, opts npm.Options, _, extra string) (npm.Result, error) {
				return r.Build(ctx, opts, extra)
			}),
		newOperationCmd("run COMMAND [-- ARGS]", "Run a package script", 1,
			func(ctx context.Context, r *npm.Runner, opts npm.Options, command, extra string) (npm.Result, error) {
				return r.Run(ctx, opts, command, extra)
			}),
		newOperationCmd("exec COMMAND [-- ARGS]", "Run an arbitrary npm command", 1,
			func(ctx context.Context, r *npm.Runner, opts npm.Options, command, extra string) (npm.Result, error) {
				return r.Exec(ctx, opts, command, extra)
			}),
		newOperationCmd("publish [-- ARGS]", "Publish the package", 0,
			func(ctx context.Context, r *npm.Runner, opts npm.Options, _, extra string) (npm.Result, error) {
				return r.Publish(ctx, opts, extra)
			}),
	)
}

func newOperationCmd(use, short string, positional int, op operation) *cobra.Command {
	flags := &operationFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  maxPositional(positional),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, flags, args, op)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runOperation(cmd *cobra.Command, flags *operationFlags, args []string, op operation) error {
	positional, extra := splitArgs(cmd, args)
	command := ""
	if len(positional) > 0 {
		command = positional[0]
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	opts := flags.options(cmd.Flags(), env.config.Defaults)
	result, err := op(cmd.Context(), env.runner, opts, command, extra)
	if err != nil {
		return err
	}
	if !result.Success {
		return errOperationFailed
	}
	return nil
}
