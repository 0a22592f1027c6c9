package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nodeops/internal/domain/npmrc"
)

var npmrcCmd = &cobra.Command{
	Use:   "npmrc",
	Short: "Inspect npm configuration files",
}

var npmrcShowCmd = &cobra.Command{
	Use:   "show [FILE]",
	Short: "Show an .npmrc with secrets masked",
	Long: `Show the registry, scopes and credentials configured in an .npmrc.

FILE defaults to .npmrc in the working directory and is read from the
execution agent, so a file generated on a remote agent can be inspected too.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNpmrcShow,
}

func init() {
	npmrcCmd.AddCommand(npmrcShowCmd)
	rootCmd.AddCommand(npmrcCmd)
}

func runNpmrcShow(cmd *cobra.Command, args []string) error {
	name := ".npmrc"
	if len(args) > 0 {
		name = args[0]
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	path := env.exec.ResolvePath(name)
	f, err := env.exec.Agent.Files.OpenFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	doc, err := npmrc.Read(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	printDocument(cmd.OutOrStdout(), path, doc)
	return nil
}

func printDocument(out io.Writer, path string, doc *npmrc.Document) {
	_, _ = fmt.Fprintf(out, "%s\n\n", path)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	registry := doc.Registry
	if registry == "" {
		registry = "(npm default)"
	}
	_, _ = fmt.Fprintf(w, "registry\t%s\n", registry)
	_, _ = fmt.Fprintf(w, "strict-ssl\t%t\n", doc.StrictSSL)
	_, _ = fmt.Fprintf(w, "always-auth\t%t\n", doc.AlwaysAuth)
	_ = w.Flush()

	if len(doc.Scopes) > 0 {
		_, _ = fmt.Fprintln(out, "\nScopes:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, s := range doc.Scopes {
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", s.Scope, s.Registry)
		}
		_ = w.Flush()
	}

	if len(doc.Credentials) > 0 {
		_, _ = fmt.Fprintln(out, "\nCredentials:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, c := range doc.Credentials {
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", c.RegistryKey, c.Key, c.Value)
		}
		_ = w.Flush()
	}

	if len(doc.Other) > 0 {
		keys := make([]string, 0, len(doc.Other))
		for k := range doc.Other {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		_, _ = fmt.Fprintln(out, "\nOther settings:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", k, doc.Other[k])
		}
		_ = w.Flush()
	}
}
