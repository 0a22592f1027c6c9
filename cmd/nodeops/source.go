package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nodeops/internal/adapters/sources"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage package sources",
	Long: `Manage the package source catalogue.

Sources come from --sources, the sources_file setting or the inline sources
list in nodeops.yaml. A source with "keyring: true" reads its secret from the
OS keyring, stored with "nodeops source set-secret".`,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured package sources",
	Args:  cobra.NoArgs,
	RunE:  runSourceList,
}

var sourceSetSecretCmd = &cobra.Command{
	Use:   "set-secret NAME",
	Short: "Store a source's password or API key in the OS keyring",
	Long: `Store a source's secret in the OS keyring. The secret is read from the
first line of standard input, so it never appears in the shell history:

  printf '%s' "$NPM_TOKEN" | nodeops source set-secret internal`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceSetSecret,
}

var sourceDeleteSecretCmd = &cobra.Command{
	Use:   "delete-secret NAME",
	Short: "Remove a source's secret from the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceDeleteSecret,
}

func init() {
	sourceCmd.AddCommand(sourceListCmd, sourceSetSecretCmd, sourceDeleteSecretCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if catalog == nil || len(catalog.Names()) == 0 {
		_, _ = fmt.Fprintln(out, "No package sources configured.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tURL\tCREDENTIALS")
	for _, name := range catalog.Names() {
		e, _ := catalog.Entry(name)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Type, e.URL, credentialKind(e))
	}
	return w.Flush()
}

func credentialKind(e sources.Entry) string {
	switch {
	case e.Keyring:
		return "keyring"
	case e.UserName != "" && e.Password != "":
		return "password"
	case e.APIKey != "":
		return "api key"
	case e.Password != "":
		return "password"
	default:
		return "none"
	}
}

func runSourceSetSecret(cmd *cobra.Command, args []string) error {
	secret, err := readSecret(cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := sources.NewKeyringStore().Store(args[0], secret); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret for %s.\n", args[0])
	return nil
}

func runSourceDeleteSecret(cmd *cobra.Command, args []string) error {
	if err := sources.NewKeyringStore().Delete(args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret for %s.\n", args[0])
	return nil
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", errors.New("no secret on standard input")
	}
	return secret, nil
}
