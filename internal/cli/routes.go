package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kolah/relay/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func RoutesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the registered route table",
		RunE:  runRoutes,
	}

	config.BindServerFlags(cmd)

	return cmd
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	s, err := newServer(cfg, zap.NewNop(), nil)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tAUTH\tSTRATEGIES\tDESCRIPTION")
	for _, r := range s.Table() {
		auth := string(r.Auth.Mode)
		if r.Auth.Disabled {
			auth = "disabled"
		}
		strategies := strings.Join(r.Auth.Strategies, ",")
		if strategies == "" {
			strategies = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Method, r.Path, auth, strategies, r.Description)
	}
	return tw.Flush()
}
