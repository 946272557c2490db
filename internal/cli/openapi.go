package cli

import (
	"github.com/kolah/relay/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func OpenAPICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of the route table",
		RunE:  runOpenAPI,
	}

	config.BindServerFlags(cmd)

	return cmd
}

func runOpenAPI(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	s, err := newServer(cfg, zap.NewNop(), nil)
	if err != nil {
		return err
	}

	doc, err := buildDocument(cfg, s)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(doc)
	return err
}
