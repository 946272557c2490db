package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kolah/relay/internal/codegen"
	"github.com/kolah/relay/internal/config"
	"github.com/kolah/relay/internal/loader"
	"github.com/spf13/cobra"
)

func GenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate code from an OpenAPI specification",
	}

	config.BindGenFlags(cmd)
	cmd.AddCommand(newGenControllerCmd())

	return cmd
}

func newGenControllerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "controller",
		Short: "Generate a Go route table and handler interface",
		RunE:  runGenController,
	}

	cmd.Flags().Bool("dry-run", false, "Print generated code instead of writing it")

	return cmd
}

func runGenController(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateGen(); err != nil {
		return err
	}
	gc := cfg.Gen

	result, err := loader.LoadFile(gc.Spec)
	if err != nil {
		return fmt.Errorf("loading spec: %w", err)
	}
	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	spec, err := loader.Transform(result)
	if err != nil {
		return fmt.Errorf("transforming spec: %w", err)
	}
	loader.FilterTags(spec, gc.IncludeTags, gc.ExcludeTags)

	cmd.PrintErrf("Loaded OpenAPI %s: %s v%s\n", result.Version, spec.Info.Title, spec.Info.Version)
	cmd.PrintErrf("  Operations: %d\n", len(spec.Operations))

	gen, err := codegen.New(&gc)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	out, err := gen.Generate(spec, result.RawData)
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "// %s\n%s\n", out.Filename, out.Content)
		return err
	}

	if err := os.MkdirAll(gc.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(gc.OutputDir, out.Filename)
	if err := os.WriteFile(path, []byte(out.Content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cmd.PrintErrf("Written: %s\n", path)

	return nil
}
