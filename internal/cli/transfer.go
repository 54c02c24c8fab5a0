package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/pathways/internal/export"
	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// NewExportCommand writes the stored pathways as a YAML document.
func NewExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Export pathways as YAML",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, log, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			pathways, err := a.Manager().GetPathways(ctx)
			if err != nil {
				return fmt.Errorf("failed to read pathways: %w", err)
			}
			data, err := export.Encode(pathways)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			log.Info("exported pathways",
				logger.String("path", output),
				logger.Int("count", len(pathways)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// NewImportCommand replaces the stored pathways with a YAML document.
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace stored pathways with a YAML document",
		Long: `Replace the stored pathway collection with the pathways in <file>.

Pathways are matched to stored records by position, so the first pathway
in the file keeps the id of the first stored pathway. Stored pathways
beyond the end of the file are deleted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pathways, err := export.Load(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, _, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.Adapter().ReplacePathways(ctx, pathways); err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d pathways from %s\n", len(pathways), args[0])
			return nil
		},
	}
}
