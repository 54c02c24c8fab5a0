package cli

import (
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Run the HTTP storage service and background jobs",
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
			defer func() { _ = log.Sync() }()

			return a.Run(ctx)
		},
	}
}
