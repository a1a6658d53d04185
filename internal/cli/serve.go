package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/eventpage/internal/config"
	"github.com/Its-donkey/eventpage/internal/ui/server"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		dev    bool
		listen string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page",
		Long: `Serves the landing page, its WebAssembly bundle and stylesheet. With --dev
the page template is reloaded on change and open browsers refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("dev") {
				cfg.Server.Dev = dev
			}
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, closeLog, err := newLogger(cfg, root.verbose, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, server.FromConfig(cfg, logger))
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "reload templates and browsers on change")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides server.listen)")
	return cmd
}
