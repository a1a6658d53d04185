// Package cli implements the eventpage command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/eventpage/internal/config"
	"github.com/Its-donkey/eventpage/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

type rootOptions struct {
	cfgFile string
	verbose bool
}

// NewRootCommand builds the eventpage command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "eventpage",
		Short: "Serve and validate the event landing page",
		Long: `eventpage serves an event landing page whose countdown, navigation bar
and join popup run as Go compiled to WebAssembly. It can also check any HTML
document against the markup those components expect.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newServeCommand(opts),
		newCheckCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds the process logger: JSON lines to out, plus a rotating
// file when log.dir is set. The returned close func flushes the file.
func newLogger(cfg *config.Config, verbose bool, out io.Writer) (*logging.Logger, func() error, error) {
	level := cfg.Log.LogLevel()
	if verbose {
		level = logging.DEBUG
	}
	writers := []io.Writer{out}
	closeFn := func() error { return nil }
	if cfg.Log.Dir != "" {
		fw, err := logging.NewFileWriter(cfg.Log.Dir, "eventpage.log", 0, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, fw)
		closeFn = fw.Close
	}
	return logging.New("eventpage", level, writers...), closeFn, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of eventpage",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eventpage %s\n", Version)
		},
	}
}
