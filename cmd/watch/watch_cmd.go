package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hepsoft/rootsense/generator"
	"github.com/hepsoft/rootsense/internal/logger"
	"github.com/hepsoft/rootsense/toolchain"
)

type watchOptions struct {
	dir        string
	output     string
	guard      string
	extensions []string
	excludes   []string
	parser     string
	noSystem   bool
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch an include tree and keep its aggregate header fresh",
		Long: `Watch an include tree for header changes and regenerate the aggregate
header after each change. Edits are debounced so a burst of saves produces a
single regeneration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Include tree to watch (default: derived from 'root' on PATH)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "rootsense.h", "Aggregate file name, written inside the include tree")
	cmd.Flags().StringVar(&opts.guard, "guard", "", "Include-guard macro (default: derived from the output name)")
	cmd.Flags().StringSliceVar(&opts.extensions, "ext", []string{".h"}, "File extensions to index (comma-separated, '*' for all)")
	cmd.Flags().StringSliceVar(&opts.excludes, "exclude", nil, "Glob patterns excluded from the scan (comma-separated)")
	cmd.Flags().StringVar(&opts.parser, "parser", generator.ParserLine, "Include parser (line, syntax)")
	cmd.Flags().BoolVar(&opts.noSystem, "no-system", false, "Do not index system include locations")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	log := logger.NewConsole(cmd.ErrOrStderr(), viper.GetString("log_level"))

	includeDir, err := toolchain.LocateIncludeDir(opts.dir)
	if errors.Is(err, toolchain.ErrNotInstalled) {
		return fmt.Errorf("no 'root' executable on PATH; pass the include tree with --dir")
	}
	if err != nil {
		return err
	}

	var systemPaths []string
	if !opts.noSystem {
		systemPaths = toolchain.ExistingSystemPaths(toolchain.DefaultSystemPaths)
	}

	cfg := generator.Config{
		IncludeDir:      includeDir,
		SystemPaths:     systemPaths,
		Extensions:      opts.extensions,
		ExcludePatterns: opts.excludes,
		OutputName:      opts.output,
		Guard:           opts.guard,
		Parser:          opts.parser,
		Log:             log,
	}

	summary, err := generator.Run(cfg)
	if err != nil {
		return fmt.Errorf("initial generation failed: %w", err)
	}
	log.Successf("wrote %s (%d headers included, %d excluded)",
		summary.OutputPath, len(summary.Included), len(summary.Excluded))

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", includeDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop\n")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return watchAndRegenerate(ctx, includeDir, cfg, log)
}
