package generate

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hepsoft/rootsense/generator"
	"github.com/hepsoft/rootsense/internal/logger"
	"github.com/hepsoft/rootsense/resolve"
	"github.com/hepsoft/rootsense/toolchain"
)

type generateOptions struct {
	dir                  string
	output               string
	guard                string
	extensions           []string
	excludes             []string
	includeExtensionless bool
	systemPaths          []string
	noSystem             bool
	parser               string
	showExcluded         bool
	dryRun               bool
}

// Cmd represents the generate command.
var Cmd = NewCommand()

// NewCommand returns a new generate command instance.
func NewCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the aggregate header for an include tree",
		Long: `Generate the aggregate header for an include tree.

Every header whose transitive #include closure resolves to files on disk is
listed in the aggregate; headers with missing includes are excluded and
reported. The command also prints the directories an include search path
needs, split into those under the primary tree and those elsewhere.

Without --dir, the include tree is located from a 'root' executable on PATH.

Examples:
  rootsense generate                          # locate ROOT via PATH
  rootsense generate -d /opt/root/include     # explicit include tree
  rootsense generate --parser syntax          # comment-aware include parsing
  rootsense generate --dry-run --show-excluded`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Include tree to index (default: derived from 'root' on PATH)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "rootsense.h", "Aggregate file name, written inside the include tree")
	cmd.Flags().StringVar(&opts.guard, "guard", "", "Include-guard macro (default: derived from the output name)")
	cmd.Flags().StringSliceVar(&opts.extensions, "ext", []string{".h"}, "File extensions to index (comma-separated, '*' for all)")
	cmd.Flags().StringSliceVar(&opts.excludes, "exclude", nil, "Glob patterns excluded from the scan (comma-separated)")
	cmd.Flags().BoolVar(&opts.includeExtensionless, "include-extensionless", false, "Also index extensionless plain-text files")
	cmd.Flags().StringSliceVar(&opts.systemPaths, "system-paths", nil, "Extra roots indexed for out-of-tree includes (default: common system locations)")
	cmd.Flags().BoolVar(&opts.noSystem, "no-system", false, "Do not index system include locations")
	cmd.Flags().StringVar(&opts.parser, "parser", generator.ParserLine, "Include parser (line, syntax)")
	cmd.Flags().BoolVar(&opts.showExcluded, "show-excluded", false, "List excluded headers with the reason for each")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Resolve and report without writing the aggregate")

	_ = viper.BindPFlag("extensions", cmd.Flags().Lookup("ext"))
	_ = viper.BindPFlag("exclude", cmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("parser", cmd.Flags().Lookup("parser"))
	_ = viper.BindPFlag("system_paths", cmd.Flags().Lookup("system-paths"))

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	log := logger.NewConsole(cmd.ErrOrStderr(), viper.GetString("log_level"))

	includeDir, err := toolchain.LocateIncludeDir(opts.dir)
	if errors.Is(err, toolchain.ErrNotInstalled) {
		return fmt.Errorf("no 'root' executable on PATH; pass the include tree with --dir")
	}
	if err != nil {
		return err
	}

	systemPaths := viper.GetStringSlice("system_paths")
	if opts.noSystem {
		systemPaths = nil
	} else if len(systemPaths) == 0 {
		systemPaths = toolchain.ExistingSystemPaths(toolchain.DefaultSystemPaths)
	}

	summary, err := generator.Run(generator.Config{
		IncludeDir:           includeDir,
		SystemPaths:          systemPaths,
		Extensions:           viper.GetStringSlice("extensions"),
		IncludeExtensionless: opts.includeExtensionless,
		ExcludePatterns:      viper.GetStringSlice("exclude"),
		OutputName:           viper.GetString("output"),
		Guard:                opts.guard,
		Parser:               viper.GetString("parser"),
		DryRun:               opts.dryRun,
		Log:                  log,
		ProgressWriter:       cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printDirList(out, fmt.Sprintf("Include directories under %s:", includeDir), summary.DirsUnderRoot)
	printDirList(out, "Include directories elsewhere:", summary.DirsElsewhere)

	if opts.showExcluded {
		printExcluded(out, summary.Excluded)
	}

	if opts.dryRun {
		log.Infof("dry run: %s not written", summary.OutputPath)
	} else {
		log.Successf("wrote %s (%d lines)", summary.OutputPath, summary.LinesWritten)
	}
	log.Successf("%d headers included, %d excluded in %s",
		len(summary.Included), len(summary.Excluded), summary.Elapsed.Round(time.Millisecond))
	return nil
}

var headerPaint = color.New(color.FgCyan, color.Bold)

func printDirList(w io.Writer, title string, dirs []string) {
	headerPaint.Fprintln(w, title)
	if len(dirs) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, dir := range dirs {
		fmt.Fprintf(w, "  %s\n", dir)
	}
}

func printExcluded(w io.Writer, excluded []resolve.Exclusion) {
	headerPaint.Fprintln(w, "Excluded headers:")
	if len(excluded) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, ex := range excluded {
		if len(ex.Missing) > 0 {
			fmt.Fprintf(w, "  %s: %s (%s)\n", ex.Target.Rel, ex.Reason, strings.Join(ex.Missing, ", "))
		} else {
			fmt.Fprintf(w, "  %s: %s\n", ex.Target.Rel, ex.Reason)
		}
	}
}
