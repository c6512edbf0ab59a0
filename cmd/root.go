package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hepsoft/rootsense/cmd/generate"
	"github.com/hepsoft/rootsense/cmd/graph"
	"github.com/hepsoft/rootsense/cmd/watch"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// cfgFile is the persistent flag overriding the config file lookup
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rootsense",
	Short: "Flatten a header tree into a single aggregate include",
	Long: `Rootsense indexes the headers of a ROOT installation (or any include
tree), decides which headers have their full transitive #include closure
present on disk, and writes one aggregate header including every resolvable
file. It also reports the directories an editor or compiler needs on its
include search path.

Use 'rootsense <command> --help' for detailed information about a specific
command.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Register subcommands
	rootCmd.AddCommand(generate.Cmd)
	rootCmd.AddCommand(graph.Cmd)
	rootCmd.AddCommand(watch.Cmd)

	// Initialize annotations for version template
	if rootCmd.Annotations == nil {
		rootCmd.Annotations = make(map[string]string)
	}
	rootCmd.Annotations["buildDate"] = buildDate
	rootCmd.Annotations["commit"] = commit

	// Update version field dynamically (in case it was set via ldflags)
	rootCmd.Version = version

	// Customize version template to show additional build info
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .rootsense.yaml, then ~/.config/rootsense/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info",
		"log verbosity (trace, debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads the config file when one is present. A missing file is
// fine; flag and built-in defaults apply.
func initConfig() {
	viper.SetDefault("log_level", "info")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(".rootsense.yaml"); err == nil {
		viper.SetConfigFile(".rootsense.yaml")
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rootsense"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	_ = viper.ReadInConfig()
}
