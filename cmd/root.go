package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/waypath/resolve"
)

var (
	configPath string
	metaPath   string
	workDir    string
	seedVars   []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to pipeline configuration")
	rootCmd.PersistentFlags().StringVarP(&metaPath, "meta", "m", "", "Path to run metadata")
	rootCmd.PersistentFlags().StringVar(&workDir, "cwd", "", "Working directory for anchoring relative paths")
	rootCmd.PersistentFlags().StringArrayVar(&seedVars, "var", nil, "Seed variable as name=value (repeatable)")
}

var rootCmd = &cobra.Command{
	Use:   "waypath",
	Short: "Waypath: resolve pipeline path templates to concrete file paths",
}

// buildResolver loads the configuration and metadata named by the
// persistent flags and constructs a resolver over them.
func buildResolver() (*resolve.Resolver, error) {
	if configPath == "" || metaPath == "" {
		return nil, fmt.Errorf("both --config and --meta are required")
	}

	extra := make(map[string]string, len(seedVars))
	for _, kv := range seedVars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --var %q, want name=value", kv)
		}
		extra[name] = value
	}

	cfg, err := resolve.LoadConfigFile(configPath, extra)
	if err != nil {
		return nil, err
	}
	meta, err := resolve.LoadMetaFile(metaPath)
	if err != nil {
		return nil, err
	}

	return resolve.New(cfg, meta, workDir), nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
