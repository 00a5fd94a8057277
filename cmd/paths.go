package cmd

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/waypath/api"
	"github.com/agentic-research/waypath/resolve"
)

var (
	sourceFlag  string
	filterFlags []string
	jsonFlag    bool
	selectFlag  string
)

func init() {
	pathsCmd.Flags().StringVar(&sourceFlag, "source", "", `Restrict provenance to "raw" or "template"`)
	pathsCmd.Flags().StringArrayVarP(&filterFlags, "filter", "f", nil, "Placeholder filter as Class=instance (repeatable)")
	pathsCmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit full records as JSON")
	pathsCmd.Flags().StringVar(&selectFlag, "select", "", "JSONPath applied to the JSON records")
	rootCmd.AddCommand(pathsCmd)
}

var pathsCmd = &cobra.Command{
	Use:   "paths [file-key]",
	Short: "Resolve a file key to its concrete paths",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		r, err := buildResolver()
		if err != nil {
			return err
		}

		filters, err := parseFilters(filterFlags)
		if err != nil {
			return err
		}

		if !jsonFlag && selectFlag == "" {
			for _, p := range r.Get(key, sourceFlag, filters...) {
				fmt.Println(p)
			}
			return nil
		}

		records := r.Records(key, filters...)
		data := make([]any, 0, len(records))
		for _, rec := range records {
			if sourceFlag != "" && rec.Source != sourceFlag {
				continue
			}
			data = append(data, recordValue(rec))
		}

		if selectFlag != "" {
			x, err := jp.ParseString(selectFlag)
			if err != nil {
				return fmt.Errorf("invalid jsonpath %q: %w", selectFlag, err)
			}
			for _, v := range x.Get(data) {
				fmt.Println(oj.JSON(v))
			}
			return nil
		}

		fmt.Println(oj.JSON(data, 2))
		return nil
	},
}

// parseFilters turns repeated Class=instance flags into query filters.
func parseFilters(flags []string) ([]resolve.Filter, error) {
	filters := make([]resolve.Filter, 0, len(flags))
	for _, kv := range flags {
		class, inst, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --filter %q, want Class=instance", kv)
		}
		filters = append(filters, resolve.Filter{Class: class, Instance: inst})
	}
	return filters, nil
}

// recordValue converts a record to the generic shape ojg operates on.
func recordValue(rec api.Record) map[string]any {
	placeholders := make(map[string]any, len(rec.Placeholders))
	for k, v := range rec.Placeholders {
		placeholders[k] = v
	}
	out := map[string]any{
		"path":         rec.Path,
		"placeholders": placeholders,
		"source":       rec.Source,
	}
	if rec.ClassLevel != "" {
		out["class_level"] = rec.ClassLevel
	}
	return out
}
