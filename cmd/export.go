package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/waypath/internal/store"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [output.db]",
	Short: "Write the full resolved index to a SQLite database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := args[0]

		r, err := buildResolver()
		if err != nil {
			return err
		}

		_ = os.Remove(output) // Overwrite
		w, err := store.NewWriter(output)
		if err != nil {
			return err
		}

		total := 0
		for _, key := range r.Keys() {
			for _, rec := range r.Records(key) {
				if err := w.Add(key, rec); err != nil {
					_ = w.Close()
					return err
				}
				total++
			}
		}
		if err := w.Close(); err != nil {
			return err
		}

		fmt.Printf("Exported %d records to %s\n", total, output)
		return nil
	},
}
