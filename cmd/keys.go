package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List file keys and how many paths each resolves to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildResolver()
		if err != nil {
			return err
		}
		for _, key := range r.Keys() {
			fmt.Printf("%s\t%d\n", key, len(r.Records(key)))
		}
		return nil
	},
}
