package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print <png>",
	Short: "Print every chunk of a PNG file",
	Long: `Print one line per chunk with its type and data, in file order.

Binary data is escaped; use inspect for a structured report with property
flags and size summaries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("services not initialized")
		}

		f, err := Store.Load(args[0])
		if err != nil {
			return err
		}

		for _, c := range f.Chunks() {
			cmd.Printf("Chunk %q: %q\n", c.Type().String(), c.DataAsString())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
}
