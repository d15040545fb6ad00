package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pngstash/pngstash/internal/observability"
)

var removeCmd = &cobra.Command{
	Use:   "remove <png> [chunk-type]",
	Short: "Remove a hidden message chunk from a PNG file",
	Long: `Remove the first chunk of the given type from a PNG file and save the
file in place. The message the chunk carried is printed.

When the chunk type is omitted, the configured default (defaults.chunk_type,
stSh out of the box) is used.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil || Codec == nil {
			return fmt.Errorf("services not initialized")
		}

		path := args[0]
		chunkType := defaultChunkType(args)

		f, err := Store.Load(path)
		if err != nil {
			return err
		}

		msg, err := Codec.Remove(f, chunkType)
		if err != nil {
			return err
		}

		if err := Store.Save(path, f); err != nil {
			return err
		}

		observability.Record(EventLog, observability.OpChunkRemoved, path, "chunk removed",
			map[string]any{"chunk_type": chunkType})

		cmd.Printf("Removed chunk with message: %q\n", msg)
		return nil
	},
}

func init() {
	removeCmd.ValidArgsFunction = completeFileThenChunkType
	rootCmd.AddCommand(removeCmd)
}
