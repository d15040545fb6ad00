package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pngstash/pngstash/internal/observability"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <png> [chunk-type]",
	Short: "Read the hidden message stored under a chunk type",
	Long: `Read the message stored in the first chunk of the given type.

When the chunk type is omitted, the configured default (defaults.chunk_type,
stSh out of the box) is used. The command fails when no chunk of that type
exists in the file.`,
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

		msg, err := Codec.Extract(f, chunkType)
		if err != nil {
			return err
		}

		observability.Record(EventLog, observability.OpDecoded, path, "message extracted",
			map[string]any{"chunk_type": chunkType})

		cmd.Printf("Found chunk: %q\n", msg)
		return nil
	},
}

// defaultChunkType resolves the chunk type from the second positional
// argument, falling back to the configured default.
func defaultChunkType(args []string) string {
	if len(args) >= 2 {
		return args[1]
	}
	if Cfg != nil && Cfg.ChunkType != "" {
		return Cfg.ChunkType
	}
	return "stSh"
}

func init() {
	decodeCmd.ValidArgsFunction = completeFileThenChunkType
	rootCmd.AddCommand(decodeCmd)
}
