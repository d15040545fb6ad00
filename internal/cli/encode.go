package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pngstash/pngstash/internal/core"
	"github.com/pngstash/pngstash/internal/observability"
)

var (
	encodeOutput    string
	encodePlacement string
)

var encodeCmd = &cobra.Command{
	Use:   "encode <png> <chunk-type> <message> [output-png]",
	Short: "Hide a message in a PNG file",
	Long: `Embed a text message in a PNG file under the given four-letter chunk type.

The message is wrapped in a new chunk appended after the IEND chunk, where
decoders never look, so the image renders unchanged. Use --placement
before-iend to tuck the chunk inside the image structure instead.

The source file is overwritten unless an output path is given, either as a
fourth argument or with --output.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil || Codec == nil {
			return fmt.Errorf("services not initialized")
		}

		path, chunkType, message := args[0], args[1], args[2]

		dest := path
		if len(args) == 4 {
			dest = args[3]
		}
		if encodeOutput != "" {
			if len(args) == 4 {
				return fmt.Errorf("output path given twice: %q as argument and %q via --output", args[3], encodeOutput)
			}
			dest = encodeOutput
		}

		placement := core.PlacementEnd
		if Cfg != nil {
			placement = Cfg.Placement
		}
		if encodePlacement != "" {
			p, err := core.ParsePlacement(encodePlacement)
			if err != nil {
				return fmt.Errorf("parsing --placement: %w", err)
			}
			placement = p
		}

		f, err := Store.Load(path)
		if err != nil {
			return err
		}

		chunk, err := Codec.Embed(f, chunkType, message, placement)
		if err != nil {
			return err
		}

		if err := Store.Save(dest, f); err != nil {
			return err
		}

		observability.Record(EventLog, observability.OpEncoded, dest, "message embedded",
			map[string]any{"chunk_type": chunkType, "bytes": chunk.Length()})

		cmd.Printf("Embedded %d bytes in chunk %q of %s\n", chunk.Length(), chunkType, dest)
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "Write the result to this path instead of overwriting the source")
	encodeCmd.Flags().StringVar(&encodePlacement, "placement", "", "Where to place the chunk: end or before-iend")
	_ = encodeCmd.RegisterFlagCompletionFunc("placement", completePlacements)
	rootCmd.AddCommand(encodeCmd)
}
