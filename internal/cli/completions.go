package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pngstash/pngstash/internal/observability"
)

// completeFileThenChunkType completes the first positional argument as a
// file path and the second as a chunk type read from that file.
func completeFileThenChunkType(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeChunkTypes(cmd, args, toComplete)
}

// completeChunkTypes lists the chunk types present in the PNG file given as
// the first argument, with their data sizes as descriptions.
func completeChunkTypes(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 || Store == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	f, err := Store.Load(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	seen := make(map[string]bool)
	var types []string
	for _, c := range f.Chunks() {
		typ := c.Type().String()
		if seen[typ] {
			continue
		}
		seen[typ] = true
		if toComplete == "" || strings.HasPrefix(typ, toComplete) {
			// Include the data size as description for better UX.
			types = append(types, fmt.Sprintf("%s\t%d bytes", typ, c.Length()))
		}
	}

	return types, cobra.ShellCompDirectiveNoFileComp
}

// completePlacements completes --placement values.
func completePlacements(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"end\tAppend after IEND, invisible to decoders",
		"before-iend\tInsert ahead of the IEND chunk",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes --format values.
func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"table\tStyled fixed-width table",
		"yaml\tYAML document",
		"json\tIndented JSON",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeOps completes --op values for the history command.
func completeOps(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		observability.OpEncoded + "\tMessage embedded",
		observability.OpDecoded + "\tMessage extracted",
		observability.OpChunkRemoved + "\tChunk removed",
		observability.OpInspected + "\tFile inspected",
		observability.OpVerified + "\tFile verified",
	}, cobra.ShellCompDirectiveNoFileComp
}
