package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pngstash/pngstash/internal/core"
	"github.com/pngstash/pngstash/internal/observability"
)

var verifyStrict bool

var verifyCmd = &cobra.Command{
	Use:   "verify <png>",
	Short: "Check the chunk structure of a PNG file",
	Long: `Verify structural conventions beyond what parsing enforces: IHDR first,
exactly one IEND, reserved bits unset, chunks after IEND.

Chunks after IEND are reported as informational findings, since that is
where stashed messages live. With --strict (or strict: true in the
configuration) any warning-level finding fails the command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil || Verifier == nil {
			return fmt.Errorf("services not initialized")
		}

		path := args[0]
		f, err := Store.Load(path)
		if err != nil {
			return err
		}

		findings := Verifier.Verify(f)

		strict := verifyStrict
		if !cmd.Flags().Changed("strict") && Cfg != nil {
			strict = Cfg.Strict
		}

		warnings := 0
		for _, fd := range findings {
			if fd.Level == core.LevelWarning {
				warnings++
			}
		}

		observability.Record(EventLog, observability.OpVerified, path, "file verified",
			map[string]any{"findings": len(findings), "warnings": warnings})

		if len(findings) == 0 {
			cmd.Printf("OK: no findings in %s\n", path)
			return nil
		}

		cmd.Printf("%d finding(s) in %s:\n", len(findings), path)
		for _, fd := range findings {
			cmd.Printf("  [%s] %s: %s\n", strings.ToUpper(string(fd.Level)), fd.Code, fd.Message)
		}

		if strict && core.HasWarnings(findings) {
			return fmt.Errorf("verification failed: %d warning(s) in %s", warnings, path)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "Treat warning-level findings as errors")
	rootCmd.AddCommand(verifyCmd)
}
