package core

import (
	"fmt"

	"github.com/pngstash/pngstash/pkg/png"
)

// FindingLevel classifies how serious a verification finding is.
type FindingLevel string

const (
	// LevelInfo marks observations that are expected for files carrying
	// stowed messages, such as chunks after IEND.
	LevelInfo FindingLevel = "info"

	// LevelWarning marks structural problems a strict check should fail on.
	LevelWarning FindingLevel = "warning"
)

// Finding is one observation about a file's chunk structure.
type Finding struct {
	Level   FindingLevel `json:"level" yaml:"level"`
	Code    string       `json:"code" yaml:"code"`
	Message string       `json:"message" yaml:"message"`
}

// Verifier defines the interface for structural checks beyond what parsing
// already enforces. Parsing guarantees well-formed chunks and checksums;
// Verify looks at the sequence as a whole.
type Verifier interface {
	Verify(f *png.File) []Finding
}

// verifier implements Verifier.
type verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() Verifier {
	return &verifier{}
}

// Verify returns findings about f in chunk order. An empty slice means the
// file has canonical structure and no extra chunks.
func (v *verifier) Verify(f *png.File) []Finding {
	chunks := f.Chunks()
	findings := []Finding{}

	if len(chunks) == 0 {
		return append(findings, Finding{
			Level:   LevelWarning,
			Code:    "no-chunks",
			Message: "file contains no chunks",
		})
	}

	if chunks[0].Type().String() != "IHDR" {
		findings = append(findings, Finding{
			Level:   LevelWarning,
			Code:    "first-chunk-not-ihdr",
			Message: fmt.Sprintf("first chunk is %q, expected IHDR", chunks[0].Type()),
		})
	}

	iendIndex := -1
	for i, c := range chunks {
		typ := c.Type()

		if typ.String() == "IEND" {
			if iendIndex < 0 {
				iendIndex = i
			} else {
				findings = append(findings, Finding{
					Level:   LevelWarning,
					Code:    "duplicate-iend",
					Message: fmt.Sprintf("chunk %d is a second IEND", i),
				})
			}
		}

		if !typ.IsReservedBitValid() {
			findings = append(findings, Finding{
				Level:   LevelWarning,
				Code:    "reserved-bit-set",
				Message: fmt.Sprintf("chunk %d (%q) has the reserved bit set", i, typ),
			})
		}
	}

	switch {
	case iendIndex < 0:
		findings = append(findings, Finding{
			Level:   LevelWarning,
			Code:    "missing-iend",
			Message: "file has no IEND chunk",
		})
	case iendIndex < len(chunks)-1:
		extra := len(chunks) - 1 - iendIndex
		findings = append(findings, Finding{
			Level:   LevelInfo,
			Code:    "chunks-after-iend",
			Message: fmt.Sprintf("%d chunk(s) after IEND, where stowed messages live", extra),
		})
	}

	return findings
}

// HasWarnings reports whether any finding is warning level. Strict mode
// turns this into a failed verification.
func HasWarnings(findings []Finding) bool {
	for _, f := range findings {
		if f.Level == LevelWarning {
			return true
		}
	}
	return false
}
