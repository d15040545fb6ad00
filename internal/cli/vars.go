package cli

import (
	"github.com/pngstash/pngstash/internal/core"
	"github.com/pngstash/pngstash/internal/observability"
	"github.com/pngstash/pngstash/internal/storage"
)

// Service instances used by the commands, set during app initialization in
// app.go. EventLog and MetricsCalc may stay nil when the event log cannot
// be opened; commands treat them as optional.
var (
	// BasePath is the resolved pngstash home directory.
	BasePath string

	// Cfg is the loaded configuration. Commands fall back to built-in
	// defaults when it is nil.
	Cfg *core.Config

	Store     storage.FileStore
	Codec     core.MessageCodec
	Inspector core.Inspector
	Verifier  core.Verifier

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
