package main

import (
	"fmt"
	"os"

	app "github.com/pngstash/pngstash/internal"
	"github.com/pngstash/pngstash/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing pngstash: %v\n", err)
		os.Exit(1)
	}

	runErr := cli.Execute()
	_ = a.Close()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
