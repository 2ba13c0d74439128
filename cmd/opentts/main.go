// Command opentts is the client CLI for the voice-cloning services.
//
// Usage:
//
//	opentts [flags] <command> [args]
//
// Commands:
//
//	health   - Check backend health
//	info     - Show model information
//	extract  - Extract a voice from reference audio
//	say      - Synthesize speech from text
//	voices   - List saved voices (voices delete <name> removes one)
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
