// Command f5patch rewrites an F5-TTS checkout so reference audio is loaded
// with soundfile instead of torchaudio.load, which fails under recent
// TorchCodec-based torchaudio releases. Safe to run repeatedly.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/softwarewrighter/open-tts/internal/patch"
)

func main() {
	file := flag.String("file", patch.DefaultTarget, "Path to utils_infer.py inside the F5-TTS checkout")
	dryRun := flag.Bool("n", false, "Report what would change without modifying the file")
	flag.Parse()

	result, err := patch.Apply(*file, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch result {
	case patch.Patched:
		if *dryRun {
			fmt.Printf("Would patch %s\n", *file)
		} else {
			fmt.Printf("Successfully patched %s\n", *file)
		}
	case patch.AlreadyPatched:
		fmt.Printf("%s is already patched, nothing to do\n", *file)
	case patch.NoMatch:
		fmt.Printf("Warning: could not find the torchaudio.load call in %s\n", *file)
		fmt.Println("The file may belong to an unsupported F5-TTS version.")
	}
}
