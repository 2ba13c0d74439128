package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/softwarewrighter/open-tts/internal/client"
	"github.com/softwarewrighter/open-tts/internal/models"
	"github.com/softwarewrighter/open-tts/internal/voicestore"
)

// Backend selection. Each model family runs as its own service on a
// well-known port.
var modelPorts = map[string]string{
	"ov": "9280", // OpenVoice V2
	"of": "9288", // OpenF5-TTS
}

var (
	flagModel string
	flagHost  string
	flagPort  string
	flagKey   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "opentts",
		Short:         "Voice cloning and text-to-speech using open-source models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagModel, "model", "m", "ov",
		`TTS model backend: "ov" (OpenVoice V2) or "of" (OpenF5-TTS)`)
	root.PersistentFlags().StringVar(&flagHost, "host", "localhost", "Backend host address")
	root.PersistentFlags().StringVar(&flagPort, "port", "", "Backend port (overrides the model default)")
	root.PersistentFlags().StringVar(&flagKey, "api-key", os.Getenv("BACKEND_API_KEY"), "API key for protected backends")

	root.AddCommand(newHealthCmd(), newInfoCmd(), newExtractCmd(), newSayCmd(), newVoicesCmd())
	return root
}

func newClient() (*client.Client, error) {
	port := flagPort
	if port == "" {
		var ok bool
		if port, ok = modelPorts[flagModel]; !ok {
			return nil, fmt.Errorf("unknown model %q (use \"ov\" or \"of\")", flagModel)
		}
	}
	return client.New(fmt.Sprintf("http://%s:%s", flagHost, port), flagKey), nil
}

// localMirror is the CLI-side metadata store, so voice listings survive
// backend resets and deletions can be reconciled.
func localMirror() (*voicestore.Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not find home directory: %w", err)
	}
	return voicestore.New(filepath.Join(home, ".opentts", "voices"))
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend health",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", h.Status)
			fmt.Printf("Model:  %s\n", h.Model)
			fmt.Printf("Device: %s\n", h.Device)
			if h.GPU != nil {
				fmt.Printf("GPU:    %s\n", *h.GPU)
			}
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show model information",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			info, err := c.Info(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Model:     %s (%s)\n", info.Model, info.License)
			if info.Weights != "" {
				fmt.Printf("Weights:   %s\n", info.Weights)
			}
			fmt.Printf("Languages: %v\n", info.SupportedLanguages)
			fmt.Printf("Rate:      %d Hz\n", info.SampleRate)
			if info.Note != "" {
				fmt.Printf("Note:      %s\n", info.Note)
			}
			return nil
		},
	}
}

func newExtractCmd() *cobra.Command {
	var (
		audioPath  string
		transcript string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a voice from reference audio",
		Long: `Upload reference audio (3-30 seconds recommended) and its transcript
to the backend. With --name, the voice is saved on the backend for reuse
and mirrored locally under ~/.opentts/voices.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if audioPath == "" {
				return fmt.Errorf("--audio is required")
			}
			if _, err := os.Stat(audioPath); err != nil {
				return fmt.Errorf("audio file not found: %s", audioPath)
			}

			c, err := newClient()
			if err != nil {
				return err
			}

			resp, err := c.ExtractVoice(cmd.Context(), audioPath, transcript, name)
			if err != nil {
				return fmt.Errorf("failed to extract voice: %w", err)
			}

			fmt.Println("Voice extracted")
			fmt.Printf("  Transcript: %s\n", resp.Transcript)
			if resp.VoiceID != "" {
				fmt.Printf("  Voice ID: %s\n", resp.VoiceID)
			}
			if resp.Duration > 0 {
				fmt.Printf("  Duration: %.2fs\n", resp.Duration)
			}
			if resp.SavedAs != "" {
				fmt.Printf("  Saved as: %s\n", resp.SavedAs)
				saveMirror(resp.SavedAs, resp.Transcript)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "Reference audio file (WAV)")
	cmd.Flags().StringVarP(&transcript, "transcript", "t", "", "Transcript of the reference audio")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name to save the voice as")
	return cmd
}

func newSayCmd() *cobra.Command {
	var (
		voice    string
		speed    float64
		language string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "say <text>",
		Short: "Synthesize speech from text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			fmt.Println("Generating speech...")
			if voice != "" {
				fmt.Printf("  Voice: %s\n", voice)
			}
			fmt.Printf("  Speed: %.1fx\n", speed)

			audioData, err := c.Synthesize(cmd.Context(), models.SynthesizeRequest{
				Text:     args[0],
				Name:     voice,
				Speed:    speed,
				Language: language,
			})
			if err != nil {
				return fmt.Errorf("failed to synthesize speech: %w", err)
			}

			if err := os.WriteFile(output, audioData, 0644); err != nil {
				return fmt.Errorf("failed to write audio to %s: %w", output, err)
			}

			fmt.Printf("Audio saved to: %s\n", output)
			fmt.Printf("  Size: %d bytes\n", len(audioData))
			return nil
		},
	}

	cmd.Flags().StringVarP(&voice, "voice", "v", "", "Name of a saved voice")
	cmd.Flags().Float64VarP(&speed, "speed", "s", 1.0, "Speech speed multiplier (0.5 to 2.0)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Language code (backend default when empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "output.wav", "Output audio file")
	return cmd
}

func newVoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List saved voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			voices, err := c.ListVoices(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list voices: %w", err)
			}

			if len(voices) == 0 {
				fmt.Println("No voices found.")
				return nil
			}

			fmt.Println("Available voices:")
			for _, v := range voices {
				fmt.Printf("  %s (%s)\n", v.Name, v.Model)
				fmt.Printf("    Transcript: %s\n", v.Transcript)
				if v.Duration > 0 {
					fmt.Printf("    Duration: %.2fs\n", v.Duration)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved voice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			name := args[0]
			if err := c.DeleteVoice(cmd.Context(), name); err != nil {
				return fmt.Errorf("failed to delete voice '%s': %w", name, err)
			}
			deleteMirror(name)
			fmt.Printf("Voice '%s' deleted.\n", name)
			return nil
		},
	})

	return cmd
}

// saveMirror records extracted-voice metadata locally. Mirror failures are
// reported but never fail the command; the backend copy is authoritative.
func saveMirror(name, transcript string) {
	mirror, err := localMirror()
	if err == nil {
		err = mirror.Save(name, &voicestore.Record{
			Transcript: transcript,
			Model:      flagModel,
			CreatedAt:  time.Now().UTC(),
		}, nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not mirror voice locally: %v\n", err)
	}
}

func deleteMirror(name string) {
	if mirror, err := localMirror(); err == nil {
		_ = mirror.Delete(name) // may never have been mirrored
	}
}
