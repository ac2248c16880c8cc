package pkg

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aurwrite/aurwrite/pkg/pipeline"
	"github.com/aurwrite/aurwrite/pkg/rewrite"
	"github.com/aurwrite/aurwrite/pkg/server"
	"github.com/aurwrite/aurwrite/pkg/stt"
	"github.com/aurwrite/aurwrite/pkg/styles"
	"github.com/aurwrite/aurwrite/pkg/tts"
	"github.com/aurwrite/aurwrite/pkg/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Turn a voice note into a styled, narrated story",
	}

	catalog := styles.NewCatalog()
	whisper := stt.NewWhisper()
	generator := rewrite.NewGenerator()
	narrator := tts.NewNarrator()
	pipe := pipeline.New(catalog, whisper, generator, narrator)

	cmd.AddCommand(
		newRemixCommand(pipe, catalog),
		newTranscribeCommand(whisper),
		newNarrateCommand(narrator),
		newStylesCommand(catalog),
		newServeCommand(pipe, catalog, narrator),
	)

	return cmd, nil
}

func newRemixCommand(pipe *pipeline.Pipeline, catalog *styles.Catalog) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "remix <audio-file>",
		Short: "Transcribe, restyle and narrate a voice note",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := stt.CheckDeps(); err != nil {
				return err
			}

			file := args[0]
			audio, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			log.Printf("Remixing %s as %q...", file, style)
			run, err := pipe.Remix(context.Background(), audio, filepath.Base(file), style)
			if err != nil {
				return err
			}

			wavPath, err := utils.SaveBytes(
				filepath.Join(pipeline.DataDir(), "outputs", "audio"),
				run.DownloadName,
				run.Audio,
			)
			if err != nil {
				return err
			}

			color.Green("Done!")
			log.Printf("Transcript: %s", run.TranscriptPath)
			fmt.Println()
			color.Cyan("--- %s ---", style)
			fmt.Println(run.Story)
			fmt.Println()
			log.Printf("Narration: %s", wavPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "Fairy Tale",
		fmt.Sprintf("storytelling style (%s)", strings.Join(catalog.Names(), ", ")))

	return cmd
}

func newTranscribeCommand(whisper *stt.Whisper) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a voice note and save the transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := stt.CheckDeps(); err != nil {
				return err
			}

			log.Printf("Transcribing %s...", args[0])
			transcript, err := whisper.Transcribe(context.Background(), args[0])
			if err != nil {
				return err
			}
			if transcript == "" {
				return pipeline.ErrEmptyTranscript
			}

			ts := time.Now().Format(pipeline.TimestampLayout)
			path, err := utils.SaveText(
				filepath.Join(pipeline.DataDir(), "outputs", "transcripts"),
				ts+"_transcript.txt",
				transcript,
			)
			if err != nil {
				return err
			}

			fmt.Println(transcript)
			log.Printf("Saved: %s", path)
			return nil
		},
	}
}

func newNarrateCommand(narrator *tts.Narrator) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "narrate <text-file>",
		Short: "Narrate a text file to WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := utils.LoadText(args[0])
			if err != nil {
				return err
			}

			audio, err := narrator.Synthesize(context.Background(), text)
			if err != nil {
				return err
			}

			name := output
			if name == "" {
				name = time.Now().Format(pipeline.TimestampLayout) + "_narration.wav"
			}
			path, err := utils.SaveBytes(filepath.Join(pipeline.DataDir(), "outputs", "audio"), name, audio)
			if err != nil {
				return err
			}

			log.Printf("Narration: %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file name")

	return cmd
}

func newStylesCommand(catalog *styles.Catalog) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List available storytelling styles",
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range catalog.Names() {
				// Loading each template doubles as a deployment check.
				prompt, err := catalog.Prompt(name)
				if err != nil {
					return err
				}
				color.Cyan(name)
				fmt.Printf("  %s\n", firstLine(prompt))
			}
			return nil
		},
	}
}

func newServeCommand(pipe *pipeline.Pipeline, catalog *styles.Catalog, narrator *tts.Narrator) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the remix pipeline over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := stt.CheckDeps(); err != nil {
				return err
			}

			// Fail fast on broken deployments, not on the first request.
			for _, name := range catalog.Names() {
				if _, err := catalog.Prompt(name); err != nil {
					return err
				}
			}

			srv := server.New(pipe, catalog, narrator.Report)
			return srv.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8501", "listen address")

	return cmd
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
