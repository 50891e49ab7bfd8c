// Command carousel works with carousel templates and slides offline: it
// lists the template catalog, splits text into slides and exports a slide
// file to PDF or ZIP with the same renderer the server uses.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "carousel",
	Short: "Carousel templates, splitting and export",
	Long: `carousel lists the built-in slide templates, splits text into
slides without a model, and renders slide files to PDF or ZIP.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
