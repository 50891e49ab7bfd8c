package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"postcraft/internal/carousel"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split text from stdin into slides",
	Long: `split reads text from stdin and prints slides as JSON. With
--template the slides are laid out by that template; otherwise only the
headline/content pairs are printed.`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().IntP("slides", "n", 5, "number of slides")
	splitCmd.Flags().String("template", "", "template id to lay the slides out with")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("slides")
	templateID, _ := cmd.Flags().GetString("template")
	if n < 1 {
		return fmt.Errorf("--slides must be at least 1, got %d", n)
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fmt.Errorf("no text on stdin")
	}

	var out any
	if templateID == "" {
		out = carousel.Split(text, n)
	} else {
		tpl, ok := carousel.GetTemplateByID(templateID)
		if !ok {
			return fmt.Errorf("unknown template %q", templateID)
		}
		out = carousel.FillTemplate(tpl, text, n)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
