package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"postcraft/internal/carousel"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the template catalog",
	RunE:  runTemplates,
}

func init() {
	templatesCmd.Flags().String("category", "", "only list templates in this category")
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")

	list := carousel.Templates()
	if category != "" {
		list = carousel.GetTemplatesByCategory(carousel.Category(category))
	}
	if len(list) == 0 {
		return fmt.Errorf("no templates in category %q", category)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tASPECT\tNAME")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Category, t.AspectRatio, t.Name)
	}
	return tw.Flush()
}
