package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jungtin/notion-to-audio/core/render"
)

var (
	flagFormat   string
	flagNumbered bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Export every page of the Notion database",
	Long: `Extract queries the configured Notion database, flattens each page's
block tree, writes one file per page into <output>/<format>/sources and
merges them into <output>/<format>/combined.<ext>.

Examples:
  notion-to-audio extract
  notion-to-audio extract --format pdf
  notion-to-audio extract --format md --number`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		format := flagFormat
		if !cmd.Flags().Changed("format") {
			format = a.cfg.Extract.Format
		}
		numbered := flagNumbered || a.cfg.Extract.Numbered
		_, err = a.extract(cmd.Context(), format, numbered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&flagFormat, "format", "txt", "Output format: "+strings.Join(render.Formats, ", "))
	extractCmd.Flags().BoolVar(&flagNumbered, "number", false, "Prefix file names with the page position")
}
