package cmd

import (
	"github.com/spf13/cobra"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Rewrite the text exports into conversational transcripts",
	Long: `Transcript reads every .txt file under <output>/txt/sources, sends it to
Gemini in chunks and writes transcript_<name>.txt into the transcript
directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		_, err = a.transcript(cmd.Context())
		return err
	},
}

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Synthesize every transcript into a WAV file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		_, err = a.audio(cmd.Context())
		return err
	},
}

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run extract (txt), transcript and audio in sequence",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		return a.full(cmd.Context(), flagFullNumbered || a.cfg.Extract.Numbered)
	},
}

var flagFullNumbered bool

func init() {
	rootCmd.AddCommand(transcriptCmd, audioCmd, fullCmd)
	fullCmd.Flags().BoolVar(&flagFullNumbered, "number", false, "Prefix exported file names with the page position")
}
