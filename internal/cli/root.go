package cli

import (
	"github.com/Tantawi65/VLCSub/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vlcsub",
	Short: "Subtitle companion for learning languages with VLC",
	Long: `VLCSub runs SRT subtitles on its own playback clock so you can watch
a movie in VLC with subtitles rendered separately and save words you
want to learn.

The clock supports pause/resume, a tunable sync offset, and can follow
VLC's reported position over its HTTP interface.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		String("vocab", "vocabulary.json", "Vocabulary file path")
}
