package cli

import (
	"fmt"

	"github.com/Tantawi65/VLCSub/internal/subtitle"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [subtitle_file]",
	Short: "Parse an SRT file and report what it contains",
	Long: `Parse an SRT file and print cue count, duration, and how many
malformed blocks were skipped. Useful for checking a file before a
viewing session.

Examples:
  vlcsub inspect movie.srt
  vlcsub inspect movie.srt --preview 5`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().
		IntP("preview", "p", 0, "Print the first n cues")
}

func runInspect(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	preview, _ := cmd.Flags().GetInt("preview")

	set, err := subtitle.ParseFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	fmt.Printf("File: %s\n", subtitlePath)
	fmt.Printf("  Cues: %d\n", set.Len())
	fmt.Printf("  Skipped blocks: %d\n", set.Skipped())

	if set.Len() == 0 {
		fmt.Println("  No subtitles found")
		return nil
	}

	cues := set.Cues()
	fmt.Printf("  First cue: %s\n", cues[0].StartFormatted())
	fmt.Printf("  Last cue:  %s\n", cues[len(cues)-1].EndFormatted())
	fmt.Printf("  Duration:  %s\n", subtitle.FormatTimestamp(set.Duration()))

	if preview < 0 {
		preview = 0
	}
	if preview > len(cues) {
		preview = len(cues)
	}
	for _, cue := range cues[:preview] {
		fmt.Printf("\n[%s --> %s]\n%s\n", cue.StartFormatted(), cue.EndFormatted(), cue.Text)
	}

	return nil
}
