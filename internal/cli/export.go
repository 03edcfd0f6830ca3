package cli

import (
	"fmt"
	"path/filepath"

	"github.com/Tantawi65/VLCSub/internal/vocab"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved vocabulary to CSV",
	Long: `Export the saved vocabulary as a CSV file for import into flashcard
tools like Anki.

Examples:
  vlcsub export
  vlcsub export --vocab my_words.json -o deck.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("output", "o", "", "Output CSV path (default: vocabulary path with .csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	vocabPath, _ := cmd.Flags().GetString("vocab")
	outputPath, _ := cmd.Flags().GetString("output")

	store, err := vocab.Open(vocabPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open vocabulary file: %w", err)
	}

	if store.Len() == 0 {
		return fmt.Errorf("no saved words in %s", vocabPath)
	}

	csvPath, err := store.ExportCSV(outputPath)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	stats := store.Stats()
	absOutput, _ := filepath.Abs(csvPath)
	fmt.Printf("Vocabulary exported successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", stats.TotalSaves)
	fmt.Printf("  Unique words: %d\n", stats.UniqueWords)

	return nil
}
