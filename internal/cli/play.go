package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Tantawi65/VLCSub/internal/driver"
	"github.com/Tantawi65/VLCSub/internal/playback"
	"github.com/Tantawi65/VLCSub/internal/player"
	"github.com/Tantawi65/VLCSub/internal/subtitle"
	"github.com/Tantawi65/VLCSub/internal/vocab"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [subtitle_file]",
	Short: "Play subtitles in sync with your movie",
	Long: `Load an SRT file and display its cues in the terminal, synchronized
with your movie.

By default the clock free-runs: press Enter when the movie starts and
the cues follow. With --vlc the clock follows VLC's reported position
instead (enable VLC's HTTP interface first: Preferences > Interface >
Main interfaces > Web, password "vlc123").

Commands while playing:
  Enter / p   play or pause
  +           subtitles late? show them earlier
  -           subtitles early? show them later
  r           reset to the beginning
  w <word>    save a word from the current cue
  q           quit

Examples:
  vlcsub play movie.srt
  vlcsub play movie.srt --offset 1500ms
  vlcsub play movie.srt --vlc --vlc-password vlc123`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		Bool("vlc", false, "Follow VLC's playback position over its HTTP interface")
	playCmd.Flags().
		String("vlc-url", player.DefaultURL, "VLC status endpoint URL")
	playCmd.Flags().
		String("vlc-password", player.DefaultPassword, "VLC HTTP interface password")
	playCmd.Flags().
		Duration("interval", 40*time.Millisecond, "How often to refresh the displayed cue")
	playCmd.Flags().
		Duration("step", 500*time.Millisecond, "Offset change applied by +/-")
	playCmd.Flags().
		Duration("offset", 0, "Initial sync offset (positive shows cues later)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	useVLC, _ := cmd.Flags().GetBool("vlc")
	vlcURL, _ := cmd.Flags().GetString("vlc-url")
	vlcPassword, _ := cmd.Flags().GetString("vlc-password")
	interval, _ := cmd.Flags().GetDuration("interval")
	step, _ := cmd.Flags().GetDuration("step")
	offset, _ := cmd.Flags().GetDuration("offset")
	vocabPath, _ := cmd.Flags().GetString("vocab")

	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %v", step)
	}

	set, err := subtitle.ParseFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to load subtitle file: %w", err)
	}
	if set.Len() == 0 {
		return fmt.Errorf("no subtitles found in %s", subtitlePath)
	}
	if set.Skipped() > 0 {
		logger.Warnw("Skipped malformed subtitle blocks",
			"file", subtitlePath,
			"skipped", set.Skipped(),
		)
	}

	logger.Infow("Loaded subtitles",
		"file", subtitlePath,
		"cues", set.Len(),
		"duration", subtitle.FormatTimestamp(set.Duration()),
	)

	store, err := vocab.Open(vocabPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open vocabulary file: %w", err)
	}

	engine := playback.NewEngine(set)
	if offset != 0 {
		engine.SetOffset(offset)
	}

	opts := driver.Options{
		Words:  &vocabSink{store: store, source: filepath.Base(subtitlePath)},
		Logger: logger,
	}
	if useVLC {
		opts.Source = player.NewClient(vlcURL, vlcPassword)
		logger.Infow("Following VLC playback position", "url", vlcURL)
	}

	d := driver.New(engine, &terminalRenderer{}, opts)

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	fmt.Printf("Loaded %d cues from %s (%s)\n",
		set.Len(), filepath.Base(subtitlePath), subtitle.FormatTimestamp(set.Duration()))
	fmt.Println("Press Enter when the movie begins. Type 'q' to quit.")

	go readCommands(ctx, cancel, d, step)
	d.Run(ctx, interval)

	fmt.Println()
	return nil
}

// reads single-line commands from stdin and forwards them to the driver
func readCommands(ctx context.Context, cancel context.CancelFunc, d *driver.Driver, step time.Duration) {
	defer cancel()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)

		switch {
		case line == "" || line == "p":
			d.Toggle()
		case line == "+", line == "=":
			// subtitles behind the audio: show them earlier
			d.Adjust(-step)
		case line == "-":
			d.Adjust(step)
		case line == "r":
			d.Reset()
		case line == "q":
			return
		case fields[0] == "w" && len(fields) > 1:
			for _, word := range fields[1:] {
				if err := d.Save(word); err != nil {
					fmt.Printf("\ncould not save %q: %v\n", word, err)
				} else {
					fmt.Printf("\nsaved %q\n", word)
				}
			}
		default:
			fmt.Printf("\nunknown command %q (Enter, +, -, r, w <word>, q)\n", line)
		}
	}
}

// renders cues and a status line on the terminal
type terminalRenderer struct{}

func (r *terminalRenderer) ShowCue(cue subtitle.Cue) {
	text := strings.ReplaceAll(cue.Text, "\n", " / ")
	fmt.Printf("\r\033[K[%s] %s\n", cue.StartFormatted(), text)
}

func (r *terminalRenderer) ClearCue() {
	fmt.Print("\r\033[K")
}

func (r *terminalRenderer) ShowStatus(info playback.ProgressInfo) {
	state := "paused"
	if info.Running {
		state = "playing"
	}
	fmt.Printf("\r\033[K%s  %s / %s  offset %s ",
		state, info.ElapsedFormatted, info.TotalFormatted, info.OffsetFormatted)
}

// adapts the vocabulary store to the driver's word sink
type vocabSink struct {
	store  *vocab.Store
	source string
}

func (s *vocabSink) SaveWord(word, sentence string, position time.Duration) error {
	_, err := s.store.Add(word, sentence, position, s.source)
	return err
}
