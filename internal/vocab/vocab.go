package vocab

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tantawi65/VLCSub/internal/logging"
)

// a single saved word with its cue context
type Entry struct {
	Word              string `json:"word"`
	Sentence          string `json:"sentence"`
	PositionMs        int64  `json:"timestamp_ms"`
	PositionFormatted string `json:"timestamp_formatted"`
	Source            string `json:"movie_file"`
	SavedAt           string `json:"saved_at"`
	Notes             string `json:"notes"`
}

type metadata struct {
	Created     string `json:"created"`
	LastUpdated string `json:"last_updated"`
	TotalWords  int    `json:"total_words"`
}

type fileLayout struct {
	Metadata metadata `json:"metadata"`
	Entries  []Entry  `json:"entries"`
}

// Store persists saved vocabulary to a JSON file. Every Add or Remove
// writes the file, keeping the previous version as a .backup.
type Store struct {
	mu      sync.Mutex
	path    string
	meta    metadata
	entries []Entry
	log     *logging.Logger
}

// Open loads an existing vocabulary file or starts a fresh store.
// A corrupt file is logged and replaced on the next save rather than
// treated as fatal.
func Open(path string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	s := &Store{path: path, log: log}
	now := time.Now().Format(time.RFC3339)
	s.meta = metadata{Created: now, LastUpdated: now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var layout fileLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		log.Warnw("Could not load vocabulary file, starting fresh",
			"path", path,
			"error", err,
		)
		return s, nil
	}

	if layout.Metadata.Created != "" {
		s.meta = layout.Metadata
	}
	s.entries = layout.Entries
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Add saves a word with its cue sentence and playback position. The
// word is lowercased and trimmed before storage.
func (s *Store) Add(word, sentence string, position time.Duration, source string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Word:              strings.ToLower(strings.TrimSpace(word)),
		Sentence:          strings.TrimSpace(sentence),
		PositionMs:        position.Milliseconds(),
		PositionFormatted: formatPosition(position),
		Source:            source,
		SavedAt:           time.Now().Format(time.RFC3339),
	}

	s.entries = append(s.entries, entry)
	if err := s.saveLocked(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// distinct saved words, unordered
func (s *Store) UniqueWords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.entries))
	var words []string
	for _, e := range s.entries {
		if _, ok := seen[e.Word]; !ok {
			seen[e.Word] = struct{}{}
			words = append(words, e.Word)
		}
	}
	return words
}

func (s *Store) Has(word string) bool {
	return s.Count(word) > 0
}

// how many times a word has been saved
func (s *Store) Count(word string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	word = strings.ToLower(word)
	count := 0
	for _, e := range s.entries {
		if e.Word == word {
			count++
		}
	}
	return count
}

// Remove drops every entry for a word; reports whether any existed.
func (s *Store) Remove(word string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	word = strings.ToLower(word)
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Word != word {
			kept = append(kept, e)
		}
	}

	removed := len(kept) < len(s.entries)
	s.entries = kept
	if !removed {
		return false, nil
	}
	return true, s.saveLocked()
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// save count for one word, used in stats
type WordCount struct {
	Word  string
	Count int
}

type Stats struct {
	TotalSaves  int
	UniqueWords int
	MostSaved   []WordCount
	BySource    map[string]int
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	bySource := make(map[string]int)
	for _, e := range s.entries {
		counts[e.Word]++
		source := e.Source
		if source == "" {
			source = "Unknown"
		}
		bySource[source]++
	}

	most := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		most = append(most, WordCount{Word: word, Count: count})
	}
	sort.Slice(most, func(i, j int) bool {
		if most[i].Count != most[j].Count {
			return most[i].Count > most[j].Count
		}
		return most[i].Word < most[j].Word
	})
	if len(most) > 5 {
		most = most[:5]
	}

	return Stats{
		TotalSaves:  len(s.entries),
		UniqueWords: len(counts),
		MostSaved:   most,
		BySource:    bySource,
	}
}

// ExportCSV writes the vocabulary as CSV for flashcard tools. An empty
// path derives one from the store path by swapping the extension.
func (s *Store) ExportCSV(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		path = strings.TrimSuffix(s.path, ".json") + ".csv"
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Word", "Sentence", "Timestamp", "Movie", "Saved At"}); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range s.entries {
		record := []string{e.Word, e.Sentence, e.PositionFormatted, e.Source, e.SavedAt}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return path, nil
}

func (s *Store) saveLocked() error {
	s.meta.LastUpdated = time.Now().Format(time.RFC3339)
	s.meta.TotalWords = len(s.entries)

	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(fileLayout{Metadata: s.meta, Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}

	// keep the previous version around in case a write goes wrong
	if _, err := os.Stat(s.path); err == nil {
		_ = os.Rename(s.path, s.path+".backup")
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}
	return nil
}

// playback position as HH:MM:SS
func formatPosition(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
