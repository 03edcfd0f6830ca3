package subtitle

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var (
	timestampRegex = regexp.MustCompile(
		`(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})`,
	)
	blockSplitRegex = regexp.MustCompile(`\n\s*\n`)
	markupRegex     = regexp.MustCompile(`<[^>]+>`)
)

// a candidate text encoding tried during parsing. A nil Charmap means
// strict UTF-8 validation instead of a charmap decode.
type Encoding struct {
	Name    string
	Charmap encoding.Encoding
}

// encodings tried in order when none are given. ISO 8859-1 accepts any
// byte sequence, so it acts as the catch-all for legacy files.
var DefaultEncodings = []Encoding{
	{Name: "utf-8"},
	{Name: "iso-8859-1", Charmap: charmap.ISO8859_1},
	{Name: "windows-1252", Charmap: charmap.Windows1252},
}

// reported when subtitle data cannot be decoded with any candidate encoding
type ParseError struct {
	Encodings []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"could not decode subtitle data with any supported encoding (tried %s)",
		strings.Join(e.Encodings, ", "),
	)
}

// ParseFile reads and parses an SRT file using the default encodings.
func ParseFile(path string) (*CueSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return Parse(data, nil)
}

// Parse decodes raw SRT data and returns the cues sorted by start time.
//
// Each candidate encoding is tried in order and the first successful
// decode wins; if every candidate fails the result is a *ParseError.
// Structurally malformed blocks are skipped, not fatal, and their count
// is available via CueSet.Skipped. Fully malformed or empty input
// yields an empty set and no error.
func Parse(data []byte, encodings []Encoding) (*CueSet, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	content, err := decode(data, encodings)
	if err != nil {
		return nil, err
	}

	content = strings.TrimPrefix(content, "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var cues []Cue
	skipped := 0

	for _, block := range blockSplitRegex.Split(strings.TrimSpace(content), -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		cue, ok := parseBlock(block)
		if !ok {
			skipped++
			continue
		}
		cues = append(cues, cue)
	}

	// source files are not always ordered
	sort.Slice(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})

	return &CueSet{cues: cues, skipped: skipped}, nil
}

// parseBlock validates one blank-line-separated block: an integer index
// line, a timestamp range line, and at least one text line.
func parseBlock(block string) (Cue, bool) {
	lines := strings.Split(block, "\n")
	if len(lines) < 3 {
		return Cue{}, false
	}

	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Cue{}, false
	}

	matches := timestampRegex.FindStringSubmatch(strings.TrimSpace(lines[1]))
	if len(matches) != 9 {
		return Cue{}, false
	}

	start, err := parseTimestamp(matches[1], matches[2], matches[3], matches[4])
	if err != nil {
		return Cue{}, false
	}
	end, err := parseTimestamp(matches[5], matches[6], matches[7], matches[8])
	if err != nil {
		return Cue{}, false
	}

	text := strings.TrimSpace(strings.Join(lines[2:], "\n"))
	text = markupRegex.ReplaceAllString(text, "")

	return Cue{Index: index, Start: start, End: end, Text: text}, true
}

func parseTimestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

func decode(data []byte, encodings []Encoding) (string, error) {
	names := make([]string, 0, len(encodings))

	for _, enc := range encodings {
		names = append(names, enc.Name)

		if enc.Charmap == nil {
			if utf8.Valid(data) {
				return string(data), nil
			}
			continue
		}

		decoded, err := enc.Charmap.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		return string(bytes.ToValidUTF8(decoded, []byte("�"))), nil
	}

	return "", &ParseError{Encodings: names}
}
