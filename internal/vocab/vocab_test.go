package vocab

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStoreAddAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")

	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	entry, err := store.Add("  Bonjour ", "Bonjour, comment allez-vous?", 5*time.Second, "movie.srt")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if entry.Word != "bonjour" {
		t.Errorf("word not normalized: %q", entry.Word)
	}
	if entry.PositionMs != 5000 {
		t.Errorf("position: got %d, want 5000", entry.PositionMs)
	}
	if entry.PositionFormatted != "00:00:05" {
		t.Errorf("formatted position: got %q", entry.PositionFormatted)
	}

	if _, err := store.Add("merci", "Merci beaucoup.", 15*time.Second, "movie.srt"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// a fresh store must see the persisted entries
	reloaded, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}
	if !reloaded.Has("bonjour") {
		t.Error("reloaded store missing 'bonjour'")
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open should tolerate corrupt files: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}

func TestStoreBackupOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := store.Add("first", "First sentence.", time.Second, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add("second", "Second sentence.", 2*time.Second, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Errorf("expected backup file after second save: %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	store, _ := Open(path, nil)

	_, _ = store.Add("bonjour", "Bonjour!", time.Second, "a.srt")
	_, _ = store.Add("bonjour", "Bonjour encore.", 2*time.Second, "a.srt")
	_, _ = store.Add("merci", "Merci.", 3*time.Second, "a.srt")

	removed, err := store.Remove("Bonjour")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}
	if store.Has("bonjour") {
		t.Error("'bonjour' still present after removal")
	}
	if !store.Has("merci") {
		t.Error("'merci' should survive removal of another word")
	}

	removed, err = store.Remove("absent")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed {
		t.Error("expected no removal for unknown word")
	}
}

func TestStoreStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	store, _ := Open(path, nil)

	_, _ = store.Add("bonjour", "Bonjour!", time.Second, "a.srt")
	_, _ = store.Add("bonjour", "Encore.", 2*time.Second, "a.srt")
	_, _ = store.Add("merci", "Merci.", 3*time.Second, "b.srt")

	stats := store.Stats()
	if stats.TotalSaves != 3 {
		t.Errorf("total saves: got %d, want 3", stats.TotalSaves)
	}
	if stats.UniqueWords != 2 {
		t.Errorf("unique words: got %d, want 2", stats.UniqueWords)
	}
	if len(stats.MostSaved) == 0 || stats.MostSaved[0].Word != "bonjour" || stats.MostSaved[0].Count != 2 {
		t.Errorf("most saved: got %v", stats.MostSaved)
	}
	if stats.BySource["a.srt"] != 2 || stats.BySource["b.srt"] != 1 {
		t.Errorf("by source: got %v", stats.BySource)
	}
}

func TestStoreRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	store, _ := Open(path, nil)

	_, _ = store.Add("one", "1", time.Second, "")
	_, _ = store.Add("two", "2", 2*time.Second, "")
	_, _ = store.Add("three", "3", 3*time.Second, "")

	recent := store.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent entries, got %d", len(recent))
	}
	if recent[0].Word != "three" || recent[1].Word != "two" {
		t.Errorf("expected newest first, got %v", recent)
	}

	if got := store.Recent(0); len(got) != 0 {
		t.Errorf("Recent(0): expected no entries, got %v", got)
	}
	if got := store.Recent(-1); len(got) != 0 {
		t.Errorf("Recent(-1): expected no entries, got %v", got)
	}
	if got := store.Recent(10); len(got) != 3 {
		t.Errorf("Recent(10): expected all 3 entries, got %d", len(got))
	}
}

func TestStoreExportCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.json")
	store, _ := Open(path, nil)

	_, _ = store.Add("bonjour", "Bonjour, \"mon ami\"!", 65*time.Second, "movie.srt")

	csvPath, err := store.ExportCSV("")
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if csvPath != filepath.Join(dir, "vocabulary.csv") {
		t.Errorf("unexpected derived path: %s", csvPath)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("failed to open CSV: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 record, got %d rows", len(records))
	}
	if records[0][0] != "Word" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "bonjour" || records[1][2] != "00:01:05" {
		t.Errorf("unexpected record: %v", records[1])
	}
	if !strings.Contains(records[1][1], `"mon ami"`) {
		t.Errorf("sentence not preserved through CSV quoting: %q", records[1][1])
	}
}
