package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppend_WritesOneJSONLinePerEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLog(path, 1<<20, 3, nil)

	l.Append(Entry{Timestamp: time.Now(), Operation: "read_file", Args: map[string]any{"path": "a.txt"}, OK: true})
	l.Append(Entry{Timestamp: time.Now(), Operation: "write_file", OK: false, Meta: map[string]any{"error": "denied"}})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected audit file to exist: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("Expected valid JSON line, got error %v for %q", err, scanner.Text())
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != "read_file" || !entries[0].OK {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].Operation != "write_file" || entries[1].OK {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
}

func TestAppend_RotatesWhenOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLog(path, 200, 3, nil)

	for i := 0; i < 30; i++ {
		l.Append(Entry{
			Timestamp: time.Now(),
			Operation: "read_file",
			Args:      map[string]any{"path": fmt.Sprintf("file-%02d.txt", i)},
			OK:        true,
		})
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected current log to exist: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("Expected first backup to exist: %v", err)
	}
	// Never more than maxBackups numbered files.
	if _, err := os.Stat(path + ".4"); err == nil {
		t.Error("Expected no backup beyond maxBackups")
	}
}

func TestAppend_FailuresAreSwallowed(t *testing.T) {
	// Pointing the log at a directory makes the open fail; Append must not
	// panic or return anything.
	dir := t.TempDir()
	l := NewLog(dir, 1<<20, 3, nil)

	l.Append(Entry{Timestamp: time.Now(), Operation: "read_file", OK: true})
}

func TestAppend_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "audit.log")
	l := NewLog(path, 1<<20, 3, nil)

	l.Append(Entry{Timestamp: time.Now(), Operation: "run_command", OK: true})

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected audit file in created directories: %v", err)
	}
}
