// Package audit keeps a local call-history log under the user's home
// directory, one JSON line per session.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Entry is one finished (or failed) call.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"` // "meeting" or "interview"
	Role      string    `json:"role,omitempty"`
	Room      string    `json:"room"`
	Name      string    `json:"name"`
	Peers     int       `json:"peers"`
	Duration  float64   `json:"duration_seconds"`
	Anomalies int       `json:"anomalies,omitempty"`
	Status    string    `json:"status"` // "completed" or "failed"
	Error     string    `json:"error,omitempty"`
}

// dirOverride lets tests point the log somewhere disposable.
var dirOverride string

// SetDir overrides the log directory. Pass "" to restore the default.
func SetDir(dir string) { dirOverride = dir }

// LogPath returns the history file path, creating the directory if needed.
func LogPath() (string, error) {
	dir := dirOverride
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".hiresafe")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.jsonl"), nil
}

// Write appends an entry to the history file, filling in ID and timestamp
// when the caller left them empty.
func Write(entry Entry) error {
	path, err := LogPath()
	if err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(data, '\n'))
	return err
}

// Load reads the full history, newest first. Malformed lines are skipped.
func Load() ([]Entry, error) {
	path, err := LogPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, scanner.Err()
}
