// Package editor holds the shared code-editor state of a room: the language
// and the document content, updated from code-change and language-change
// events. Last-writer-wins; the relay's per-sender FIFO keeps any single
// author's edits in order.
package editor

import (
	"encoding/json"
	"sync"
)

// DefaultLanguage is the editor's language before anyone changes it.
const DefaultLanguage = "javascript"

// Change is the payload of a code-change event.
type Change struct {
	Content string `json:"content"`
	Version uint64 `json:"version"`
}

// LanguageChange is the payload of a language-change event.
type LanguageChange struct {
	Language string `json:"language"`
}

// Document is the local replica of the room's editor content.
type Document struct {
	mu       sync.Mutex
	language string
	content  string
	version  uint64
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{language: DefaultLanguage}
}

// Apply merges a remote change. Stale versions (at or below the current one)
// are ignored so reordered deliveries from different senders cannot roll the
// document back.
func (d *Document) Apply(ch Change) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ch.Version <= d.version {
		return false
	}
	d.content = ch.Content
	d.version = ch.Version
	return true
}

// Edit replaces the local content and returns the change to broadcast.
func (d *Document) Edit(content string) Change {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.version++
	d.content = content
	return Change{Content: content, Version: d.version}
}

// SetLanguage updates the editor language.
func (d *Document) SetLanguage(lang string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.language = lang
}

// Snapshot returns the current language, content and version.
func (d *Document) Snapshot() (language, content string, version uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.language, d.content, d.version
}

// DecodeChange parses a code-change payload.
func DecodeChange(raw json.RawMessage) (Change, error) {
	var ch Change
	err := json.Unmarshal(raw, &ch)
	return ch, err
}

// DecodeLanguage parses a language-change payload.
func DecodeLanguage(raw json.RawMessage) (LanguageChange, error) {
	var lc LanguageChange
	err := json.Unmarshal(raw, &lc)
	return lc, err
}
