package game

import (
	"time"

	"github.com/swaptoe/swaptoe/internal/engine"
)

type HistoryEntry struct {
	Mover      engine.Mark   `json:"mover"`
	Move       engine.Move   `json:"move"`
	Elapsed    time.Duration `json:"elapsed"`
	ByComputer bool          `json:"by_computer"`
	Depth      int           `json:"depth,omitempty"`
}

type History struct {
	entries []HistoryEntry
}

func (h *History) Clear() {
	h.entries = nil
}

func (h *History) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h History) Size() int {
	return len(h.entries)
}

func (h History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h History) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}
