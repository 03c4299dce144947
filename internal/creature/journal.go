package creature

import (
	"fmt"
	"os"
	"path/filepath"

	"athena/internal/logging"
)

// Journal is the append-only diary. Writes are best-effort.
type Journal struct {
	path string
}

// NewJournal returns a journal writing to path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Append writes "[Level N] text". Errors are logged and swallowed.
func (j *Journal) Append(level uint32, text string) {
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		logging.CreatureDebug("Journal: mkdir: %v", err)
		return
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.CreatureDebug("Journal: open %s: %v", j.path, err)
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "[Level %d] %s\n", level, text); err != nil {
		logging.CreatureDebug("Journal: write: %v", err)
	}
}
