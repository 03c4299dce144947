package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"athena/internal/logging"
)

const dataVersion = "1.0"

// Tracker manages token usage recording and persistence.
type Tracker struct {
	mu       sync.Mutex
	data     UsageData
	filePath string
	dirty    bool
}

// NewTracker creates a tracker persisted at filePath. Existing data is
// loaded; a corrupt file is logged and replaced on the next save.
func NewTracker(filePath string) (*Tracker, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create usage dir: %w", err)
	}

	t := &Tracker{
		filePath: filePath,
		data:     UsageData{Version: dataVersion, Aggregate: emptyStats()},
	}
	if err := t.Load(); err != nil {
		logging.UsageWarn("NewTracker: ignoring unreadable %s: %v", filePath, err)
	}
	return t, nil
}

func emptyStats() Stats {
	return Stats{
		ByMode:  make(map[string]TokenCounts),
		ByModel: make(map[string]TokenCounts),
	}
}

// Path returns the backing file.
func (t *Tracker) Path() string {
	return t.filePath
}

// Load reads the usage data from disk. A missing file is not an error.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var loaded UsageData
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded.Aggregate.ByMode == nil {
		loaded.Aggregate.ByMode = make(map[string]TokenCounts)
	}
	if loaded.Aggregate.ByModel == nil {
		loaded.Aggregate.ByModel = make(map[string]TokenCounts)
	}
	if loaded.Version == "" {
		loaded.Version = dataVersion
	}
	t.data = loaded
	return nil
}

// Save writes the usage data to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

// Flush saves only if something was recorded since the last save.
func (t *Tracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		return fmt.Errorf("write usage: %w", err)
	}
	t.dirty = false
	return nil
}

// Record adds one successful call's token counts.
func (t *Tracker) Record(mode, model string, input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Calls++
	t.data.Aggregate.Total.Add(input, output)
	addToMap(t.data.Aggregate.ByMode, mode, input, output)
	addToMap(t.data.Aggregate.ByModel, model, input, output)
	t.dirty = true
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByMode = copyTokenCountsMap(stats.ByMode)
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	if key == "" {
		key = "unknown"
	}
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}
