package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_RecordAggregatesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".athena", "usage.json")
	tracker, err := NewTracker(path)
	require.NoError(t, err)

	tracker.Record("augmented", "gemini-2.5-flash", 10, 5)
	tracker.Record("plain", "gemini-2.5-flash", 2, 3)
	tracker.Record("plain", "gemini-2.0-flash", 1, 1)

	want := Stats{
		Calls: 3,
		Total: TokenCounts{Calls: 3, Input: 13, Output: 9, Total: 22},
		ByMode: map[string]TokenCounts{
			"augmented": {Calls: 1, Input: 10, Output: 5, Total: 15},
			"plain":     {Calls: 2, Input: 3, Output: 4, Total: 7},
		},
		ByModel: map[string]TokenCounts{
			"gemini-2.5-flash": {Calls: 2, Input: 12, Output: 8, Total: 20},
			"gemini-2.0-flash": {Calls: 1, Input: 1, Output: 1, Total: 2},
		},
	}
	if diff := cmp.Diff(want, tracker.Stats()); diff != "" {
		t.Fatalf("Stats() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, tracker.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted UsageData
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "1.0", persisted.Version)
	assert.Equal(t, int64(22), persisted.Aggregate.Total.Total)

	reloaded, err := NewTracker(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, reloaded.Stats()); diff != "" {
		t.Fatalf("reloaded Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_FlushWithoutRecordsWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	tracker, err := NewTracker(path)
	require.NoError(t, err)

	require.NoError(t, tracker.Flush())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTracker_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	tracker, err := NewTracker(path)
	require.NoError(t, err)
	assert.Zero(t, tracker.Stats().Calls)

	tracker.Record("plain", "m", 1, 1)
	require.NoError(t, tracker.Save())
	reloaded, err := NewTracker(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.Stats().Calls)
}

func TestTracker_StatsReturnsCopy(t *testing.T) {
	tracker, err := NewTracker(filepath.Join(t.TempDir(), "usage.json"))
	require.NoError(t, err)
	tracker.Record("plain", "m", 1, 1)

	stats := tracker.Stats()
	stats.ByMode["plain"] = TokenCounts{}
	assert.Equal(t, int64(2), tracker.Stats().ByMode["plain"].Total)
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tracker, err := NewTracker(filepath.Join(t.TempDir(), "usage.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record("plain", "m", 1, 2)
		}()
	}
	wg.Wait()

	stats := tracker.Stats()
	assert.Equal(t, int64(20), stats.Calls)
	assert.Equal(t, int64(60), stats.Total.Total)
}
