package creature

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"athena/internal/logging"
)

// fieldCount is the number of lines in a valid state file.
// Layout: name, energy, hunger, cash, totalEarned, knowledge, wallet.
const fieldCount = 7

// Store reads and writes the state file. The layout has no escaping, so a
// name containing a newline corrupts the record.
type Store struct {
	path string
}

// NewStore returns a store for the given file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the record. It reports false when the file is missing,
// unreadable or has fewer than seven lines. A malformed field falls back to
// its default without affecting the others.
func (s *Store) Load() (State, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.CreatureWarn("Load: read %s: %v", s.path, err)
		}
		return State{}, false
	}

	lines := splitLines(string(data))
	if len(lines) < fieldCount {
		logging.CreatureWarn("Load: %s has %d lines, want %d; starting fresh", s.path, len(lines), fieldCount)
		return State{}, false
	}

	// A CRLF file marks every line with \r, the name line included. In an LF
	// file a trailing \r belongs to the name.
	name := lines[0]
	if strings.HasSuffix(lines[1], "\r") {
		name = strings.TrimSuffix(name, "\r")
	}
	for i := 1; i < fieldCount; i++ {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	st := State{
		Name:        name,
		Energy:      parseUint32(lines[1], MaxEnergy, "energy"),
		Hunger:      parseUint32(lines[2], 0, "hunger"),
		Cash:        parseFloat(lines[3], "cash"),
		TotalEarned: parseUint64(lines[4], "totalEarned"),
		Knowledge:   parseUint32(lines[5], 0, "knowledge"),
		Wallet:      parseFloat(lines[6], "wallet"),
		Alive:       true,
	}
	if st.Energy > MaxEnergy {
		st.Energy = MaxEnergy
	}
	return st, true
}

// Save writes all fields, one per line, through a temp file and rename so
// a crash leaves either the old or the new record.
func (s *Store) Save(st State) error {
	var b strings.Builder
	b.WriteString(st.Name)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatUint(uint64(st.Energy), 10))
	b.WriteByte('\n')
	b.WriteString(strconv.FormatUint(uint64(st.Hunger), 10))
	b.WriteByte('\n')
	b.WriteString(strconv.FormatFloat(st.Cash, 'f', -1, 64))
	b.WriteByte('\n')
	b.WriteString(strconv.FormatUint(st.TotalEarned, 10))
	b.WriteByte('\n')
	b.WriteString(strconv.FormatUint(uint64(st.Knowledge), 10))
	b.WriteByte('\n')
	b.WriteString(strconv.FormatFloat(st.Wallet, 'f', -1, 64))

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".athena_save-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state: %w", err)
	}

	logging.CreatureDebug("Save: wrote %s", s.path)
	return nil
}

// LoadOrNew loads the record or returns a fresh creature named name.
func LoadOrNew(store *Store, name string) State {
	if st, ok := store.Load(); ok {
		return st
	}
	return New(name)
}

func splitLines(data string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func parseUint32(raw string, def uint32, field string) uint32 {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		logging.CreatureWarn("Load: bad %s %q, using %d", field, raw, def)
		return def
	}
	return uint32(v)
}

func parseUint64(raw, field string) uint64 {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		logging.CreatureWarn("Load: bad %s %q, using 0", field, raw)
		return 0
	}
	return v
}

func parseFloat(raw, field string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		logging.CreatureWarn("Load: bad %s %q, using 0", field, raw)
		return 0
	}
	return v
}
