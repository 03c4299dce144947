package creature

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	cases := []State{
		New("Athena"),
		{Name: "Athena", Energy: 55, Hunger: 140, Cash: 1234.5678, Wallet: 0.00012345, Knowledge: 7, TotalEarned: 98765, Alive: true},
		{Name: "com espaço ", Energy: 0, Hunger: 0, Cash: 0.1 + 0.2, Wallet: 1e-9, Knowledge: 0, TotalEarned: 0, Alive: true},
		{Name: "", Energy: 100, Hunger: 4294967295, Cash: -3.5, Wallet: 12, Knowledge: 4294967295, TotalEarned: 18446744073709551615, Alive: true},
	}

	for _, want := range cases {
		store := NewStore(filepath.Join(t.TempDir(), "athena_save.txt"))
		require.NoError(t, store.Save(want))

		got, ok := store.Load()
		require.True(t, ok)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestStore_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "athena_save.txt")
	store := NewStore(path)
	require.NoError(t, store.Save(State{Name: "Athena", Energy: 80, Hunger: 20, Cash: 45.5, TotalEarned: 45, Knowledge: 2, Wallet: 0.25, Alive: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Athena\n80\n20\n45.5\n45\n2\n0.25", string(data))
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.txt"))
	_, ok := store.Load()
	assert.False(t, ok)

	st := LoadOrNew(store, "Athena")
	assert.Equal(t, New("Athena"), st)
}

func TestStore_LoadUndersized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "athena_save.txt")
	require.NoError(t, os.WriteFile(path, []byte("Athena\n80\n20\n45.5\n45\n2"), 0644))

	_, ok := NewStore(path).Load()
	assert.False(t, ok)
}

func TestStore_PerFieldDefaults(t *testing.T) {
	good := []string{"Athena", "80", "20", "45.5", "45", "2", "0.25"}
	want := State{Name: "Athena", Energy: 80, Hunger: 20, Cash: 45.5, TotalEarned: 45, Knowledge: 2, Wallet: 0.25, Alive: true}

	tests := []struct {
		name  string
		index int
		bad   string
		apply func(*State)
	}{
		{"energy", 1, "lots", func(s *State) { s.Energy = 100 }},
		{"negative energy", 1, "-5", func(s *State) { s.Energy = 100 }},
		{"hunger", 2, "x", func(s *State) { s.Hunger = 0 }},
		{"cash", 3, "R$ 10", func(s *State) { s.Cash = 0 }},
		{"total earned", 4, "4.5", func(s *State) { s.TotalEarned = 0 }},
		{"knowledge", 5, "", func(s *State) { s.Knowledge = 0 }},
		{"wallet", 6, "abc", func(s *State) { s.Wallet = 0 }},
		{"NaN wallet", 6, "NaN", func(s *State) { s.Wallet = 0 }},
		{"infinite cash", 3, "+Inf", func(s *State) { s.Cash = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := append([]string(nil), good...)
			lines[tt.index] = tt.bad

			path := filepath.Join(t.TempDir(), "athena_save.txt")
			require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644))

			got, ok := NewStore(path).Load()
			require.True(t, ok)

			expected := want
			tt.apply(&expected)
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_LoadToleratesCRLFAndTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "athena_save.txt")
	require.NoError(t, os.WriteFile(path, []byte("Athena\r\n80\r\n20\r\n45.5\r\n45\r\n2\r\n0.25\r\n"), 0644))

	got, ok := NewStore(path).Load()
	require.True(t, ok)
	assert.Equal(t, "Athena", got.Name)
	assert.Equal(t, 0.25, got.Wallet)
}

func TestStore_NameKeepsCarriageReturnInLFFile(t *testing.T) {
	want := State{Name: "Athena\r", Energy: 80, Hunger: 20, Cash: 45.5, TotalEarned: 45, Knowledge: 2, Wallet: 0.25, Alive: true}
	store := NewStore(filepath.Join(t.TempDir(), "athena_save.txt"))
	require.NoError(t, store.Save(want))

	got, ok := store.Load()
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ClampsEnergy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "athena_save.txt")
	require.NoError(t, os.WriteFile(path, []byte("Athena\n250\n0\n0\n0\n0\n0"), 0644))

	got, ok := NewStore(path).Load()
	require.True(t, ok)
	assert.Equal(t, uint32(100), got.Energy)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "athena_save.txt"))
	require.NoError(t, store.Save(New("Athena")))
	require.NoError(t, store.Save(New("Athena")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "athena_save.txt", entries[0].Name())
}

func TestJournal_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diario_athena.txt")
	j := NewJournal(path)

	j.Append(0, "Conversei sobre: oi")
	j.Append(3, "Comprei 0.00010000 BTC")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[Level 0] Conversei sobre: oi\n[Level 3] Comprei 0.00010000 BTC\n", string(data))
}

func TestJournal_AppendFailureIsSilent(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	j := NewJournal(filepath.Join(blocker, "diario_athena.txt"))
	assert.NotPanics(t, func() { j.Append(1, "lost") })
}
