package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketwatch/internal/state"
	domain "ticketwatch/pkg/types"
)

func tempStatePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.json")
}

func TestLoad_MissingFileIsFirstRun(t *testing.T) {
	t.Parallel()

	s := state.NewStore(tempStatePath(t))
	st := s.Load()

	assert.Empty(t, st.LastChecked)
	assert.Empty(t, st.AvailableIDs)
	assert.NotNil(t, st.AvailableIDs)
	assert.Equal(t, domain.FlagUnknown, st.PageFlag)
}

func TestLoad_CorruptFileIsFirstRun(t *testing.T) {
	t.Parallel()

	path := tempStatePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st := state.NewStore(path).Load()
	assert.Equal(t, state.Default(), st)
}

func TestLoad_MissingFieldsDefault(t *testing.T) {
	t.Parallel()

	// An older state file without the page flag field.
	path := tempStatePath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"last_checked":"2024-04-01T09:00:00+09:00"}`), 0o644))

	st := state.NewStore(path).Load()
	assert.Equal(t, "2024-04-01T09:00:00+09:00", st.LastChecked)
	assert.NotNil(t, st.AvailableIDs)
	assert.Empty(t, st.AvailableIDs)
	assert.Equal(t, domain.FlagUnknown, st.PageFlag)
}

func TestLoad_UnknownFieldsIgnored(t *testing.T) {
	t.Parallel()

	path := tempStatePath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"last_available_ids":["20240401"],"some_future_field":42}`), 0o644))

	st := state.NewStore(path).Load()
	assert.Equal(t, []string{"20240401"}, st.AvailableIDs)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	path := tempStatePath(t)
	s := state.NewStore(path)

	in := state.State{
		LastChecked:  "2024-04-01T09:00:00+09:00",
		AvailableIDs: []string{"20240401", "20240405"},
		PageFlag:     domain.FlagAvailable,
	}
	require.NoError(t, s.Save(in))

	out := s.Load()
	assert.Equal(t, in, out)
}

func TestSave_ReplacesWholesale(t *testing.T) {
	t.Parallel()

	path := tempStatePath(t)
	s := state.NewStore(path)

	require.NoError(t, s.Save(state.State{AvailableIDs: []string{"20240401"}, PageFlag: domain.FlagUnknown}))
	require.NoError(t, s.Save(state.State{AvailableIDs: []string{}, PageFlag: domain.FlagUnavailable}))

	out := s.Load()
	assert.Empty(t, out.AvailableIDs)
	assert.Equal(t, domain.FlagUnavailable, out.PageFlag)
}
