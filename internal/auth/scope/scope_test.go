package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskNamesRoundTrip(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	for _, name := range r.Names(r.All()) {
		m, err := r.Mask(name)
		require.NoError(t, err)
		require.Equal(t, []string{name}, r.Names(m))
	}

	m, err := r.Mask("public", "profile", "trip")
	require.NoError(t, err)
	require.Equal(t, Public|Profile|Trip, m)
	require.Equal(t, []string{"public", "profile", "trip"}, r.Names(m))
}

func TestMaskUnknownScope(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	_, err := r.Mask("profile", "does-not-exist")
	require.ErrorIs(t, err, ErrUnknownScope)
}

func TestContains(t *testing.T) {
	t.Parallel()

	allowed := Public | Profile | Trip

	require.True(t, Contains(0, allowed))
	require.True(t, Contains(Profile, allowed))
	require.True(t, Contains(Public|Trip, allowed))
	require.False(t, Contains(Follow, allowed))
	require.False(t, Contains(Profile|Follow, allowed))

	// Flipping any bit outside allowed breaks containment.
	for bit := Mask(1); bit <= Automatic; bit <<= 1 {
		if bit&allowed != 0 {
			continue
		}
		require.False(t, Contains(Profile|bit, allowed), "bit %d", bit)
	}
}

func TestRegistryBitsAreCanonical(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	want := map[string]Mask{
		"public":           1,
		"profile":          2,
		"follow":           4,
		"location":         8,
		"current_location": 16,
		"vehicle:events":   32,
		"vehicle:profile":  64,
		"vehicle:vin":      128,
		"trip":             256,
		"behavior":         512,
		"adapter:basic":    1024,
		"crash_alert":      2048,
		"patron":           4096,
		"automatic":        1 << 30,
	}
	for name, bit := range want {
		m, err := r.Mask(name)
		require.NoError(t, err)
		require.Equal(t, bit, m, name)
	}
	require.True(t, r.Valid(Public|Automatic))
	require.False(t, r.Valid(1<<20))
}

func TestNewRegistryRejectsBadTables(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(map[string]Mask{"a": 3}, []string{"a"})
	require.Error(t, err)

	_, err = NewRegistry(map[string]Mask{"a": 2, "b": 2}, []string{"a", "b"})
	require.Error(t, err)

	_, err = NewRegistry(map[string]Mask{"a": 2}, []string{"a", "b"})
	require.Error(t, err)
}
