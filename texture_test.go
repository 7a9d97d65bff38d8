package ember

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBindlessIndexStability is the §8 "Bindless index stability"
// scenario: register A, B, C (indices 0,1,2); release B; register D.
// D reuses B's freed slot (1); A and C keep their original slots.
func TestBindlessIndexStability(t *testing.T) {
	table := newBindlessTable(8)

	a, b, c := NewTextureHandle(), NewTextureHandle(), NewTextureHandle()
	slotA, err := table.Acquire(a)
	require.NoError(t, err)
	slotB, err := table.Acquire(b)
	require.NoError(t, err)
	slotC, err := table.Acquire(c)
	require.NoError(t, err)

	assert.Equal(t, int32(0), slotA)
	assert.Equal(t, int32(1), slotB)
	assert.Equal(t, int32(2), slotC)

	table.Release(b)

	d := NewTextureHandle()
	slotD, err := table.Acquire(d)
	require.NoError(t, err)
	assert.Equal(t, int32(1), slotD)

	gotA, ok := table.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, int32(0), gotA)

	gotC, ok := table.Lookup(c)
	require.True(t, ok)
	assert.Equal(t, int32(2), gotC)
}

func TestBindlessTableFullReturnsConfigurationError(t *testing.T) {
	table := newBindlessTable(2)
	_, err := table.Acquire(NewTextureHandle())
	require.NoError(t, err)
	_, err = table.Acquire(NewTextureHandle())
	require.NoError(t, err)

	_, err = table.Acquire(NewTextureHandle())
	require.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
