package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	v, err := IntToUint32(17)
	require.NoError(t, err)
	assert.Equal(t, uint32(17), v)

	_, err = IntToUint32(-1)
	assert.ErrorIs(t, err, ErrOverflow)

	if math.MaxInt > math.MaxUint32 {
		_, err = IntToUint32(math.MaxUint32 + 1)
		assert.ErrorIs(t, err, ErrOverflow)
	}
}

func TestUint32ToInt(t *testing.T) {
	v, err := Uint32ToInt(math.MaxUint16)
	require.NoError(t, err)
	assert.Equal(t, math.MaxUint16, v)
}

func TestUint64ToInt(t *testing.T) {
	_, err := Uint64ToInt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)

	v, err := Uint64ToInt(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, v)
}

func TestMulInt(t *testing.T) {
	v, err := MulInt(64, 8)
	require.NoError(t, err)
	assert.Equal(t, 512, v)

	v, err = MulInt(0, math.MaxInt)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = MulInt(math.MaxInt, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = MulInt(-1, 2)
	assert.ErrorIs(t, err, ErrOverflow)
}
