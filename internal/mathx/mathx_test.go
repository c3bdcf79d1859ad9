package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	// 7*3/2 = 10.5, floors to 10
	got, err := MulDiv(7, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got)

	// Widened intermediate: a*b overflows uint64 but the quotient fits.
	got, err = MulDiv(math.MaxUint64, 1000, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), got)
}

func TestMulDivFloorsTowardCurve(t *testing.T) {
	// Exact fractional boundary: 5*5/10 = 2.5 -> 2, never rounds up.
	got, err := MulDiv(5, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got)
}

func TestMulDivDivisionByZero(t *testing.T) {
	_, err := MulDiv(1, 1, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMulDivNarrowingOverflow(t *testing.T) {
	_, err := MulDiv(math.MaxUint64, 2, 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAdd(t *testing.T) {
	got, err := Add(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got)

	_, err = Add(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSub(t *testing.T) {
	got, err := Sub(5, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got)

	_, err = Sub(3, 5)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMul(t *testing.T) {
	got, err := Mul(0, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)

	got, err = Mul(1<<32, 1<<31)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<63, got)

	_, err = Mul(1<<32, 1<<32)
	assert.ErrorIs(t, err, ErrOverflow)
}
