package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetFlip(t *testing.T) {
	require := require.New(t)

	b := New(70)
	got, err := b.Get(5)
	require.NoError(err)
	require.False(got)

	require.NoError(b.Set(5))
	got, err = b.Get(5)
	require.NoError(err)
	require.True(got)

	require.NoError(b.Flip(5))
	got, err = b.Get(5)
	require.NoError(err)
	require.False(got)

	require.NoError(b.Set(69))
	require.Equal(1, b.Count())
}

func TestOutOfRange(t *testing.T) {
	require := require.New(t)

	b := New(8)
	require.ErrorIs(b.Set(-1), ErrOutOfRange)
	require.ErrorIs(b.Set(8), ErrOutOfRange)
	_, err := b.Get(100)
	require.ErrorIs(err, ErrOutOfRange)
}

func TestAndOrXorNot(t *testing.T) {
	require := require.New(t)

	a := New(8)
	require.NoError(a.Set(0))
	require.NoError(a.Set(1))

	b := New(8)
	require.NoError(b.Set(1))
	require.NoError(b.Set(2))

	and, err := a.And(b)
	require.NoError(err)
	require.Equal(1, and.Count())
	got, _ := and.Get(1)
	require.True(got)

	or, err := a.Or(b)
	require.NoError(err)
	require.Equal(3, or.Count())

	xor, err := a.Xor(b)
	require.NoError(err)
	require.Equal(2, xor.Count())

	not := a.Not()
	require.Equal(6, not.Count())
}

func TestMismatchedWidth(t *testing.T) {
	require := require.New(t)

	a := New(8)
	b := New(16)
	_, err := a.And(b)
	require.ErrorIs(err, ErrOutOfRange)
}

func TestForEach(t *testing.T) {
	require := require.New(t)

	b := New(100)
	require.NoError(b.Set(3))
	require.NoError(b.Set(40))
	require.NoError(b.Set(99))

	var got []int
	b.ForEach(func(idx int) bool {
		got = append(got, idx)
		return true
	})
	require.Equal([]int{3, 40, 99}, got)
}

func TestToBytesFromBytes(t *testing.T) {
	require := require.New(t)

	b := New(40)
	require.NoError(b.Set(0))
	require.NoError(b.Set(39))

	bs := b.ToBytes()
	back := FromBytes(40, bs)
	require.Equal(b.Count(), back.Count())
	got, _ := back.Get(39)
	require.True(got)
}

func TestClear(t *testing.T) {
	require := require.New(t)

	b := New(10)
	require.NoError(b.Set(1))
	b.Clear()
	require.Equal(0, b.Count())
}
