package dual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	a := D{V: 3, R: 1}
	b := D{V: 2, R: 0}

	assert.Equal(t, D{V: 5, R: 1}, a.Add(b))
	assert.Equal(t, D{V: 1, R: 1}, a.Sub(b))
	assert.Equal(t, D{V: 6, R: 2}, a.Mul(b))
	assert.Equal(t, D{V: -3, R: -1}, a.Neg())
}

// For all D values a, b with b.V != 0: (a/b)*b == a within tolerance, in
// both channels.
func TestDivRoundTrip(t *testing.T) {
	cases := []struct{ av, ar, bv, br float64 }{
		{3, 1, 2, 0},
		{-5, 2, 4, -1},
		{0.1, 0, 7.3, 1},
	}
	for _, c := range cases {
		a := D{V: c.av, R: c.ar}
		b := D{V: c.bv, R: c.br}
		q, err := a.Div(b)
		require.NoError(t, err)
		got := q.Mul(b)
		assert.InDelta(t, a.V, got.V, 1e-9)
		assert.InDelta(t, a.R, got.R, 1e-9)
	}
}

func TestDivByZeroValue(t *testing.T) {
	_, err := D{V: 1}.Div(D{V: 0})
	assert.Error(t, err)
}

func TestRecip(t *testing.T) {
	r, err := D{V: 4, R: 1}.Recip()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, r.V, 1e-12)
	assert.InDelta(t, -1.0/16.0, r.R, 1e-12)

	_, err = D{V: 0}.Recip()
	assert.Error(t, err)
}

func TestSqrt(t *testing.T) {
	s, err := D{V: 4, R: 1}.Sqrt()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.V, 1e-12)
	assert.InDelta(t, 0.25, s.R, 1e-12)

	zero, err := D{V: 0, R: 0}.Sqrt()
	require.NoError(t, err)
	assert.Equal(t, D{V: 0, R: 0}, zero)

	_, err = D{V: 0, R: 1}.Sqrt()
	assert.Error(t, err)

	_, err = D{V: -1}.Sqrt()
	assert.Error(t, err)
}
