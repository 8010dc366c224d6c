package crc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate_Empty(t *testing.T) {
	require.Equal(t, StartValue, Calculate(nil))
}

func TestUpdate_Composability(t *testing.T) {
	a := []byte("brainmaze")
	b := []byte("-mef3-red")

	whole := Calculate(append(append([]byte{}, a...), b...))
	piecewise := Update(b, Update(a, StartValue))

	require.Equal(t, whole, piecewise)
}

func TestValidate(t *testing.T) {
	data := []byte("time series index entry")
	sum := Calculate(data)

	require.True(t, Validate(data, sum))
	require.False(t, Validate(data, sum^1))
}

func TestCalculate_Deterministic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	require.Equal(t, Calculate(data), Calculate(data))
}
