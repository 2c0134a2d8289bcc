package sampletable_test

import (
	"bytes"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/sampler/samples"
	"github.com/dudk/sampler/sampletable"
)

func TestConvert(t *testing.T) {
	s, err := sampletable.Convert([]byte{0x00, 0x01, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, []int16{0x0100, 0x0302}, s)

	s, err = sampletable.Convert([]byte{0xff, 0xff, 0x00, 0x80})
	require.NoError(t, err)
	assert.Equal(t, []int16{-1, -32768}, s)

	s, err = sampletable.Convert(nil)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = sampletable.Convert([]byte{1, 2, 3})
	assert.ErrorIs(t, err, sampletable.ErrOddLength)
}

func TestRoundTrip(t *testing.T) {
	err := quick.Check(func(data []byte) bool {
		data = data[:len(data)&^1]
		s, err := sampletable.Convert(data)
		if err != nil {
			return false
		}
		return bytes.Equal(data, sampletable.Bytes(s))
	}, nil)
	assert.NoError(t, err)
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	err := sampletable.Generate(&buf, "samples", sampletable.Table{
		Name:   "Click",
		Source: "click.raw",
		Data:   []byte{0x00, 0x01, 0x02, 0x03},
	})
	require.NoError(t, err)
	expected := `// Code generated by sampletab. DO NOT EDIT.

package samples

// Click is converted from click.raw.
var Click = [2]int16{
	256, 770,
}
`
	assert.Equal(t, expected, buf.String())
}

func TestGenerateErrors(t *testing.T) {
	var buf bytes.Buffer
	err := sampletable.Generate(&buf, "samples", sampletable.Table{Name: "Odd", Data: []byte{1}})
	assert.ErrorIs(t, err, sampletable.ErrOddLength)
	err = sampletable.Generate(&buf, "samples", sampletable.Table{Name: "lower", Data: nil})
	assert.ErrorIs(t, err, sampletable.ErrName)
	err = sampletable.Generate(&buf, "not a package")
	assert.ErrorIs(t, err, sampletable.ErrName)
}

// TestGeneratedTables checks the committed tables against their assets.
func TestGeneratedTables(t *testing.T) {
	tests := []struct {
		table []int16
		asset []byte
	}{
		{table: samples.Click[:], asset: samples.ClickRaw},
		{table: samples.Tick[:], asset: samples.TickRaw},
	}
	for _, test := range tests {
		s, err := sampletable.Convert(test.asset)
		require.NoError(t, err)
		assert.Equal(t, s, test.table)
	}
}
