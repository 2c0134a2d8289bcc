package copier_test

import (
	"errors"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dudk/sampler/copier"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCopy(t *testing.T) {
	src := []int16{1, 2, 3, 4, 5, 6, 7, 8, 9}
	tests := []struct {
		description string
		dst         []int16
		count       int
		expected    []int16
	}{
		{
			description: "full",
			dst:         make([]int16, 9),
			count:       9,
			expected:    []int16{1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		{
			description: "partial",
			dst:         make([]int16, 9),
			count:       4,
			expected:    []int16{1, 2, 3, 4, 0, 0, 0, 0, 0},
		},
		{
			description: "short destination",
			dst:         make([]int16, 3),
			count:       9,
			expected:    []int16{1, 2, 3},
		},
		{
			description: "zero",
			dst:         make([]int16, 2),
			count:       0,
			expected:    []int16{0, 0},
		},
		{
			description: "negative",
			dst:         make([]int16, 2),
			count:       -1,
			expected:    []int16{0, 0},
		},
	}
	backends := map[string]func() copier.Copier{
		"sequential": func() copier.Copier { return copier.Sequential{} },
		"channel":    func() copier.Copier { return &copier.Channel{Burst: 2} },
	}
	for name, backend := range backends {
		for _, test := range tests {
			c := backend()
			require.NoError(t, c.Init())
			dst := append([]int16(nil), test.dst...)
			c.Copy(dst, src, test.count)
			assert.Equal(t, test.expected, dst, "%s: %s", name, test.description)
			require.NoError(t, c.Deinit())
		}
	}
}

func TestBackendsEquivalent(t *testing.T) {
	accelerated := &copier.Channel{Burst: 7}
	require.NoError(t, accelerated.Init())
	defer accelerated.Deinit()

	err := quick.Check(func(src []int16, count uint8) bool {
		a := make([]int16, len(src))
		b := make([]int16, len(src))
		for i := range a {
			a[i], b[i] = -1, -1
		}
		copier.Sequential{}.Copy(a, src, int(count))
		accelerated.Copy(b, src, int(count))
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}, nil)
	assert.NoError(t, err)
	assert.NotZero(t, accelerated.Transfers())
}

func TestChannelLifecycle(t *testing.T) {
	c := &copier.Channel{}
	// copy before init degrades to a sequential copy
	dst := make([]int16, 2)
	c.Copy(dst, []int16{5, 6}, 2)
	assert.Equal(t, []int16{5, 6}, dst)
	assert.Zero(t, c.Transfers())

	require.NoError(t, c.Init())
	assert.ErrorIs(t, c.Init(), copier.ErrInitialized)
	require.NoError(t, c.Deinit())
	require.NoError(t, c.Deinit())
}

func TestChannelLimit(t *testing.T) {
	channels := make([]*copier.Channel, 0, copier.MaxChannels)
	for i := 0; i < copier.MaxChannels; i++ {
		c := &copier.Channel{}
		require.NoError(t, c.Init())
		channels = append(channels, c)
	}
	extra := &copier.Channel{}
	assert.ErrorIs(t, extra.Init(), copier.ErrNoChannel)

	l := &logger{}
	c := copier.Open(extra, l)
	assert.Equal(t, copier.Sequential{}, c)
	require.Len(t, l.warnings, 1)

	for _, c := range channels {
		require.NoError(t, c.Deinit())
	}
	c = copier.Open(extra, l)
	assert.Equal(t, extra, c)
	require.NoError(t, c.Deinit())
}

func TestOpenSequential(t *testing.T) {
	assert.Equal(t, copier.Sequential{}, copier.Open(copier.Sequential{}, nil))
	assert.NotNil(t, copier.Default())
}

type logger struct {
	warnings []error
}

func (l *logger) Warn(args ...interface{}) {
	for _, a := range args {
		if err, ok := a.(error); ok && errors.Is(err, copier.ErrNoChannel) {
			l.warnings = append(l.warnings, err)
		}
	}
}
