package metric_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/sampler/metric"
)

type meteredNode struct{}

type otherNode struct{}

func TestMeter(t *testing.T) {
	sampleRate := 44100
	// test cases
	var tests = []struct {
		node            interface{}
		routines        int
		blocks          int
		blockSize       int64
		expectedSamples string
		expectedNodes   string
	}{
		{
			node:            meteredNode{},
			routines:        2,
			blocks:          10,
			blockSize:       128,
			expectedSamples: "2560",
			expectedNodes:   "2",
		},
		{
			node:            &meteredNode{},
			routines:        2,
			blocks:          10,
			blockSize:       128,
			expectedSamples: "5120",
			expectedNodes:   "4",
		},
		{
			node:            &otherNode{},
			routines:        1,
			blocks:          3,
			blockSize:       128,
			expectedSamples: "384",
			expectedNodes:   "1",
		},
	}
	// function to test meter.
	testFn := func(fn metric.MeasureFunc, wg *sync.WaitGroup, blocks int, blockSize int64) {
		for i := 0; i < blocks; i++ {
			fn(blockSize)
		}
		wg.Done()
	}

	for _, c := range tests {
		wg := &sync.WaitGroup{}
		wg.Add(c.routines)
		for i := 0; i < c.routines; i++ {
			go testFn(metric.Meter(c.node, sampleRate)(), wg, c.blocks, c.blockSize)
		}
		// check if no data race.
		wg.Wait()
		values := metric.Get(c.node)
		assert.Equal(t, c.expectedSamples, values[metric.SampleCounter])
		assert.Equal(t, c.expectedNodes, values[metric.NodeCounter])
	}
	all := metric.GetAll()
	assert.Contains(t, all, "metric_test.meteredNode")
	assert.Contains(t, all, "metric_test.otherNode")
}

type removedNode struct{}

func TestUnmeter(t *testing.T) {
	metric.Meter(&removedNode{}, 44100)
	metric.Meter(&removedNode{}, 44100)
	assert.Equal(t, "2", metric.Get(removedNode{})[metric.NodeCounter])
	metric.Unmeter(&removedNode{})
	assert.Equal(t, "1", metric.Get(removedNode{})[metric.NodeCounter])
}

type fakePool struct {
	usage int
}

func (p *fakePool) Usage() int        { return p.usage }
func (p *fakePool) MaxUsage() int     { return p.usage + 1 }
func (p *fakePool) Exhausted() uint64 { return 7 }
func (p *fakePool) Capacity() int     { return 16 }

func TestPool(t *testing.T) {
	p := &fakePool{usage: 3}
	metric.Pool("test", p)
	values := metric.GetPool("test")
	assert.Equal(t, "3", values[metric.UsageGauge])
	assert.Equal(t, "4", values[metric.MaxUsageGauge])
	assert.Equal(t, "7", values[metric.ExhaustedCounter])
	assert.Equal(t, "16", values[metric.CapacityGauge])

	p.usage = 5
	assert.Equal(t, "5", metric.GetPool("test")[metric.UsageGauge])

	// rebinding keeps the published names
	metric.Pool("test", &fakePool{usage: 1})
	assert.Equal(t, "1", metric.GetPool("test")[metric.UsageGauge])
	assert.Empty(t, metric.GetPool("unknown"))
}
