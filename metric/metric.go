// Package metric publishes audio graph counters with expvar.
//
// Node counters are aggregated per node type: every node of the same type
// adds to the same set of counters. Pool gauges are published per pool
// name.
package metric

import (
	"expvar"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

const (
	nodesLabel = "sampler.nodes"
	poolsLabel = "sampler.pools"
)

const (
	// UpdateCounter measures number of updates.
	UpdateCounter = "Updates"
	// SampleCounter measures number of samples.
	SampleCounter = "Samples"
	// LatencyCounter measures time between consecutive updates.
	LatencyCounter = "Latency"
	// DurationCounter counts the duration of processed signal.
	DurationCounter = "Duration"
	// NodeCounter counts number of metered nodes.
	NodeCounter = "Nodes"
)

const (
	// UsageGauge is the number of leased blocks.
	UsageGauge = "Usage"
	// MaxUsageGauge is the highest number of leased blocks.
	MaxUsageGauge = "MaxUsage"
	// ExhaustedCounter counts failed allocations.
	ExhaustedCounter = "Exhausted"
	// CapacityGauge is the number of blocks in the pool.
	CapacityGauge = "Capacity"
)

var (
	nodes = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		UpdateCounter,
		SampleCounter,
		LatencyCounter,
		DurationCounter,
		NodeCounter,
	}

	gauges = []string{
		UsageGauge,
		MaxUsageGauge,
		ExhaustedCounter,
		CapacityGauge,
	}

	pools = struct {
		sync.Mutex
		m map[string]*poolVars
	}{
		m: make(map[string]*poolVars),
	}
)

// Get metrics values for provided node type.
func Get(node interface{}) map[string]string {
	return getCounters(getType(node))
}

// GetAll returns counters for all measured node types.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	nodes.Lock()
	defer nodes.Unlock()
	for node := range nodes.m {
		m[node] = getCounters(node)
	}
	return m
}

func getCounters(nodeType string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(nodesLabel, nodeType, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns new Measure closure. This closure is needed to postpone metrics
// capture until node is actually running.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when a block is processed.
type MeasureFunc func(samples int64)

// Meter creates new meter closure to capture node counters.
func Meter(node interface{}, sampleRate int) ResetFunc {
	t := getType(node)
	metric := nodes.get(t)
	metric.nodes.Add(1)
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			blockSize     int64
			blockDuration time.Duration
		)
		return func(s int64) {
			metric.latency.set(time.Since(calledAt))
			metric.updates.Add(1)
			metric.samples.Add(s)
			// recalculate block duration only when block size has changed
			if blockSize != s {
				blockSize = s
				blockDuration = durationOf(sampleRate, s)
			}
			metric.duration.add(blockDuration)
			calledAt = time.Now()
		}
	}
}

// Unmeter decrements the node counter of the node type when a metered
// node is removed.
func Unmeter(node interface{}) {
	nodes.get(getType(node)).nodes.Add(-1)
}

// Source provides pool gauges. It is implemented by block.Pool.
type Source interface {
	Usage() int
	MaxUsage() int
	Exhausted() uint64
	Capacity() int
}

// Pool publishes gauges of the pool under name. Publishing the same name
// again rebinds the gauges to the new pool.
func Pool(name string, p Source) {
	pools.Lock()
	defer pools.Unlock()
	if v, ok := pools.m[name]; ok {
		v.source.Store(&p)
		return
	}
	v := &poolVars{}
	v.source.Store(&p)
	pools.m[name] = v
	read := func(fn func(Source) int64) expvar.Func {
		return func() interface{} {
			return fn(*v.source.Load())
		}
	}
	expvar.Publish(key(poolsLabel, name, UsageGauge), read(func(s Source) int64 { return int64(s.Usage()) }))
	expvar.Publish(key(poolsLabel, name, MaxUsageGauge), read(func(s Source) int64 { return int64(s.MaxUsage()) }))
	expvar.Publish(key(poolsLabel, name, ExhaustedCounter), read(func(s Source) int64 { return int64(s.Exhausted()) }))
	expvar.Publish(key(poolsLabel, name, CapacityGauge), read(func(s Source) int64 { return int64(s.Capacity()) }))
}

// GetPool returns gauge values of the named pool.
func GetPool(name string) map[string]string {
	m := make(map[string]string)
	for _, gauge := range gauges {
		v := expvar.Get(key(poolsLabel, name, gauge))
		if v != nil {
			m[gauge] = v.String()
		}
	}
	return m
}

type poolVars struct {
	source atomic.Pointer[Source]
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(nodeType string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[nodeType]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(nodeType)
	m.m[nodeType] = metric
	return metric
}

type metric struct {
	key      string
	nodes    *expvar.Int
	updates  *expvar.Int
	samples  *expvar.Int
	latency  *duration
	duration *duration
}

func newMetric(nodeType string) metric {
	m := metric{
		key:      nodeType,
		nodes:    expvar.NewInt(key(nodesLabel, nodeType, NodeCounter)),
		updates:  expvar.NewInt(key(nodesLabel, nodeType, UpdateCounter)),
		samples:  expvar.NewInt(key(nodesLabel, nodeType, SampleCounter)),
		latency:  &duration{},
		duration: &duration{},
	}
	expvar.Publish(key(nodesLabel, nodeType, LatencyCounter), m.latency)
	expvar.Publish(key(nodesLabel, nodeType, DurationCounter), m.duration)
	return m
}

func key(label, name, counter string) string {
	return fmt.Sprintf("%s.%s.%s", label, name, counter)
}

func getType(node interface{}) string {
	rv := reflect.ValueOf(node)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Type().String()
}

// durationOf returns time duration of samples at sample rate.
func durationOf(sampleRate int, samples int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)).String())
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
