package state

import "iot-dashboard/internal/modules/dashboard/types"

const DefaultSeriesCapacity = 20

// SeriesBuffer is the chart's sliding window: four parallel sequences kept
// the same length, oldest evicted first once capacity is exceeded.
type SeriesBuffer struct {
	capacity    int
	labels      []string
	temperature []float64
	humidity    []float64
	light       []float64
	version     uint64
}

func NewSeriesBuffer(capacity int) *SeriesBuffer {
	if capacity <= 0 {
		capacity = DefaultSeriesCapacity
	}
	return &SeriesBuffer{
		capacity:    capacity,
		labels:      make([]string, 0, capacity+1),
		temperature: make([]float64, 0, capacity+1),
		humidity:    make([]float64, 0, capacity+1),
		light:       make([]float64, 0, capacity+1),
	}
}

// Push appends one point and evicts the oldest when over capacity.
func (b *SeriesBuffer) Push(label string, r types.Reading) {
	b.labels = append(b.labels, label)
	b.temperature = append(b.temperature, r.Temperature)
	b.humidity = append(b.humidity, r.Humidity)
	b.light = append(b.light, r.Light)

	if len(b.labels) > b.capacity {
		b.labels = dropFirst(b.labels)
		b.temperature = dropFirst(b.temperature)
		b.humidity = dropFirst(b.humidity)
		b.light = dropFirst(b.light)
	}
	b.version++
}

func (b *SeriesBuffer) Len() int      { return len(b.labels) }
func (b *SeriesBuffer) Capacity() int { return b.capacity }

// Version increases on every Push; views use it to know the chart changed.
func (b *SeriesBuffer) Version() uint64 { return b.version }

// SeriesSnapshot is an immutable copy of the window, safe to hand to other goroutines.
type SeriesSnapshot struct {
	Labels      []string  `json:"labels"`
	Temperature []float64 `json:"temperature"`
	Humidity    []float64 `json:"humidity"`
	Light       []float64 `json:"light"`
	Version     uint64    `json:"version"`
}

func (b *SeriesBuffer) Snapshot() SeriesSnapshot {
	return SeriesSnapshot{
		Labels:      append([]string(nil), b.labels...),
		Temperature: append([]float64(nil), b.temperature...),
		Humidity:    append([]float64(nil), b.humidity...),
		Light:       append([]float64(nil), b.light...),
		Version:     b.version,
	}
}

func dropFirst[T any](s []T) []T {
	copy(s, s[1:])
	return s[:len(s)-1]
}
