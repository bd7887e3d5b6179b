package campusauth

import (
	"sync/atomic"
	"testing"
	"time"
)

// hotPath mirrors the counters touched by a login followed by refreshes.
var hotPath = [...]MetricID{
	MetricLoginSuccess,
	MetricRefreshSuccess,
	MetricRefreshSuccess,
	MetricRefreshFailure,
	MetricLoginFailure,
	MetricRegisterSuccess,
}

// unpadded is the same counter array without cache-line padding.
type unpadded [metricIDCount]uint64

func (u *unpadded) Inc(id MetricID) { atomic.AddUint64(&u[id], 1) }

func BenchmarkMetrics(b *testing.B) {
	cases := []struct {
		name string
		cfg  MetricsConfig
	}{
		{"enabled", MetricsConfig{Enabled: true}},
		{"disabled", MetricsConfig{}},
	}
	for _, c := range cases {
		b.Run("Inc/"+c.name, func(b *testing.B) {
			m := NewMetrics(c.cfg)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				m.Inc(MetricLoginSuccess)
			}
		})
	}

	b.Run("IncParallel/padded", func(b *testing.B) {
		m := NewMetrics(MetricsConfig{Enabled: true})
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for i := 0; pb.Next(); i++ {
				m.Inc(hotPath[i%len(hotPath)])
			}
		})
	})

	b.Run("IncParallel/unpadded", func(b *testing.B) {
		var u unpadded
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for i := 0; pb.Next(); i++ {
				u.Inc(hotPath[i%len(hotPath)])
			}
		})
	})

	b.Run("ObserveParallel", func(b *testing.B) {
		m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
		latencies := []time.Duration{2 * time.Millisecond, 30 * time.Millisecond, 700 * time.Millisecond}
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for i := 0; pb.Next(); i++ {
				m.Observe(MetricValidateLatency, latencies[i%len(latencies)])
			}
		})
	})
}
