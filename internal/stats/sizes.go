package stats

import (
	"fmt"
	"log/slog"

	"github.com/DataDog/sketches-go/ddsketch"
)

// sizeAccuracy is the relative accuracy of reported size percentiles.
const sizeAccuracy = 0.01

// SizeRecorder tracks the distribution of image sizes in bytes.
// It is not safe for concurrent use; merge per-chunk recorders instead.
type SizeRecorder struct {
	sketch *ddsketch.DDSketch
	count  int64
	total  int64
}

// NewSizeRecorder creates an empty recorder.
func NewSizeRecorder() *SizeRecorder {
	r := &SizeRecorder{}
	sketch, err := ddsketch.NewDefaultDDSketch(sizeAccuracy)
	if err == nil {
		r.sketch = sketch
	}
	return r
}

// Add records one image of n bytes.
func (r *SizeRecorder) Add(n int) {
	r.count++
	r.total += int64(n)
	if r.sketch != nil {
		_ = r.sketch.Add(float64(n))
	}
}

// Merge folds other into r.
func (r *SizeRecorder) Merge(other *SizeRecorder) {
	if other == nil || other.count == 0 {
		return
	}
	r.count += other.count
	r.total += other.total
	if r.sketch != nil && other.sketch != nil {
		_ = r.sketch.MergeWith(other.sketch)
	}
}

// Count returns the number of recorded images.
func (r *SizeRecorder) Count() int64 {
	return r.count
}

// SizeSummary describes an image size distribution.
type SizeSummary struct {
	Count      int64
	TotalBytes int64
	P50        float64
	P90        float64
	P99        float64
}

// Summary returns the current distribution. Percentiles are zero when
// nothing was recorded.
func (r *SizeRecorder) Summary() SizeSummary {
	s := SizeSummary{Count: r.count, TotalBytes: r.total}
	if r.count == 0 || r.sketch == nil {
		return s
	}

	qs, err := r.sketch.GetValuesAtQuantiles([]float64{0.5, 0.9, 0.99})
	if err == nil {
		s.P50, s.P90, s.P99 = qs[0], qs[1], qs[2]
	}
	return s
}

func (s SizeSummary) String() string {
	return fmt.Sprintf("n=%d total=%dB p50=%.0fB p90=%.0fB p99=%.0fB",
		s.Count, s.TotalBytes, s.P50, s.P90, s.P99)
}

// LogValue renders the summary as a slog group.
func (s SizeSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("count", s.Count),
		slog.Int64("total_bytes", s.TotalBytes),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("p99", s.P99),
	)
}
