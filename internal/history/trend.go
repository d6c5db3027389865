package history

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/perfdash/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Trend is the run-by-run series of one (url, device) pair, oldest first.
type Trend struct {
	URL         string
	Device      model.DeviceClass
	Performance []float64
	Interactive []float64
}

// Latest returns the most recent performance score and TTI seconds.
func (t Trend) Latest() (perf, tti float64) {
	if n := len(t.Performance); n > 0 {
		perf = t.Performance[n-1]
	}
	if n := len(t.Interactive); n > 0 {
		tti = t.Interactive[n-1]
	}
	return perf, tti
}

// BuildTrends groups results by (url, device), ordered by URL then device.
// Results are expected oldest first.
func BuildTrends(results []model.RunResult) []Trend {
	type key struct {
		url    string
		device model.DeviceClass
	}
	index := map[key]int{}
	var trends []Trend
	for _, r := range results {
		k := key{url: r.URL, device: r.Device}
		i, ok := index[k]
		if !ok {
			i = len(trends)
			index[k] = i
			trends = append(trends, Trend{URL: r.URL, Device: r.Device})
		}
		trends[i].Performance = append(trends[i].Performance, r.PerformanceScore)
		trends[i].Interactive = append(trends[i].Interactive, r.InteractiveSeconds)
	}
	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].URL == trends[j].URL {
			return deviceRank(trends[i].Device) < deviceRank(trends[j].Device)
		}
		return trends[i].URL < trends[j].URL
	})
	return trends
}

// SlowestTrends returns the n trends with the highest latest TTI.
func SlowestTrends(trends []Trend, n int) []Trend {
	if n <= 0 || len(trends) == 0 {
		return nil
	}
	candidates := make([]Trend, len(trends))
	copy(candidates, trends)
	sort.SliceStable(candidates, func(i, j int) bool {
		_, ti := candidates[i].Latest()
		_, tj := candidates[j].Latest()
		return ti > tj
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func deviceRank(d model.DeviceClass) int {
	for i, dev := range model.Devices() {
		if dev == d {
			return i
		}
	}
	return len(model.Devices())
}
