// Package generator builds synthetic performance reports.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/perfdash/internal/model"
)

// DesktopMultiplier scales timing metrics that a desktop device completes faster.
const DesktopMultiplier = 0.7

const desktopPerformanceBoost = 1.1

// Generator produces randomized performance reports.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// New returns a Generator seeded with seed, or the current time when seed is 0.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

type auditProfile struct {
	id          string
	description string
	base        float64
	spread      float64
	scaled      bool
	good        float64
	poor        float64
	format      func(float64) string
	unit        string
}

var auditProfiles = []auditProfile{
	{
		id: model.AuditFCP,
		description: "First Contentful Paint marks the time at which the first text or image is painted.",
		base: 1200, spread: 1800, scaled: true,
		good: 1800, poor: 3000,
		format: formatSeconds, unit: "millisecond",
	},
	{
		id: model.AuditLCP,
		description: "Largest Contentful Paint marks the time at which the largest text or image is painted.",
		base: 2000, spread: 3000, scaled: true,
		good: 2500, poor: 4000,
		format: formatSeconds, unit: "millisecond",
	},
	{
		id: model.AuditCLS,
		description: "Cumulative Layout Shift measures the movement of visible elements within the viewport.",
		base: 0, spread: 0.25,
		good: 0.1, poor: 0.25,
		format: formatUnitless, unit: "unitless",
	},
	{
		id: model.AuditSI,
		description: "Speed Index shows how quickly the contents of a page are visibly populated.",
		base: 1500, spread: 2500, scaled: true,
		good: 3400, poor: 5800,
		format: formatSeconds, unit: "millisecond",
	},
	{
		id: model.AuditTBT,
		description: "Sum of all time periods between FCP and Time to Interactive, when task length exceeded 50ms.",
		base: 0, spread: 300,
		good: 200, poor: 600,
		format: formatMillis, unit: "millisecond",
	},
	{
		id: model.AuditTTI,
		description: "Time to Interactive is the amount of time it takes for the page to become fully interactive.",
		base: 3000, spread: 4000, scaled: true,
		good: 3800, poor: 7300,
		format: formatSeconds, unit: "millisecond",
	},
}

// Generate builds a report for url on the given device. It never fails.
func (g *Generator) Generate(url string, device model.DeviceClass) model.PerformanceReport {
	mult := deviceMultiplier(device)

	perf := (0.6 + g.uniform(0.35)) * performanceBoost(device)
	if perf > 1 {
		perf = 1
	}
	seo := 0.7 + g.uniform(0.25)

	audits := make(map[string]model.Audit, len(auditProfiles))
	for _, p := range auditProfiles {
		value := p.base + g.uniform(p.spread)
		if p.scaled {
			value *= mult
		}
		score := ScoreFor(value, p.good, p.poor)
		audits[p.id] = model.Audit{
			ID:           p.id,
			Title:        model.AuditTitle(p.id),
			Score:        &score,
			NumericValue: value,
			NumericUnit:  p.unit,
			DisplayValue: p.format(value),
			Description:  p.description,
		}
	}

	return model.PerformanceReport{
		FinalURL:  url,
		Device:    device,
		FetchTime: g.now(),
		Categories: map[string]float64{
			model.CategoryPerformance: perf,
			model.CategorySEO:         seo,
		},
		Audits: audits,
		Diagnostics: model.Diagnostics{
			ServerResponseMs:         (100 + g.uniform(700)) * mult,
			TotalByteWeightKB:        500 + g.uniform(2500),
			InteractionToNextPaintMs: (50 + g.uniform(450)) * mult,
		},
	}
}

// ScoreFor buckets a metric where lower is better: 0.9 below good, 0.5 below poor, else 0.2.
func ScoreFor(value, good, poor float64) float64 {
	switch {
	case value < good:
		return 0.9
	case value < poor:
		return 0.5
	default:
		return 0.2
	}
}

func (g *Generator) uniform(spread float64) float64 {
	return g.rnd.Float64() * spread
}

func deviceMultiplier(device model.DeviceClass) float64 {
	if device == model.Desktop {
		return DesktopMultiplier
	}
	return 1
}

func performanceBoost(device model.DeviceClass) float64 {
	if device == model.Desktop {
		return desktopPerformanceBoost
	}
	return 1
}

func formatSeconds(ms float64) string {
	return fmt.Sprintf("%.1f s", ms/1000)
}

func formatMillis(ms float64) string {
	return fmt.Sprintf("%d ms", int64(math.Round(ms)))
}

func formatUnitless(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
