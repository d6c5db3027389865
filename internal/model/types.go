// Package model defines shared data structures.
package model

import "time"

// DeviceClass is the emulated device an analysis runs for.
type DeviceClass string

const (
	Mobile  DeviceClass = "Mobile"
	Desktop DeviceClass = "Desktop"
)

// Devices returns the device classes in analysis order.
func Devices() []DeviceClass {
	return []DeviceClass{Mobile, Desktop}
}

// Valid reports whether d is a known device class.
func (d DeviceClass) Valid() bool {
	return d == Mobile || d == Desktop
}

// Category keys.
const (
	CategoryPerformance = "performance"
	CategorySEO         = "seo"
)

// Audit keys.
const (
	AuditFCP = "first-contentful-paint"
	AuditLCP = "largest-contentful-paint"
	AuditCLS = "cumulative-layout-shift"
	AuditSI  = "speed-index"
	AuditTBT = "total-blocking-time"
	AuditTTI = "interactive"
)

// AuditKeys returns the fixed audit keys in display order.
func AuditKeys() []string {
	return []string{AuditFCP, AuditLCP, AuditCLS, AuditSI, AuditTBT, AuditTTI}
}

var auditTitles = map[string]string{
	AuditFCP: "First Contentful Paint",
	AuditLCP: "Largest Contentful Paint",
	AuditCLS: "Cumulative Layout Shift",
	AuditSI:  "Speed Index",
	AuditTBT: "Total Blocking Time",
	AuditTTI: "Time to Interactive",
}

// AuditTitle returns the human-readable title of an audit key.
func AuditTitle(key string) string {
	if title, ok := auditTitles[key]; ok {
		return title
	}
	return key
}

// Config defines analysis settings.
type Config struct {
	DelayMin time.Duration
	DelayMax time.Duration
	Seed     int64
}

// Audit is one synthetic measurement. Score is nil when the audit is not scored.
type Audit struct {
	ID           string
	Title        string
	Score        *float64
	NumericValue float64
	NumericUnit  string
	DisplayValue string
	Description  string
}

// Diagnostics holds secondary measurements exported alongside the audits.
type Diagnostics struct {
	ServerResponseMs         float64
	TotalByteWeightKB        float64
	InteractionToNextPaintMs float64
}

// PerformanceReport is the generated report for one (url, device) pair.
type PerformanceReport struct {
	FinalURL    string
	Device      DeviceClass
	FetchTime   time.Time
	Categories  map[string]float64
	Audits      map[string]Audit
	Diagnostics Diagnostics
}

// InteractiveSeconds returns the time-to-interactive in seconds, or false when absent.
func (r PerformanceReport) InteractiveSeconds() (float64, bool) {
	audit, ok := r.Audits[AuditTTI]
	if !ok {
		return 0, false
	}
	return audit.NumericValue / 1000, true
}

// ResultEntry is one completed analysis in the session result store.
type ResultEntry struct {
	URL    string
	Device DeviceClass
	Report PerformanceReport
}

// PersistedDelta is the most recent loading time stored for a (url, device) key.
type PersistedDelta struct {
	URL                     string      `json:"url"`
	Device                  DeviceClass `json:"device"`
	TotalLoadingTimeSeconds float64     `json:"totalLoadingTime"`
	Timestamp               time.Time   `json:"timestamp"`
}

// SavedURL is a named URL shortcut.
type SavedURL struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Selected bool   `json:"selected"`
}

// RunRecord summarizes a completed analysis run.
type RunRecord struct {
	ID        int64
	StartedAt time.Time
	EndedAt   time.Time
	URLCount  int
}

// RunResult is a flattened history row for one entry of a run.
type RunResult struct {
	RunID              int64
	URL                string
	Device             DeviceClass
	PerformanceScore   float64
	InteractiveSeconds float64
	EndedAt            time.Time
}
