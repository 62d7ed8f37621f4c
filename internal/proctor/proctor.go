// Package proctor forwards anomalies flagged by the candidate-side behavior
// detector into the room broadcast. The detector itself (face landmarks,
// gaze, multiple-person heuristics) is an opaque collaborator behind the
// Source interface; this package only filters and rate-limits what it emits.
package proctor

import (
	"context"
	"time"
)

// Well-known anomaly types the detector emits. The set is open: unknown
// types pass through untouched.
const (
	TypeNoFace        = "no_face"
	TypeMultipleFaces = "multiple_faces"
	TypeLookingAway   = "looking_away"
	TypeTabSwitch     = "tab_switch"
)

// Anomaly is one suspicious-behavior observation.
type Anomaly struct {
	Type       string
	Confidence float64
	Message    string
}

// Source produces anomalies. The channel closing stops the monitor.
type Source interface {
	Anomalies() <-chan Anomaly
}

// ReportFunc receives anomalies that pass filtering.
type ReportFunc func(Anomaly)

// DefaultMinConfidence drops low-confidence detector noise.
const DefaultMinConfidence = 0.6

// DefaultCooldown suppresses repeats of the same anomaly type. The detector
// fires continuously while the condition holds; the interviewer needs one
// flag per episode, not thirty per second.
const DefaultCooldown = 10 * time.Second

// Monitor filters a Source and forwards what remains.
type Monitor struct {
	src           Source
	report        ReportFunc
	minConfidence float64
	cooldown      time.Duration
	now           func() time.Time

	lastByType map[string]time.Time
}

// NewMonitor creates a monitor with the default threshold and cooldown.
func NewMonitor(src Source, report ReportFunc) *Monitor {
	return &Monitor{
		src:           src,
		report:        report,
		minConfidence: DefaultMinConfidence,
		cooldown:      DefaultCooldown,
		now:           time.Now,
		lastByType:    make(map[string]time.Time),
	}
}

// Run consumes the source until it closes or ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-m.src.Anomalies():
			if !ok {
				return
			}
			m.Observe(a)
		}
	}
}

// Observe applies the filter to one anomaly and reports it if it passes.
func (m *Monitor) Observe(a Anomaly) {
	if a.Confidence < m.minConfidence {
		return
	}
	now := m.now()
	if last, ok := m.lastByType[a.Type]; ok && now.Sub(last) < m.cooldown {
		return
	}
	m.lastByType[a.Type] = now
	m.report(a)
}
